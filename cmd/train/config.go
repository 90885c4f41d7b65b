package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go-ml.dev/pkg/logreg/model"
	"go-ml.dev/pkg/logreg/tracker"
	"go-ml.dev/pkg/zorros"
	"golang.org/x/xerrors"
	"strconv"
	"strings"
)

// EnvPrefix of environment variables overriding flags, LOGREG_REG_RATE for example
const EnvPrefix = "LOGREG"

/*
Config of the training invocation
*/
type Config struct {
	TrainingData string  // directory with CSV files
	RegRate      float64 // regularization rate, C = 1/RegRate
	Label        string  // label column
	TrackingURI  string  // tracking store, no tracking when empty
	ArtifactRoot string  // tracking artifacts directory
	Experiment   string  // tracking experiment name
	RunName      string  // tracking run name
	Model        string  // model file for untracked training
	Verbose      bool
}

/*
bindConfig defines flags and binds them to viper with environment overrides
*/
func bindConfig(fs *pflag.FlagSet) *viper.Viper {
	fs.String("training_data", "", "path to directory with training CSV files")
	fs.String("reg_rate", strconv.FormatFloat(model.DefaultRegRate, 'g', -1, 64), "regularization rate")
	fs.String("label", "target", "label column name")
	fs.String("tracking_uri", "", "tracking store uri, sqlite:///path/to/mlruns.db")
	fs.String("artifact_root", "", "directory for run artifacts")
	fs.String("experiment", tracker.DefaultExperiment, "experiment name")
	fs.String("run_name", "", "run name")
	fs.String("model", "", "model file name or absolute path when tracking is disabled")
	fs.String("config", "", "config file (yaml, json, toml)")
	fs.BoolP("verbose", "v", false, "verbose training log")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		panic(zorros.Panic(zorros.Trace(err)))
	}
	return v
}

/*
readConfig reads config file when it's specified and validates values
*/
func readConfig(v *viper.Viper) (cfg Config, err error) {
	if f := v.GetString("config"); f != "" {
		v.SetConfigFile(f)
		if err = v.ReadInConfig(); err != nil {
			return cfg, zorros.Wrapf(err, "failed to read config `%v`: %v", f, err.Error())
		}
	}
	s := v.GetString("reg_rate")
	if cfg.RegRate, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return cfg, xerrors.Errorf("reg_rate `%v` is not a number: %w", s, model.ErrInvalidParameter)
	}
	cfg.TrainingData = v.GetString("training_data")
	cfg.Label = v.GetString("label")
	cfg.TrackingURI = v.GetString("tracking_uri")
	cfg.ArtifactRoot = v.GetString("artifact_root")
	cfg.Experiment = v.GetString("experiment")
	cfg.RunName = v.GetString("run_name")
	cfg.Model = v.GetString("model")
	cfg.Verbose = v.GetBool("verbose")
	return
}
