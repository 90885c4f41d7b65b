package main

import (
	"context"
	"github.com/spf13/pflag"
	"go-ml.dev/pkg/logreg/model"
	"go-ml.dev/pkg/logreg/tables"
	"go-ml.dev/pkg/logreg/tracker"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
	"os"
	"path/filepath"
	"testing"
)

func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("f1,f2,target\n1,2,0\n3,4,1\n"), 0644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("f1,f2,target\n5,6,0\n7,8,1\n"), 0644))
	return dir
}

func Test_Untracked(t *testing.T) {
	modelFile := filepath.Join(t.TempDir(), "lr", "model.json.xz")
	r, err := Run(context.Background(), Config{TrainingData: dataDir(t), RegRate: 0.01, Model: modelFile})
	assert.NilError(t, err)
	assert.Equal(t, r.Rows, 4)
	assert.Equal(t, r.RunID, "")
	assert.Equal(t, r.ModelPath, modelFile)
	for _, s := range []float64{r.Report.Train.Float(model.AccuracyCol), r.Report.Test.Float(model.AccuracyCol)} {
		assert.Assert(t, s >= 0 && s <= 1)
	}
	_, err = model.Objectify(modelFile)
	assert.NilError(t, err)
}

func Test_Tracked(t *testing.T) {
	ctx := context.Background()
	uri := tracker.SqliteScheme + filepath.Join(t.TempDir(), "mlruns.db")
	r, err := Run(ctx, Config{TrainingData: dataDir(t), RegRate: 0.01, TrackingURI: uri, Experiment: "e2e"})
	assert.NilError(t, err)
	assert.Assert(t, r.RunID != "")

	s, err := tracker.Open(ctx, tracker.Config{URI: uri})
	assert.NilError(t, err)
	defer s.Close()
	rec, err := s.GetRun(ctx, r.RunID)
	assert.NilError(t, err)
	assert.Equal(t, rec.Status, tracker.RunFinished)
	assert.Equal(t, rec.Params[RegRateParam], "0.01")
	assert.Equal(t, rec.Metrics[TrainScoreName], r.Report.Train.Float(model.AccuracyCol))
	assert.Equal(t, rec.Metrics[TestScoreName], r.Report.Test.Float(model.AccuracyCol))
	assert.Equal(t, filepath.Join(rec.Artifacts[ModelArtifact], tracker.ModelFileName), r.ModelPath)
	_, err = os.Stat(r.ModelPath)
	assert.NilError(t, err)
}

func Test_TrackedFailure(t *testing.T) {
	ctx := context.Background()
	uri := tracker.SqliteScheme + filepath.Join(t.TempDir(), "mlruns.db")
	r, err := Run(ctx, Config{TrainingData: dataDir(t), RegRate: 0, TrackingURI: uri})
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidParameter))
	assert.Assert(t, r.RunID != "")

	s, err := tracker.Open(ctx, tracker.Config{URI: uri})
	assert.NilError(t, err)
	defer s.Close()
	rec, err := s.GetRun(ctx, r.RunID)
	assert.NilError(t, err)
	assert.Equal(t, rec.Status, tracker.RunFailed)
	assert.Equal(t, len(rec.Artifacts), 0)
}

func Test_Idempotent(t *testing.T) {
	dir := dataDir(t)
	a, err := Run(context.Background(), Config{TrainingData: dir, RegRate: 0.01})
	assert.NilError(t, err)
	b, err := Run(context.Background(), Config{TrainingData: dir, RegRate: 0.01})
	assert.NilError(t, err)
	assert.DeepEqual(t, a.Report.Train, b.Report.Train)
	assert.DeepEqual(t, a.Report.Test, b.Report.Test)
}

func Test_Errors(t *testing.T) {
	_, err := Run(context.Background(), Config{TrainingData: filepath.Join(t.TempDir(), "none"), RegRate: 0.01})
	assert.Assert(t, xerrors.Is(err, tables.ErrPathNotFound))
	_, err = Run(context.Background(), Config{TrainingData: t.TempDir(), RegRate: 0.01})
	assert.Assert(t, xerrors.Is(err, tables.ErrNoDataFound))
	_, err = Run(context.Background(), Config{TrainingData: dataDir(t), RegRate: 0.01, Label: "label"})
	assert.Assert(t, xerrors.Is(err, tables.ErrMissingColumn))
}

func Test_Config(t *testing.T) {
	t.Setenv("LOGREG_TRACKING_URI", "sqlite:///tmp/runs.db")
	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	v := bindConfig(fs)
	assert.NilError(t, fs.Parse([]string{"--training_data", "data", "--reg_rate", "0.5"}))
	cfg, err := readConfig(v)
	assert.NilError(t, err)
	assert.Equal(t, cfg.TrainingData, "data")
	assert.Equal(t, cfg.RegRate, 0.5)
	assert.Equal(t, cfg.Label, "target")
	assert.Equal(t, cfg.Experiment, tracker.DefaultExperiment)
	assert.Equal(t, cfg.TrackingURI, "sqlite:///tmp/runs.db")
}

func Test_ConfigDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	v := bindConfig(fs)
	assert.NilError(t, fs.Parse(nil))
	cfg, err := readConfig(v)
	assert.NilError(t, err)
	assert.Equal(t, cfg.RegRate, model.DefaultRegRate)
	assert.Equal(t, cfg.TrackingURI, "")
}

func Test_ConfigBadRegRate(t *testing.T) {
	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	v := bindConfig(fs)
	assert.NilError(t, fs.Parse([]string{"--reg_rate", "lots"}))
	_, err := readConfig(v)
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidParameter))
}

func Test_ConfigFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "train.yaml")
	assert.NilError(t, os.WriteFile(f, []byte("training_data: from-file\nreg_rate: 2\n"), 0644))
	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	v := bindConfig(fs)
	assert.NilError(t, fs.Parse([]string{"--config", f}))
	cfg, err := readConfig(v)
	assert.NilError(t, err)
	assert.Equal(t, cfg.TrainingData, "from-file")
	assert.Equal(t, cfg.RegRate, 2.)
}
