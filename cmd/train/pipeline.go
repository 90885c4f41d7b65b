package main

import (
	"context"
	"fmt"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/logreg/fu"
	"go-ml.dev/pkg/logreg/model"
	"go-ml.dev/pkg/logreg/tables"
	"go-ml.dev/pkg/logreg/tracker"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"os"
	"path/filepath"
)

const (
	RegRateParam   = model.RegRateParam
	TrainScoreName = "train_score"
	TestScoreName  = "test_score"
	ModelArtifact  = "model"
)

/*
Result of the training invocation
*/
type Result struct {
	Report    *model.Report
	Rows      int    // rows loaded
	RunID     string // tracked run, empty when tracking is disabled
	ModelPath string // memorized model file
}

/*
Run loads data, splits it, fits the model and tracks the run when tracking uri is configured
*/
func Run(ctx context.Context, cfg Config) (result Result, err error) {
	t, err := tables.ReadDir(cfg.TrainingData)
	if err != nil {
		return
	}
	result.Rows = t.Len()
	zlog.Info(fmt.Sprintf("loaded %d rows of %d columns from %v", t.Len(), t.Width(), cfg.TrainingData))

	ds, err := model.Split(t, fu.Fnzs(cfg.Label, "target"))
	if err != nil {
		return
	}

	lr := model.LogisticRegression{RegRate: cfg.RegRate}
	training := model.Training{}
	if cfg.Verbose {
		training.Verbose = func(s string) { zlog.Info(s) }
	}

	if cfg.TrackingURI == "" {
		if cfg.Model != "" {
			result.ModelPath = fu.ModelPath(cfg.Model)
			if err = os.MkdirAll(filepath.Dir(result.ModelPath), 0755); err != nil {
				err = zorros.Trace(err)
				return
			}
			training.ModelFile = iokit.File(result.ModelPath)
		}
		if result.Report, err = lr.Feed(ds).Train(training); err != nil {
			return
		}
		logScores(result.Report)
		return
	}

	store, err := tracker.Open(ctx, tracker.Config{URI: cfg.TrackingURI, ArtifactRoot: cfg.ArtifactRoot})
	if err != nil {
		return
	}
	defer store.Close()
	err = tracker.WithRun(ctx, store, cfg.Experiment, cfg.RunName, func(r *tracker.Run) (err error) {
		result.RunID = r.ID
		if err = r.LogParams(ctx, lr.Params()); err != nil {
			return
		}
		if result.Report, err = lr.Feed(ds).Train(training); err != nil {
			return
		}
		logScores(result.Report)
		if err = r.LogMetric(ctx, TrainScoreName, result.Report.Train.Float(model.AccuracyCol)); err != nil {
			return
		}
		if err = r.LogMetric(ctx, TestScoreName, result.Report.Test.Float(model.AccuracyCol)); err != nil {
			return
		}
		if err = r.SaveModel(ctx, ModelArtifact, result.Report.Model.(model.Memorizer)); err != nil {
			return
		}
		result.ModelPath = filepath.Join(r.ArtifactDir(ModelArtifact), tracker.ModelFileName)
		return
	})
	return
}

func logScores(report *model.Report) {
	zlog.Info(fmt.Sprintf("%v: %.5f, %v: %.5f",
		TrainScoreName, report.Train.Float(model.AccuracyCol),
		TestScoreName, report.Test.Float(model.AccuracyCol)))
}
