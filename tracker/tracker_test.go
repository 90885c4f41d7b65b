package tracker

import (
	"context"
	"go-ml.dev/pkg/logreg/model"
	"go-ml.dev/pkg/logreg/tables"
	"go-ml.dev/pkg/zorros"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
	"os"
	"path/filepath"
	"testing"
)

func open(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), Config{URI: SqliteScheme + filepath.Join(dir, "runs", "mlruns.db")})
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func Test_DatabasePath(t *testing.T) {
	for uri, path := range map[string]string{
		"sqlite:///tmp/x/mlruns.db": "/tmp/x/mlruns.db",
		"sqlite://mlruns.db":        "mlruns.db",
		"":                          "mlruns.db",
		"data/runs.db":              "data/runs.db",
	} {
		p, err := DatabasePath(uri)
		assert.NilError(t, err)
		assert.Equal(t, p, path)
	}
	_, err := DatabasePath("http://localhost:5000")
	assert.ErrorContains(t, err, "not supported")
	_, err = DatabasePath("sqlite://")
	assert.ErrorContains(t, err, "no database path")
}

func Test_RunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	assert.Equal(t, s.ArtifactRoot(), filepath.Join(filepath.Dir(s.Path()), "mlartifacts"))
	r, err := s.StartRun(ctx, "", "")
	assert.NilError(t, err)
	assert.Equal(t, r.Experiment, DefaultExperiment)
	assert.NilError(t, r.LogParam(ctx, "reg_rate", 0.01))
	assert.NilError(t, r.LogParam(ctx, "reg_rate", 0.01))
	err = r.LogParam(ctx, "reg_rate", 0.1)
	assert.Assert(t, xerrors.Is(err, ErrParamChanged))
	assert.NilError(t, r.LogMetric(ctx, "train_score", 0.5))
	assert.NilError(t, r.LogMetric(ctx, "train_score", 0.75))

	rec, err := s.GetRun(ctx, r.ID)
	assert.NilError(t, err)
	assert.Equal(t, rec.Status, RunRunning)
	assert.Assert(t, rec.EndTime.IsZero())

	assert.NilError(t, r.End(ctx, RunFinished))
	rec, err = s.GetRun(ctx, r.ID)
	assert.NilError(t, err)
	assert.Equal(t, rec.Status, RunFinished)
	assert.Assert(t, !rec.EndTime.Before(rec.StartTime))
	assert.Equal(t, rec.Params["reg_rate"], "0.01")
	assert.Equal(t, rec.Metrics["train_score"], 0.75)

	assert.Assert(t, xerrors.Is(r.End(ctx, RunFailed), ErrRunEnded))
	assert.Assert(t, xerrors.Is(r.LogMetric(ctx, "test_score", 1), ErrRunEnded))
	assert.Assert(t, xerrors.Is(r.LogParam(ctx, "x", 1), ErrRunEnded))
}

func Test_WithRun(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	var id string
	err := WithRun(ctx, s, "exp", "ok", func(r *Run) error {
		id = r.ID
		return r.LogParams(ctx, model.Params{"reg_rate": 0.5})
	})
	assert.NilError(t, err)
	rec, err := s.GetRun(ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, rec.Status, RunFinished)
	assert.Equal(t, rec.Experiment, "exp")
	assert.Equal(t, rec.Name, "ok")
	assert.Equal(t, rec.Params["reg_rate"], "0.5")
}

func Test_WithRunFailed(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	var id string
	err := WithRun(ctx, s, "exp", "", func(r *Run) error {
		id = r.ID
		return zorros.Errorf("boom")
	})
	assert.ErrorContains(t, err, "boom")
	rec, err := s.GetRun(ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, rec.Status, RunFailed)
}

func Test_WithRunPanic(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	var id string
	func() {
		defer func() {
			assert.Equal(t, recover(), "boom")
		}()
		_ = WithRun(ctx, s, "exp", "", func(r *Run) error {
			id = r.ID
			panic("boom")
		})
	}()
	rec, err := s.GetRun(ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, rec.Status, RunFailed)
}

func Test_SaveModel(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	q := tables.New([]string{"x", "target"}, [][]string{
		{"0.1", "0"}, {"0.2", "0"}, {"0.3", "0"}, {"0.4", "0"}, {"0.5", "0"},
		{"0.6", "1"}, {"0.7", "1"}, {"0.8", "1"}, {"0.9", "1"}, {"1.0", "1"},
	})
	ds, err := model.Split(q, "target")
	assert.NilError(t, err)
	report := model.LogisticRegression{RegRate: 0.01}.Feed(ds).LuckyTrain(model.Training{})
	var id string
	err = WithRun(ctx, s, "", "", func(r *Run) error {
		id = r.ID
		return r.SaveModel(ctx, "model", report.Model.(model.Memorizer))
	})
	assert.NilError(t, err)
	rec, err := s.GetRun(ctx, id)
	assert.NilError(t, err)
	dir := rec.Artifacts["model"]
	assert.Equal(t, dir, filepath.Join(s.ArtifactRoot(), id, "model"))
	_, err = os.Stat(filepath.Join(dir, ModelMetaName))
	assert.NilError(t, err)
	p, err := model.Objectify(filepath.Join(dir, ModelFileName))
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Features(), []string{"x"})
}

func Test_GetRunUnknown(t *testing.T) {
	_, err := open(t).GetRun(context.Background(), "nope")
	assert.ErrorContains(t, err, "not found")
}
