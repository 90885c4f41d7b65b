package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/logreg/model"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"golang.org/x/xerrors"
	"os"
	"path/filepath"
	"time"
)

const (
	RunRunning  = "RUNNING"
	RunFinished = "FINISHED"
	RunFailed   = "FAILED"

	DefaultExperiment = "default"
	ModelFileName     = "model.json.xz"
	ModelMetaName     = "MLmodel"
)

var (
	// ErrRunEnded means the run is already finalized and can't be changed
	ErrRunEnded = xerrors.New("run is ended")
	// ErrParamChanged means the parameter was logged before with another value
	ErrParamChanged = xerrors.New("param is already logged")
)

/*
Run is an active training run, logging calls attach to its identity
*/
type Run struct {
	store       *Store
	ID          string
	Experiment  string
	Name        string
	ArtifactURI string
	ended       bool
}

func (r *Run) check() error {
	if r.ended {
		return xerrors.Errorf("run `%v`: %w", r.ID, ErrRunEnded)
	}
	return nil
}

/*
LogParam records hyper-parameter, every parameter is written once
*/
func (r *Run) LogParam(ctx context.Context, key string, value interface{}) error {
	if err := r.check(); err != nil {
		return err
	}
	v := fmt.Sprint(value)
	var old string
	err := r.store.db.QueryRowContext(ctx, `SELECT value FROM params WHERE run_id = ? AND key = ?`, r.ID, key).Scan(&old)
	switch {
	case err == sql.ErrNoRows:
		if _, err = r.store.db.ExecContext(ctx,
			`INSERT INTO params (run_id, key, value) VALUES (?, ?, ?)`, r.ID, key, v); err != nil {
			return zorros.Trace(err)
		}
		return nil
	case err != nil:
		return zorros.Trace(err)
	case old != v:
		return xerrors.Errorf("param `%v` = %v, can't change it to %v: %w", key, old, v, ErrParamChanged)
	}
	return nil
}

/*
LogParams records all hyper-parameters of the set
*/
func (r *Run) LogParams(ctx context.Context, params model.Params) error {
	for k, v := range params {
		if err := r.LogParam(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

/*
LogMetric appends the next value of the metric
*/
func (r *Run) LogMetric(ctx context.Context, key string, value float64) error {
	if err := r.check(); err != nil {
		return err
	}
	if _, err := r.store.db.ExecContext(ctx,
		`INSERT INTO metrics (run_id, key, value, step, timestamp)
		 VALUES (?, ?, ?, (SELECT COUNT(*) FROM metrics WHERE run_id = ? AND key = ?), ?)`,
		r.ID, key, value, r.ID, key, millis(time.Now())); err != nil {
		return zorros.Trace(err)
	}
	return nil
}

/*
ArtifactDir returns the directory of the named artifact
*/
func (r *Run) ArtifactDir(name string) string {
	return filepath.Join(r.ArtifactURI, name)
}

/*
LogArtifact records the artifact already written into ArtifactDir(name)
*/
func (r *Run) LogArtifact(ctx context.Context, name string) error {
	if err := r.check(); err != nil {
		return err
	}
	if _, err := r.store.db.ExecContext(ctx,
		`INSERT INTO artifacts (run_id, name, path) VALUES (?, ?, ?)`, r.ID, name, r.ArtifactDir(name)); err != nil {
		return zorros.Wrapf(err, "failed to log artifact `%v`: %v", name, err.Error())
	}
	return nil
}

type modelMeta struct {
	RunID        string   `json:"run_id"`
	ArtifactPath string   `json:"artifact_path"`
	ModelFile    string   `json:"model_file"`
	Created      string   `json:"utc_time_created"`
	Features     []string `json:"features,omitempty"`
	Label        string   `json:"label,omitempty"`
	Predicted    string   `json:"predicted,omitempty"`
}

/*
SaveModel memorizes the model into artifact directory and records the artifact
*/
func (r *Run) SaveModel(ctx context.Context, name string, m model.Memorizer) error {
	if err := r.check(); err != nil {
		return err
	}
	dir := r.ArtifactDir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return zorros.Trace(err)
	}
	if err := model.Memorize(iokit.File(filepath.Join(dir, ModelFileName)), m); err != nil {
		return err
	}
	meta := modelMeta{
		RunID:        r.ID,
		ArtifactPath: name,
		ModelFile:    ModelFileName,
		Created:      time.Now().UTC().Format(time.RFC3339Nano),
	}
	if p, ok := m.(model.PredictionModel); ok {
		meta.Features = p.Features()
		meta.Predicted = p.Predicted()
	}
	if p, ok := m.(interface{ Label() string }); ok {
		meta.Label = p.Label()
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return zorros.Trace(err)
	}
	if err = os.WriteFile(filepath.Join(dir, ModelMetaName), b, 0644); err != nil {
		return zorros.Trace(err)
	}
	return r.LogArtifact(ctx, name)
}

/*
End finalizes the run with the status, a run can be ended only once
*/
func (r *Run) End(ctx context.Context, status string) error {
	if err := r.check(); err != nil {
		return err
	}
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, end_time = ? WHERE id = ? AND status = ?`,
		status, millis(time.Now()), r.ID, RunRunning)
	if err != nil {
		return zorros.Trace(err)
	}
	r.ended = true
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return xerrors.Errorf("run `%v`: %w", r.ID, ErrRunEnded)
	}
	zlog.Info("run " + r.ID + " is " + status)
	return nil
}

/*
WithRun executes f inside a run scope.
The run is ended as FINISHED when f succeeds and as FAILED when f returns error or panics.
*/
func WithRun(ctx context.Context, s *Store, experiment, name string, f func(*Run) error) (err error) {
	r, err := s.StartRun(ctx, experiment, name)
	if err != nil {
		return err
	}
	defer func() {
		p := recover()
		status := RunFinished
		if p != nil || err != nil {
			status = RunFailed
		}
		if e := r.End(ctx, status); e != nil {
			if err == nil && p == nil {
				err = e
			} else {
				zlog.Warning("failed to end run " + r.ID + ": " + e.Error())
			}
		}
		if p != nil {
			panic(p)
		}
	}()
	return f(r)
}
