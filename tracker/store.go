package tracker

import (
	"context"
	"database/sql"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/logreg/fu"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"os"
	"path/filepath"
	"time"
)

/*
Config of the tracking store, it's passed explicitly to everyone needs tracking
*/
type Config struct {
	URI          string // tracking uri, sqlite://mlruns.db by default
	ArtifactRoot string // directory for run artifacts, mlartifacts next to database by default
}

/*
Store is a sqlite backed runs registry
*/
type Store struct {
	db           *sql.DB
	path         string
	artifactRoot string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS experiments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		experiment_id INTEGER NOT NULL REFERENCES experiments(id),
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER,
		artifact_uri TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS params (
		run_id TEXT NOT NULL REFERENCES runs(id),
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key))`,
	`CREATE TABLE IF NOT EXISTS metrics (
		run_id TEXT NOT NULL REFERENCES runs(id),
		key TEXT NOT NULL,
		value REAL NOT NULL,
		step INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		PRIMARY KEY (run_id, key, step))`,
	`CREATE TABLE IF NOT EXISTS artifacts (
		run_id TEXT NOT NULL REFERENCES runs(id),
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		PRIMARY KEY (run_id, name))`,
}

/*
Open opens (and creates when required) the tracking store
*/
func Open(ctx context.Context, cfg Config) (*Store, error) {
	path, err := DatabasePath(cfg.URI)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, zorros.Trace(err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open tracking database `%v`: %v", path, err.Error())
	}
	db.SetMaxOpenConns(1)
	s := &Store{
		db:           db,
		path:         path,
		artifactRoot: fu.Fnzs(cfg.ArtifactRoot, filepath.Join(filepath.Dir(path), "mlartifacts")),
	}
	if err = s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return zorros.Wrapf(err, "tracking database `%v` is not available: %v", s.path, err.Error())
	}
	for _, q := range schema {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return zorros.Wrapf(err, "failed to create tracking schema: %v", err.Error())
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) ArtifactRoot() string {
	return s.artifactRoot
}

func (s *Store) experiment(ctx context.Context, name string) (id int64, err error) {
	if _, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO experiments (name, created_at) VALUES (?, ?)`,
		name, millis(time.Now())); err != nil {
		return 0, zorros.Trace(err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT id FROM experiments WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, zorros.Trace(err)
	}
	return
}

/*
StartRun begins a new run of the experiment, experiment is created on demand
*/
func (s *Store) StartRun(ctx context.Context, experiment, name string) (*Run, error) {
	experiment = fu.Fnzs(experiment, DefaultExperiment)
	eid, err := s.experiment(ctx, experiment)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	r := &Run{
		store:       s,
		ID:          id,
		Experiment:  experiment,
		Name:        fu.Fnzs(name, id[:8]),
		ArtifactURI: filepath.Join(s.artifactRoot, id),
	}
	if _, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, experiment_id, name, status, start_time, artifact_uri) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, eid, r.Name, RunRunning, millis(time.Now()), r.ArtifactURI); err != nil {
		return nil, zorros.Wrapf(err, "failed to start run: %v", err.Error())
	}
	zlog.Info("run " + r.ID + " of experiment " + experiment + " is started")
	return r, nil
}

/*
RunRecord is a run read back from the store
*/
type RunRecord struct {
	ID          string
	Experiment  string
	Name        string
	Status      string
	StartTime   time.Time
	EndTime     time.Time // zero while the run is active
	ArtifactURI string
	Params      map[string]string
	Metrics     map[string]float64 // the last logged value of every metric
	Artifacts   map[string]string  // artifact name -> path
}

/*
GetRun reads the run record
*/
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	r := &RunRecord{
		Params:    map[string]string{},
		Metrics:   map[string]float64{},
		Artifacts: map[string]string{},
	}
	var start int64
	var end sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT r.id, e.name, r.name, r.status, r.start_time, r.end_time, r.artifact_uri
		 FROM runs r JOIN experiments e ON e.id = r.experiment_id WHERE r.id = ?`, id).
		Scan(&r.ID, &r.Experiment, &r.Name, &r.Status, &start, &end, &r.ArtifactURI)
	if err == sql.ErrNoRows {
		return nil, zorros.Errorf("run `%v` is not found", id)
	}
	if err != nil {
		return nil, zorros.Trace(err)
	}
	r.StartTime = fromMillis(start)
	if end.Valid {
		r.EndTime = fromMillis(end.Int64)
	}
	if err = s.scan(ctx, `SELECT key, value FROM params WHERE run_id = ?`, id, func(rows *sql.Rows) error {
		var k, v string
		err := rows.Scan(&k, &v)
		r.Params[k] = v
		return err
	}); err != nil {
		return nil, err
	}
	if err = s.scan(ctx, `SELECT key, value FROM metrics WHERE run_id = ? ORDER BY step`, id, func(rows *sql.Rows) error {
		var k string
		var v float64
		err := rows.Scan(&k, &v)
		r.Metrics[k] = v
		return err
	}); err != nil {
		return nil, err
	}
	if err = s.scan(ctx, `SELECT name, path FROM artifacts WHERE run_id = ?`, id, func(rows *sql.Rows) error {
		var k, v string
		err := rows.Scan(&k, &v)
		r.Artifacts[k] = v
		return err
	}); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) scan(ctx context.Context, query string, id string, f func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return zorros.Trace(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err = f(rows); err != nil {
			return zorros.Trace(err)
		}
	}
	if err = rows.Err(); err != nil {
		return zorros.Trace(err)
	}
	return nil
}

func millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

func fromMillis(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond))
}
