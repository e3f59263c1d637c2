// Package storage persists simulation runs in a SQLite database under the
// data directory.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/experiment"
)

const (
	dbFile = "runs.db"
	// fixed width so that created_at sorts as text
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrAmbiguousID = errors.New("storage: run id prefix matches several runs")
)

type Store struct {
	baseDir string
	db      *sql.DB
}

// Open creates baseDir if needed and opens the run database inside it.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", baseDir, err)
	}

	path := filepath.Join(baseDir, dbFile)
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{baseDir: baseDir, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"created_at"`
	Dx        float64            `json:"dx"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
	Config    *config.Config     `json:"-"`
}

// Save stores the configuration and every snapshot of result in one
// transaction and returns the new run id.
func (s *Store) Save(ctx context.Context, cfg *config.Config, result *experiment.Result) (string, error) {
	id := uuid.NewString()

	cfgYAML, err := cfg.Marshal()
	if err != nil {
		return "", err
	}
	metricsJSON, err := json.Marshal(finite(result.Metrics))
	if err != nil {
		return "", err
	}
	xJSON, err := json.Marshal(result.X)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name := cfg.Name
	if name == "" {
		name = "run"
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, created_at, config_yaml, dx, dt, duration, steps, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, time.Now().UTC().Format(timeLayout), string(cfgYAML),
		result.Dx, result.Dt, cfg.Duration, result.Steps, string(metricsJSON),
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO grids (run_id, x_json) VALUES (?, ?)`, id, string(xJSON)); err != nil {
		return "", fmt.Errorf("failed to insert grid: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshots (run_id, idx, time, field, values_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, field := range result.FieldNames() {
		for i, values := range result.Fields[field] {
			data, err := json.Marshal(values)
			if err != nil {
				return "", err
			}
			if _, err := stmt.ExecContext(ctx, id, i, result.Times[i], field, string(data)); err != nil {
				return "", fmt.Errorf("failed to insert snapshot: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// finite drops the metrics JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

const runColumns = `id, name, created_at, config_yaml, dx, dt, duration, steps, metrics_json`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunMetadata, string, error) {
	var (
		meta        RunMetadata
		created     string
		cfgYAML     string
		metricsJSON sql.NullString
	)
	if err := row.Scan(&meta.ID, &meta.Name, &created, &cfgYAML,
		&meta.Dx, &meta.Dt, &meta.Duration, &meta.Steps, &metricsJSON); err != nil {
		return nil, "", err
	}

	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, "", fmt.Errorf("run %s: bad created_at: %w", meta.ID, err)
	}
	meta.CreatedAt = t

	if metricsJSON.Valid && metricsJSON.String != "" {
		if err := json.Unmarshal([]byte(metricsJSON.String), &meta.Metrics); err != nil {
			return nil, "", fmt.Errorf("run %s: bad metrics: %w", meta.ID, err)
		}
	}
	return &meta, cfgYAML, nil
}

// List returns every run, newest first. The configurations are not parsed.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, _, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}
	return runs, rows.Err()
}

// resolveID expands a unique id prefix into the full run id. The prefix is
// compared literally.
func (s *Store) resolveID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE substr(id, 1, length(?)) = ? LIMIT 2`, prefix, prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// Load returns the metadata and configuration of a run. id may be a unique
// prefix of the run id.
func (s *Store) Load(ctx context.Context, id string) (*RunMetadata, error) {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, full)
	meta, cfgYAML, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	meta.Config, err = config.Parse([]byte(cfgYAML))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", meta.ID, err)
	}
	return meta, nil
}

// LoadResult rebuilds the sampled result of a run.
func (s *Store) LoadResult(ctx context.Context, id string) (*RunMetadata, *experiment.Result, error) {
	meta, err := s.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	res := &experiment.Result{
		Name:    meta.Name,
		Fields:  make(map[string][][]float64),
		Metrics: meta.Metrics,
		Steps:   meta.Steps,
		Dt:      meta.Dt,
		Dx:      meta.Dx,
	}

	var xJSON string
	if err := s.db.QueryRowContext(ctx, `SELECT x_json FROM grids WHERE run_id = ?`, meta.ID).Scan(&xJSON); err != nil {
		return nil, nil, fmt.Errorf("run %s: grid: %w", meta.ID, err)
	}
	if err := json.Unmarshal([]byte(xJSON), &res.X); err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, time, field, values_json FROM snapshots WHERE run_id = ? ORDER BY field, idx`, meta.ID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	times := make(map[int]float64)
	for rows.Next() {
		var (
			idx    int
			t      float64
			field  string
			values string
		)
		if err := rows.Scan(&idx, &t, &field, &values); err != nil {
			return nil, nil, err
		}
		var u []float64
		if err := json.Unmarshal([]byte(values), &u); err != nil {
			return nil, nil, fmt.Errorf("run %s: snapshot %s/%d: %w", meta.ID, field, idx, err)
		}
		res.Fields[field] = append(res.Fields[field], u)
		times[idx] = t
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	res.Times = make([]float64, len(times))
	for idx, t := range times {
		if idx < len(res.Times) {
			res.Times[idx] = t
		}
	}
	return meta, res, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, full)
	return err
}
