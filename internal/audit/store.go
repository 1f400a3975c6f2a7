// Copyright EpiMind Project, 2026. All rights reserved.

// Package audit persists evaluation history in a local SQLite database
// and exports risk results for review. Every evaluation is stored with
// its full result so exports stay field-for-field faithful.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/razorlong2/epimind-app/pkg/types"
)

const dbFile = "epimind.db"

// Evaluation is one stored risk evaluation.
type Evaluation struct {
	ID          string           `json:"id" yaml:"id"`
	CreatedAt   time.Time        `json:"created_at" yaml:"created_at"`
	Patient     string           `json:"patient" yaml:"patient"`
	Ward        string           `json:"ward" yaml:"ward"`
	Hours       float64          `json:"hours" yaml:"hours"`
	Composite   int              `json:"composite" yaml:"composite"`
	Level       types.RiskLevel  `json:"level" yaml:"level"`
	Pathogen    string           `json:"pathogen,omitempty" yaml:"pathogen,omitempty"`
	Resistances []string         `json:"resistances,omitempty" yaml:"resistances,omitempty"`
	Result      types.RiskResult `json:"result" yaml:"result"`
}

// Store manages the evaluation history database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the audit database under cfg.Dir, creating
// the schema when missing.
func NewStore(cfg types.AuditConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "audit"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			patient TEXT,
			ward TEXT,
			hours REAL,
			composite INTEGER,
			level TEXT,
			pathogen TEXT,
			resistances TEXT,
			result TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ward ON evaluations(ward)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_level ON evaluations(level)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Append stores one evaluation and returns its identifier.
func (s *Store) Append(ctx context.Context, ds types.ClinicalDataset, result *types.RiskResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}

	var pathogen string
	var resistances []string
	if len(ds.Cultures) > 0 {
		pathogen = ds.Cultures[0].Pathogen
		resistances = ds.Cultures[0].Resistances
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, created_at, patient, ward, hours, composite, level, pathogen, resistances, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		time.Now().UTC().Format(time.RFC3339),
		ds.Patient,
		ds.Ward,
		result.HoursSinceAdmission,
		result.Composite,
		string(result.Level),
		pathogen,
		strings.Join(resistances, ","),
		string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("inserting evaluation: %w", err)
	}
	return id, nil
}

// ListOptions filter the evaluation history.
type ListOptions struct {
	// Ward restricts to one hospital section.
	Ward string

	// Level restricts to one risk level.
	Level types.RiskLevel

	// Since restricts to evaluations created at or after this time.
	Since time.Time

	// Limit bounds the number of rows (default 50).
	Limit int
}

// List returns stored evaluations, most recent first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Evaluation, error) {
	query := `SELECT id, created_at, patient, ward, hours, composite, level, pathogen, resistances, result
		FROM evaluations WHERE 1=1`
	var args []any

	if opts.Ward != "" {
		query += " AND ward = ?"
		args = append(args, opts.Ward)
	}
	if opts.Level != "" {
		query += " AND level = ?"
		args = append(args, string(opts.Level))
	}
	if !opts.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, opts.Since.UTC().Format(time.RFC3339))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying evaluations: %w", err)
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		var e Evaluation
		var createdAt, resistances, result string
		if err := rows.Scan(&e.ID, &createdAt, &e.Patient, &e.Ward, &e.Hours,
			&e.Composite, &e.Level, &e.Pathogen, &resistances, &result); err != nil {
			return nil, fmt.Errorf("scanning evaluation: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = ts
		}
		if resistances != "" {
			e.Resistances = strings.Split(resistances, ",")
		}
		if err := json.Unmarshal([]byte(result), &e.Result); err != nil {
			return nil, fmt.Errorf("parsing stored result %s: %w", e.ID, err)
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}
