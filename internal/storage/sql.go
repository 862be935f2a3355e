package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"testexe/internal/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS test_runs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		executable VARCHAR(1024) NOT NULL,
		dialect VARCHAR(32) NOT NULL,
		options VARCHAR(64) NOT NULL,
		iterations INT NOT NULL,
		total_cases INT NOT NULL,
		passed_cases INT NOT NULL,
		failed_cases INT NOT NULL,
		skipped_units INT NOT NULL,
		crashed BOOLEAN NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		started_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS test_failures (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id BIGINT NOT NULL,
		test_id INT NOT NULL,
		test_name VARCHAR(1024) NOT NULL,
		messages TEXT NOT NULL,
		elapsed_ms BIGINT NOT NULL,
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		FOREIGN KEY (run_id) REFERENCES test_runs(id) ON DELETE CASCADE
	)`,
}

// SQLStorage keeps the history of run reports in a MySQL database
type SQLStorage struct {
	db  *sql.DB
	cfg *mysql.Config
}

// NewSQLStorage opens the database described by dsn. No connection is made
// until the first query.
func NewSQLStorage(dsn string) (*SQLStorage, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create database connector: %w", err)
	}
	return &SQLStorage{db: sql.OpenDB(connector), cfg: cfg}, nil
}

// Init creates the database and its tables if they do not exist
func (s *SQLStorage) Init(ctx context.Context) error {
	if err := s.ensureDatabase(ctx); err != nil {
		return err
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// ensureDatabase connects to the server without selecting a database and
// creates the configured one when missing
func (s *SQLStorage) ensureDatabase(ctx context.Context) error {
	name := s.cfg.DBName
	if name == "" {
		return fmt.Errorf("database dsn names no database")
	}

	serverCfg := s.cfg.Clone()
	serverCfg.DBName = ""
	connector, err := mysql.NewConnector(serverCfg)
	if err != nil {
		return fmt.Errorf("create database connector: %w", err)
	}
	server := sql.OpenDB(connector)
	defer server.Close()

	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	if err := server.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return nil
	}

	// Sanitize database name to prevent SQL injection
	if !isValidDatabaseName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}
	if _, err := server.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// isValidDatabaseName validates database name (basic check)
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	// Check for SQL injection patterns
	invalidChars := []string{"'", "\"", "`", ";", "--", "/*", "*/", "DROP", "DELETE", "TRUNCATE"}
	upperName := strings.ToUpper(name)
	for _, char := range invalidChars {
		if strings.Contains(upperName, char) {
			return false
		}
	}
	return true
}

// Close closes the database
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// Save appends report to the run history
func (s *SQLStorage) Save(report *domain.RunReport) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	startedAt, err := time.Parse(time.RFC3339, report.Meta.Timestamp)
	if err != nil {
		startedAt = time.Now()
	}

	m := report.Meta
	res, err := tx.ExecContext(ctx,
		`INSERT INTO test_runs (executable, dialect, options, iterations, total_cases, passed_cases,
			failed_cases, skipped_units, crashed, duration_seconds, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Executable, m.Dialect, m.Options, m.Iterations, m.TotalTestCases, m.PassedTestCases,
		m.FailedTestCases, m.SkippedUnits, m.Crashed, m.DurationSeconds, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, f := range report.Details {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO test_failures (run_id, test_id, test_name, messages, elapsed_ms, resolved)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.TestID, f.TestName, strings.Join(f.Messages, "\n"), f.Elapsed, f.Resolved)
		if err != nil {
			return fmt.Errorf("insert failure %s: %w", f.TestName, err)
		}
	}

	return tx.Commit()
}

// Load returns the most recent report
func (s *SQLStorage) Load() (*domain.RunReport, error) {
	ctx := context.Background()

	var (
		report    domain.RunReport
		runID     int64
		startedAt time.Time
	)
	m := &report.Meta
	err := s.db.QueryRowContext(ctx,
		`SELECT id, executable, dialect, options, iterations, total_cases, passed_cases,
			failed_cases, skipped_units, crashed, duration_seconds, started_at
		FROM test_runs ORDER BY id DESC LIMIT 1`).
		Scan(&runID, &m.Executable, &m.Dialect, &m.Options, &m.Iterations, &m.TotalTestCases,
			&m.PassedTestCases, &m.FailedTestCases, &m.SkippedUnits, &m.Crashed, &m.DurationSeconds, &startedAt)
	if err != nil {
		return nil, fmt.Errorf("load last run: %w", err)
	}
	m.Timestamp = startedAt.Format(time.RFC3339)
	report.SetDuration(time.Duration(m.DurationSeconds * float64(time.Second)))

	rows, err := s.db.QueryContext(ctx,
		`SELECT test_id, test_name, messages, elapsed_ms, resolved
		FROM test_failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	defer rows.Close()

	report.Details = []domain.TestFailure{}
	for rows.Next() {
		var f domain.TestFailure
		var messages string
		if err := rows.Scan(&f.TestID, &f.TestName, &messages, &f.Elapsed, &f.Resolved); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		if messages != "" {
			f.Messages = strings.Split(messages, "\n")
		}
		report.Details = append(report.Details, f)
	}
	return &report, rows.Err()
}
