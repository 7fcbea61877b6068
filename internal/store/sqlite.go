package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tkiley/jobtrail/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertApplications inserts or updates a batch of application records.
// An existing row is only overwritten when the incoming record carries
// a strictly newer last_update, so replaying old messages never rolls a
// record back.
func (s *SQLiteStore) UpsertApplications(
	ctx context.Context,
	apps []model.Application,
) error {
	if len(apps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO applications (
			company, job_title, status,
			date_applied, last_update, subject
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(company, job_title) DO UPDATE SET
			status       = excluded.status,
			date_applied = excluded.date_applied,
			last_update  = excluded.last_update,
			subject      = excluded.subject
		WHERE excluded.last_update > applications.last_update`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range apps {
		_, err = stmt.ExecContext(ctx,
			a.Company, a.JobTitle, string(a.Status),
			a.DateApplied.UTC(), a.LastUpdate.UTC(), a.Subject,
		)
		if err != nil {
			return fmt.Errorf(
				"upserting application %s / %s: %w", a.Company, a.JobTitle, err,
			)
		}
	}

	return tx.Commit()
}

// GetApplications retrieves application records matching the provided
// filter options.
func (s *SQLiteStore) GetApplications(
	ctx context.Context,
	opts ApplicationFilter,
) ([]model.Application, error) {
	var conditions []string
	var args []interface{}

	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*opts.Status))
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions, "(company LIKE ? OR job_title LIKE ? OR subject LIKE ?)")
		q := "%" + *opts.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM applications"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Determine sort column.
	sortBy := "last_update"
	if opts.SortBy != "" {
		allowedSorts := map[string]bool{
			"company":      true,
			"job_title":    true,
			"status":       true,
			"date_applied": true,
			"last_update":  true,
		}
		if allowedSorts[opts.SortBy] {
			sortBy = opts.SortBy
		}
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, company ASC", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	var apps []model.Application
	if err := s.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("querying applications: %w", err)
	}

	return apps, nil
}

// GetApplicationByKey retrieves a single application record by its
// (company, job title) key. Returns nil when no record exists.
func (s *SQLiteStore) GetApplicationByKey(
	ctx context.Context,
	key model.ApplicationKey,
) (*model.Application, error) {
	var app model.Application
	err := s.db.GetContext(ctx, &app,
		"SELECT * FROM applications WHERE company = ? AND job_title = ?",
		key.Company, key.JobTitle,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(
			"getting application %s / %s: %w", key.Company, key.JobTitle, err,
		)
	}

	return &app, nil
}

// DeleteApplication removes an application record by its key.
func (s *SQLiteStore) DeleteApplication(
	ctx context.Context,
	key model.ApplicationKey,
) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM applications WHERE company = ? AND job_title = ?",
		key.Company, key.JobTitle,
	)
	if err != nil {
		return fmt.Errorf(
			"deleting application %s / %s: %w", key.Company, key.JobTitle, err,
		)
	}
	return nil
}

// RecordScanRun inserts a completed scan run.
func (s *SQLiteStore) RecordScanRun(
	ctx context.Context,
	run model.ScanRun,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_runs (
			id, account, started_at, finished_at,
			messages_seen, messages_classified, messages_skipped,
			records_upserted, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Account, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.MessagesSeen, run.MessagesClassified, run.MessagesSkipped,
		run.RecordsUpserted, run.Status, run.Error,
	)
	if err != nil {
		return fmt.Errorf("recording scan run %s: %w", run.ID, err)
	}

	return nil
}

// LastScanRun retrieves the most recently finished scan run for the
// given account. Returns nil when the account has never been scanned.
func (s *SQLiteStore) LastScanRun(
	ctx context.Context,
	account string,
) (*model.ScanRun, error) {
	var run model.ScanRun
	err := s.db.GetContext(ctx, &run,
		"SELECT * FROM scan_runs WHERE account = ? ORDER BY finished_at DESC LIMIT 1",
		account,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last scan run for %s: %w", account, err)
	}

	return &run, nil
}
