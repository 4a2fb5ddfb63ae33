package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"woocommerce/migrator/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const createReportsTable = `
CREATE TABLE IF NOT EXISTS migration_reports (
	id          TEXT PRIMARY KEY,
	entity      TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	data        JSONB NOT NULL
)`

// DB is the part of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresStore struct {
	db DB
}

// NewPostgresStore creates the reports table when missing.
func NewPostgresStore(ctx context.Context, db DB) (Store, error) {
	if _, err := db.Exec(ctx, createReportsTable); err != nil {
		return nil, fmt.Errorf("failed to create migration_reports table: %w", err)
	}
	return &postgresStore{db: db}, nil
}

func (s *postgresStore) Save(ctx context.Context, report *domain.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.ID, err)
	}

	query := `
	INSERT INTO migration_reports (id, entity, status, started_at, finished_at, data)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET status = $3, finished_at = $5, data = $6`
	_, err = s.db.Exec(ctx, query,
		report.ID,
		report.Entity.String(),
		string(report.Status),
		report.StartedAt,
		report.FinishedAt,
		data,
	)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}

	return nil
}

func (s *postgresStore) Get(ctx context.Context, id string) (*domain.Report, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM migration_reports WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

func (s *postgresStore) List(ctx context.Context, limit int) ([]*domain.Report, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, `SELECT data FROM migration_reports ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var report domain.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}
