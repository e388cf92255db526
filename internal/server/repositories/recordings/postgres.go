// Package recordings persists session recordings, their analysis summaries
// and export requests in PostgreSQL.
package recordings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/dbx"
	"github.com/dmitrijs2005/daleavatar/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectRecording = `SELECT r.id, r.user_id, r.session_id, r.status, r.duration_ms, r.size_bytes,
		 r.storage_key, a.summary_text, r.created_at
		 FROM recordings r
		 LEFT JOIN analysis a ON a.recording_id = r.id
		 `

func (r *PostgresRepository) Create(ctx context.Context, userID int64, sessionID *string) (*models.Recording, error) {
	query :=
		`INSERT INTO recordings (user_id, session_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	rec := &models.Recording{UserID: userID, SessionID: sessionID, Status: models.RecordingPending}

	err := r.db.QueryRowContext(ctx, query, userID, sessionID, models.RecordingPending).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// List returns the newest recordings of userID first, at most limit rows.
func (r *PostgresRepository) List(ctx context.Context, userID int64, limit int) ([]models.Recording, error) {
	query := selectRecording +
		`WHERE r.user_id = $1
		 ORDER BY r.created_at DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Recording, 0)
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.Recording, error) {
	query := selectRecording +
		`WHERE r.id = $1 AND r.user_id = $2
		 `

	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// MarkUploaded records the storage key and size and flips the status to ready.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, userID, id int64, key string, size int64) error {
	query :=
		`UPDATE recordings SET status = $1, storage_key = $2, size_bytes = $3
		 WHERE id = $4 AND user_id = $5
		 `

	res, err := r.db.ExecContext(ctx, query, models.RecordingReady, key, size, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateExport(ctx context.Context, export *models.Export) (*models.Export, error) {
	query :=
		`INSERT INTO exports (recording_id, target, status, reference)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		export.RecordingID, export.Target, export.Status, export.Reference).Scan(&export.ID, &export.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return export, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(s scanner) (*models.Recording, error) {
	var (
		rec       models.Recording
		sessionID sql.NullString
		duration  sql.NullInt64
		size      sql.NullInt64
		key       sql.NullString
		summary   sql.NullString
	)

	err := s.Scan(&rec.ID, &rec.UserID, &sessionID, &rec.Status, &duration, &size, &key, &summary, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if sessionID.Valid {
		rec.SessionID = &sessionID.String
	}
	if duration.Valid {
		rec.DurationMS = &duration.Int64
	}
	if size.Valid {
		rec.SizeBytes = &size.Int64
	}
	if key.Valid {
		rec.StorageKey = &key.String
	}
	if summary.Valid {
		rec.SummaryText = &summary.String
	}

	return &rec, nil
}
