package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"collectra/internal/config/connections/postgres"
	"collectra/internal/models"
)

type ImportErrorRepo struct {
	pg *postgres.Postgres
}

func NewImportErrorRepo(pg *postgres.Postgres) *ImportErrorRepo {
	return &ImportErrorRepo{pg: pg}
}

func (r *ImportErrorRepo) InsertMany(ctx context.Context, errs []models.ImportError) error {
	if len(errs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range errs {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(`
			INSERT INTO import_errors (
				id, batch_id, row_number, column_name, error_type,
				error_message, original_value, suggested_value, is_critical, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
			id, e.BatchID, e.RowNumber, nullIfEmpty(e.ColumnName), e.ErrorType,
			e.ErrorMessage, nullIfEmpty(e.OriginalValue), nullIfEmpty(e.SuggestedValue), e.IsCritical,
		)
	}

	br := r.pg.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for range errs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *ImportErrorRepo) ListByBatch(ctx context.Context, batchID string) ([]models.ImportError, error) {
	rows, err := r.pg.Pool.Query(ctx, `
		SELECT id, batch_id, row_number, column_name, error_type,
		       error_message, original_value, suggested_value, is_critical, created_at
		FROM import_errors
		WHERE batch_id = $1
		ORDER BY row_number, created_at`,
		batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ImportError, 0)
	for rows.Next() {
		var e models.ImportError
		var column, original, suggested *string
		if err := rows.Scan(
			&e.ID, &e.BatchID, &e.RowNumber, &column, &e.ErrorType,
			&e.ErrorMessage, &original, &suggested, &e.IsCritical, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.ColumnName = deref(column)
		e.OriginalValue = deref(original)
		e.SuggestedValue = deref(suggested)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ImportErrorRepo) CountByBatch(ctx context.Context, batchID string) (total, critical int, err error) {
	err = r.pg.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_critical)
		FROM import_errors WHERE batch_id = $1`,
		batchID,
	).Scan(&total, &critical)
	return total, critical, err
}
