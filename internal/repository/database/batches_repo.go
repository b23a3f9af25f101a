package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"collectra/internal/config/connections/postgres"
	"collectra/internal/models"
	"collectra/internal/ports"
)

type BatchRepo struct {
	pg *postgres.Postgres
}

func NewBatchRepo(pg *postgres.Postgres) *BatchRepo {
	return &BatchRepo{pg: pg}
}

const batchColumns = `
	id, batch_name, client_id, client_code, client_name,
	operation_type, import_period, import_month, import_year,
	file_name, file_size, file_path, file_checksum,
	total_records, valid_records, invalid_records, imported_records,
	created_records, updated_records,
	status, imported_by, import_started_at, import_completed_at,
	created_at, updated_at`

func (r *BatchRepo) Create(ctx context.Context, b *models.ImportBatch) error {
	_, err := r.pg.Pool.Exec(ctx, `
		INSERT INTO import_batches (
			id, batch_name, client_id, client_code, client_name,
			operation_type, import_period, import_month, import_year,
			file_name, file_size, file_path, file_checksum,
			status, imported_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, NOW(), NOW()
		)`,
		b.ID, b.BatchName, b.ClientID, b.ClientCode, b.ClientName,
		string(b.OperationType), b.ImportPeriod, b.ImportMonth, b.ImportYear,
		b.FileName, b.FileSize, b.FilePath, b.FileChecksum,
		string(b.Status), b.ImportedBy,
	)
	return err
}

func (r *BatchRepo) Get(ctx context.Context, id string) (*models.ImportBatch, error) {
	row := r.pg.Pool.QueryRow(ctx, `SELECT `+batchColumns+` FROM import_batches WHERE id = $1`, id)
	b, err := scanBatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BatchRepo) List(ctx context.Context, limit, offset int) ([]models.ImportBatch, error) {
	rows, err := r.pg.Pool.Query(ctx,
		`SELECT `+batchColumns+` FROM import_batches ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ImportBatch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// MarkValidating is the UPLOADED -> VALIDATING guard; the WHERE clause makes
// the transition a compare-and-set, so a concurrent validate loses cleanly.
func (r *BatchRepo) MarkValidating(ctx context.Context, id string) (bool, error) {
	ct, err := r.pg.Pool.Exec(ctx, `
		UPDATE import_batches SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`,
		id, string(models.StatusValidating), string(models.StatusUploaded),
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *BatchRepo) FinishValidation(ctx context.Context, id string, total, valid, invalid int, status models.ImportStatus) error {
	_, err := r.pg.Pool.Exec(ctx, `
		UPDATE import_batches SET
			total_records = $2, valid_records = $3, invalid_records = $4,
			status = $5, updated_at = NOW()
		WHERE id = $1`,
		id, total, valid, invalid, string(status),
	)
	return err
}

func (r *BatchRepo) MarkImporting(ctx context.Context, id string, startedAt time.Time) (bool, error) {
	ct, err := r.pg.Pool.Exec(ctx, `
		UPDATE import_batches SET status = $2, import_started_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, string(models.StatusImporting), startedAt, string(models.StatusValidated),
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *BatchRepo) FinishImport(ctx context.Context, id string, imported, created, updated int, status models.ImportStatus, completedAt time.Time) error {
	_, err := r.pg.Pool.Exec(ctx, `
		UPDATE import_batches SET
			imported_records = $2, created_records = $3, updated_records = $4,
			status = $5, import_completed_at = $6, updated_at = NOW()
		WHERE id = $1`,
		id, imported, created, updated, string(status), completedAt,
	)
	return err
}

func (r *BatchRepo) MarkFailed(ctx context.Context, id string) error {
	_, err := r.pg.Pool.Exec(ctx, `
		UPDATE import_batches SET status = $2, updated_at = NOW()
		WHERE id = $1`,
		id, string(models.StatusFailed),
	)
	return err
}

func (r *BatchRepo) Reset(ctx context.Context, id string) error {
	ct, err := r.pg.Pool.Exec(ctx, `
		UPDATE import_batches SET
			status = $2, imported_records = 0, created_records = 0, updated_records = 0,
			import_started_at = NULL, import_completed_at = NULL, updated_at = NOW()
		WHERE id = $1`,
		id, string(models.StatusValidated),
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func scanBatch(row rowScanner) (*models.ImportBatch, error) {
	var b models.ImportBatch
	var opType, status string
	err := row.Scan(
		&b.ID, &b.BatchName, &b.ClientID, &b.ClientCode, &b.ClientName,
		&opType, &b.ImportPeriod, &b.ImportMonth, &b.ImportYear,
		&b.FileName, &b.FileSize, &b.FilePath, &b.FileChecksum,
		&b.TotalRecords, &b.ValidRecords, &b.InvalidRecords, &b.ImportedRecords,
		&b.CreatedRecords, &b.UpdatedRecords,
		&status, &b.ImportedBy, &b.ImportStartedAt, &b.ImportCompletedAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.OperationType = models.OperationType(opType)
	b.Status = models.ImportStatus(status)
	return &b, nil
}
