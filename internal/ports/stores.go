package ports

import (
	"context"
	"errors"
	"time"

	"collectra/internal/models"
)

// ErrNotFound is returned by all stores when the requested record does not
// exist.
var ErrNotFound = errors.New("record not found")

// BatchStore persists import batches. Status transitions that act as
// concurrency guards go through the compare-and-set methods: the update only
// lands if the batch is still in the expected state, and the caller learns
// whether it won.
type BatchStore interface {
	Create(ctx context.Context, b *models.ImportBatch) error
	Get(ctx context.Context, id string) (*models.ImportBatch, error)
	List(ctx context.Context, limit, offset int) ([]models.ImportBatch, error)

	// MarkValidating moves UPLOADED -> VALIDATING.
	MarkValidating(ctx context.Context, id string) (bool, error)
	// FinishValidation writes validation stats and the resulting status
	// (VALIDATED or FAILED) in one statement.
	FinishValidation(ctx context.Context, id string, total, valid, invalid int, status models.ImportStatus) error

	// MarkImporting moves VALIDATED -> IMPORTING and stamps import_started_at.
	MarkImporting(ctx context.Context, id string, startedAt time.Time) (bool, error)
	// FinishImport writes import counters, completion time and the resulting
	// status (COMPLETED or FAILED) in one statement.
	FinishImport(ctx context.Context, id string, imported, created, updated int, status models.ImportStatus, completedAt time.Time) error

	MarkFailed(ctx context.Context, id string) error

	// Reset rewinds any state to VALIDATED with import counters zeroed, for
	// administrative reprocessing.
	Reset(ctx context.Context, id string) error
}

type ErrorStore interface {
	InsertMany(ctx context.Context, errs []models.ImportError) error
	ListByBatch(ctx context.Context, batchID string) ([]models.ImportError, error)
	CountByBatch(ctx context.Context, batchID string) (total, critical int, err error)
}

// CustomerStore is the customer ledger. UpsertBatch commits its whole slice as
// one unit of work; callers chunk rows to bound transaction size. The returned
// error slice is aligned with the input: a non-nil entry means that row was
// skipped.
type CustomerStore interface {
	UpsertBatch(ctx context.Context, rows []models.Customer) (created, updated int, rowErrs []error, err error)

	FindByClientContract(ctx context.Context, clientID, contractNumber string) (*models.Customer, error)
	FindByAccountNumber(ctx context.Context, clientID, accountNumber string) (*models.Customer, error)
	FindByNIC(ctx context.Context, clientID, nic string) (*models.Customer, error)

	// ApplyPayment updates the matched customer's payment state.
	ApplyPayment(ctx context.Context, customerID string, paymentDate time.Time, amount string, daysInArrears int) error

	Get(ctx context.Context, id string) (*models.Customer, error)
	List(ctx context.Context, clientID string, limit, offset int) ([]models.Customer, error)
	Delete(ctx context.Context, id string) error
	CountByClient(ctx context.Context, clientID string) (int64, error)
	DeleteByClient(ctx context.Context, clientID string) (int64, error)
}

type PaymentStore interface {
	// InsertBatch stores payment rows; the returned slice is aligned with the
	// input, non-nil entries mean the row failed.
	InsertBatch(ctx context.Context, rows []models.Payment) ([]error, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.Payment, error)
}

type ClientStore interface {
	Create(ctx context.Context, c *models.Client) error
	Get(ctx context.Context, id string) (*models.Client, error)
	GetByCode(ctx context.Context, code string) (*models.Client, error)
	List(ctx context.Context, activeOnly bool, search string, limit, offset int) ([]models.Client, error)
	Update(ctx context.Context, c *models.Client) error
	Delete(ctx context.Context, id string) error
}

// RowAuditItem is one processed-row audit document.
type RowAuditItem struct {
	BatchID    string
	RowNumber  int
	EntityType string
	EntityID   string
	Payload    string
	Status     string
	Error      string
}

// RowAudit records the raw payload and outcome of every processed row,
// outside the relational store. Failures here are logged, never fatal.
type RowAudit interface {
	Insert(ctx context.Context, item RowAuditItem) error
}
