package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"collectra/internal/models"
	"collectra/internal/ports"
)

// ErrBatchStateViolation is returned when validate/process/reset is requested
// against a batch whose current status does not allow it. The batch is left
// untouched.
var ErrBatchStateViolation = errors.New("batch state violation")

// ErrUnknownOperation is returned for an operation type with no field schema.
var ErrUnknownOperation = errors.New("unknown operation type")

// Service owns the import batch lifecycle: UPLOADED -> VALIDATING ->
// {VALIDATED|FAILED} -> IMPORTING -> {COMPLETED|FAILED}, plus the
// administrative reset. The persisted status doubles as the per-batch
// concurrency guard: both MarkValidating and MarkImporting are
// compare-and-set, so two workers cannot run the same phase twice.
type Service struct {
	Batches   ports.BatchStore
	Errors    ports.ErrorStore
	Customers ports.CustomerStore
	Payments  ports.PaymentStore
	Audit     ports.RowAudit
	Opener    ports.FileOpener

	Reader    *Reader
	Validator *Validator

	// CommitSize bounds the unit-of-work during import; partial progress at
	// this granularity survives a crash.
	CommitSize int
}

func NewService(batches ports.BatchStore, errs ports.ErrorStore, customers ports.CustomerStore, payments ports.PaymentStore, audit ports.RowAudit, opener ports.FileOpener, commitSize int) *Service {
	if commitSize <= 0 {
		commitSize = 100
	}
	return &Service{
		Batches:    batches,
		Errors:     errs,
		Customers:  customers,
		Payments:   payments,
		Audit:      audit,
		Opener:     opener,
		Reader:     NewReader(),
		Validator:  NewValidator(),
		CommitSize: commitSize,
	}
}

type UploadRequest struct {
	BatchName     string
	Client        *models.Client
	OperationType models.OperationType
	ImportPeriod  string
	FileName      string
	FileSize      int64
	FilePath      string
	FileChecksum  string
	UserID        *string
}

type ValidationSummary struct {
	BatchID        string              `json:"batch_id"`
	Status         models.ImportStatus `json:"status"`
	TotalRecords   int                 `json:"total_records"`
	ValidRecords   int                 `json:"valid_records"`
	InvalidRecords int                 `json:"invalid_records"`
	ErrorCount     int                 `json:"errors"`
	Message        string              `json:"message"`
	NextStep       string              `json:"next_step"`
}

type ProcessSummary struct {
	BatchID           string              `json:"batch_id"`
	Status            models.ImportStatus `json:"status"`
	TotalRecords      int                 `json:"total_records"`
	ImportedRecords   int                 `json:"imported_records"`
	CreatedRecords    int                 `json:"created_records"`
	UpdatedRecords    int                 `json:"updated_records"`
	ProcessingSeconds float64             `json:"processing_time_seconds"`
	Message           string              `json:"message"`
	NextStep          string              `json:"next_step"`
}

// CreateBatch registers an uploaded file as a new batch in UPLOADED state.
func (s *Service) CreateBatch(ctx context.Context, req UploadRequest) (*models.ImportBatch, error) {
	if _, ok := SchemaFor(req.OperationType); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, req.OperationType)
	}

	month, year := ParsePeriod(req.ImportPeriod)

	name := req.BatchName
	if name == "" {
		name = fmt.Sprintf("%s %s %s", req.Client.ClientName, req.OperationType, req.ImportPeriod)
	}

	b := &models.ImportBatch{
		ID:            uuid.NewString(),
		BatchName:     name,
		ClientID:      req.Client.ID,
		ClientCode:    req.Client.ClientCode,
		ClientName:    req.Client.ClientName,
		OperationType: req.OperationType,
		ImportPeriod:  req.ImportPeriod,
		ImportMonth:   month,
		ImportYear:    year,
		FileName:      req.FileName,
		FileSize:      req.FileSize,
		FilePath:      req.FilePath,
		FileChecksum:  req.FileChecksum,
		Status:        models.StatusUploaded,
		ImportedBy:    req.UserID,
	}

	if err := s.Batches.Create(ctx, b); err != nil {
		return nil, err
	}
	log.Printf("[IMP][UPLOAD] batch=%s client=%s type=%s file=%q size=%d", b.ID, b.ClientCode, b.OperationType, b.FileName, b.FileSize)
	return b, nil
}

// Validate runs the validation phase. Requires UPLOADED.
func (s *Service) Validate(ctx context.Context, batchID string) (*ValidationSummary, error) {
	b, err := s.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	ok, err := s.Batches.MarkValidating(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: batch must be in UPLOADED status to validate, got %s", ErrBatchStateViolation, b.Status)
	}

	log.Printf("[IMP][VALIDATE][START] batch=%s type=%s path=%q", b.ID, b.OperationType, b.FilePath)

	table, err := s.readTable(ctx, b)
	if err != nil {
		s.failBatch(ctx, b.ID, models.ErrTypeUnreadableFile, err)
		return nil, err
	}

	schema, ok := SchemaFor(b.OperationType)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownOperation, b.OperationType)
		s.failBatch(ctx, b.ID, models.ErrTypeFatalImportError, err)
		return nil, err
	}

	rs := RuleSet{ExpectedClientCode: b.ClientCode}
	rs.NICCritical = rs.ExpectedClientCode != "" && table.HasColumn("client_code")

	valid, findings := s.Validator.Validate(table, b.ID, schema, rs)

	if len(findings) > 0 {
		if err := s.Errors.InsertMany(ctx, findings); err != nil {
			s.failBatch(ctx, b.ID, models.ErrTypeFatalImportError, err)
			return nil, fmt.Errorf("persist validation errors: %w", err)
		}
	}

	total := len(table.Rows)
	invalid := total - valid
	status := models.StatusValidated
	for _, f := range findings {
		if f.IsCritical {
			status = models.StatusFailed
			break
		}
	}

	if err := s.Batches.FinishValidation(ctx, b.ID, total, valid, invalid, status); err != nil {
		return nil, err
	}

	log.Printf("[IMP][VALIDATE][DONE] batch=%s status=%s total=%d valid=%d invalid=%d findings=%d", b.ID, status, total, valid, invalid, len(findings))

	sum := &ValidationSummary{
		BatchID:        b.ID,
		Status:         status,
		TotalRecords:   total,
		ValidRecords:   valid,
		InvalidRecords: invalid,
		ErrorCount:     len(findings),
	}
	if status == models.StatusValidated {
		sum.Message = "Validation completed"
		sum.NextStep = fmt.Sprintf("Use /imports/process/%s to import data", b.ID)
	} else {
		sum.Message = "Validation failed - critical errors found"
		sum.NextStep = "Fix errors and re-upload file"
	}
	return sum, nil
}

// Process runs the import phase. Requires VALIDATED.
func (s *Service) Process(ctx context.Context, batchID string) (*ProcessSummary, error) {
	b, err := s.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ok, err := s.Batches.MarkImporting(ctx, batchID, started)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: batch must be validated before processing, got %s", ErrBatchStateViolation, b.Status)
	}

	log.Printf("[IMP][PROCESS][START] batch=%s type=%s path=%q", b.ID, b.OperationType, b.FilePath)

	// Re-reading the source is the one fatal failure mode of this phase.
	table, err := s.readTable(ctx, b)
	if err != nil {
		s.failBatch(ctx, b.ID, models.ErrTypeFatalImportError, err)
		return nil, err
	}

	schema, _ := SchemaFor(b.OperationType)
	rs := RuleSet{ExpectedClientCode: b.ClientCode}
	rs.NICCritical = rs.ExpectedClientCode != "" && table.HasColumn("client_code")
	_, findings := s.Validator.Validate(table, b.ID, schema, rs)
	invalid := invalidRowSet(findings)

	var imported, created, updated int
	if b.OperationType == models.OperationPayment {
		imported, err = s.importPayments(ctx, table, b, invalid)
	} else {
		imported, created, updated, err = s.importCustomers(ctx, table, b, invalid, b.ImportedBy)
	}
	if err != nil {
		s.failBatch(ctx, b.ID, models.ErrTypeFatalImportError, err)
		return nil, err
	}

	completed := time.Now()
	if err := s.Batches.FinishImport(ctx, b.ID, imported, created, updated, models.StatusCompleted, completed); err != nil {
		return nil, err
	}

	elapsed := completed.Sub(started).Seconds()
	log.Printf("[IMP][PROCESS][DONE] batch=%s imported=%d created=%d updated=%d took=%.2fs", b.ID, imported, created, updated, elapsed)

	return &ProcessSummary{
		BatchID:           b.ID,
		Status:            models.StatusCompleted,
		TotalRecords:      b.TotalRecords,
		ImportedRecords:   imported,
		CreatedRecords:    created,
		UpdatedRecords:    updated,
		ProcessingSeconds: elapsed,
		Message:           fmt.Sprintf("Successfully imported %d records", imported),
		NextStep:          "Data is now available in the system. Use /customers to view imported customers",
	}, nil
}

// Reset is the administrative escape hatch: any state back to VALIDATED with
// import counters zeroed, so a batch can be reprocessed idempotently.
func (s *Service) Reset(ctx context.Context, batchID string) (*models.ImportBatch, error) {
	if _, err := s.Batches.Get(ctx, batchID); err != nil {
		return nil, err
	}
	if err := s.Batches.Reset(ctx, batchID); err != nil {
		return nil, err
	}
	log.Printf("[IMP][RESET] batch=%s rewound to %s", batchID, models.StatusValidated)
	return s.Batches.Get(ctx, batchID)
}

func (s *Service) readTable(ctx context.Context, b *models.ImportBatch) (*Table, error) {
	rc, meta, err := s.Opener.Open(ctx, b.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer rc.Close()

	table, err := s.Reader.Read(rc, b.FilePath, meta.ContentType)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// failBatch transitions to FAILED and leaves a batch-level finding behind so
// the failure is inspectable afterwards.
func (s *Service) failBatch(ctx context.Context, batchID, errType string, cause error) {
	if err := s.Batches.MarkFailed(ctx, batchID); err != nil {
		log.Printf("[IMP][ERR] mark batch %s failed: %v", batchID, err)
	}
	finding := models.ImportError{
		BatchID:      batchID,
		RowNumber:    0,
		ErrorType:    errType,
		ErrorMessage: cause.Error(),
		IsCritical:   true,
	}
	if err := s.Errors.InsertMany(ctx, []models.ImportError{finding}); err != nil {
		log.Printf("[IMP][ERR] persist fatal finding for batch %s: %v", batchID, err)
	}
}

// invalidRowSet collects row numbers with at least one critical finding, so
// the import pass only consumes rows that validated clean.
func invalidRowSet(findings []models.ImportError) map[int]bool {
	out := make(map[int]bool)
	for _, f := range findings {
		if f.IsCritical && f.RowNumber > 0 {
			out[f.RowNumber] = true
		}
	}
	return out
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ParsePeriod splits a free-text "Month Year" import period; anything it
// cannot read falls back to the current month and year.
func ParsePeriod(period string) (month, year int) {
	now := time.Now()
	month, year = int(now.Month()), now.Year()

	var monthName string
	var y int
	if _, err := fmt.Sscanf(period, "%s %d", &monthName, &y); err != nil {
		return month, year
	}
	m, ok := monthsByName[strings.ToLower(strings.TrimSpace(monthName))]
	if !ok || y < 1900 || y > 9999 {
		return month, year
	}
	return int(m), y
}
