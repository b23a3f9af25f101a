package models

import "time"

// Row-level error taxonomy. MISSING_COLUMNS is emitted once per batch with
// RowNumber 0; everything else is tagged to a spreadsheet row.
const (
	ErrTypeUnreadableFile       = "UNREADABLE_FILE"
	ErrTypeMissingColumns       = "MISSING_COLUMNS"
	ErrTypeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	ErrTypeInvalidNICFormat     = "INVALID_NIC_FORMAT"
	ErrTypeInvalidPhoneFormat   = "INVALID_PHONE_FORMAT"
	ErrTypeInvalidAmountFormat  = "INVALID_AMOUNT_FORMAT"
	ErrTypeNegativeAmount       = "NEGATIVE_AMOUNT"
	ErrTypeInvalidDateFormat    = "INVALID_DATE_FORMAT"
	ErrTypeDuplicateContract    = "DUPLICATE_CONTRACT_IN_FILE"
	ErrTypeClientCodeMismatch   = "CLIENT_CODE_MISMATCH"
	ErrTypeRowProcessingError   = "ROW_PROCESSING_ERROR"
	ErrTypeBatchStateViolation  = "BATCH_STATE_VIOLATION"
	ErrTypeFatalImportError     = "FATAL_IMPORT_ERROR"
)

type ImportError struct {
	ID      string
	BatchID string

	// RowNumber is the physical spreadsheet row (header + 1-based), 0 for
	// batch-level findings.
	RowNumber  int
	ColumnName string

	ErrorType      string
	ErrorMessage   string
	OriginalValue  string
	SuggestedValue string
	IsCritical     bool

	CreatedAt *time.Time
}
