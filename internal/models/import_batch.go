package models

import "time"

type ImportStatus string

const (
	StatusUploaded   ImportStatus = "UPLOADED"
	StatusValidating ImportStatus = "VALIDATING"
	StatusValidated  ImportStatus = "VALIDATED"
	StatusImporting  ImportStatus = "IMPORTING"
	StatusCompleted  ImportStatus = "COMPLETED"
	StatusFailed     ImportStatus = "FAILED"
	StatusRollback   ImportStatus = "ROLLBACK"
)

type OperationType string

const (
	OperationCreditCard OperationType = "CREDIT_CARD"
	OperationLoan       OperationType = "LOAN"
	OperationLeasing    OperationType = "LEASING"
	OperationPayment    OperationType = "PAYMENT"
)

func (t OperationType) Valid() bool {
	switch t {
	case OperationCreditCard, OperationLoan, OperationLeasing, OperationPayment:
		return true
	}
	return false
}

// ImportBatch tracks one upload-to-import job. Stats and status are always
// written together so readers never see a status without its counters.
type ImportBatch struct {
	ID        string
	BatchName string

	ClientID   string
	ClientCode string
	ClientName string

	OperationType OperationType
	ImportPeriod  string
	ImportMonth   int
	ImportYear    int

	FileName     string
	FileSize     int64
	FilePath     string
	FileChecksum string

	TotalRecords    int
	ValidRecords    int
	InvalidRecords  int
	ImportedRecords int
	CreatedRecords  int
	UpdatedRecords  int

	Status     ImportStatus
	ImportedBy *string

	ImportStartedAt   *time.Time
	ImportCompletedAt *time.Time

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// ProgressPercent reports coarse milestones keyed off status; only IMPORTING
// interpolates on imported/total.
func (b *ImportBatch) ProgressPercent() float64 {
	switch b.Status {
	case StatusCompleted:
		return 100
	case StatusImporting:
		if b.TotalRecords <= 0 {
			return 0
		}
		return float64(b.ImportedRecords) / float64(b.TotalRecords) * 100
	case StatusValidated:
		return 75
	case StatusValidating:
		return 25
	}
	return 0
}
