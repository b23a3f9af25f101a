package models

import "time"

const (
	MatchContractNumber = "CONTRACT_NUMBER_MATCH"
	MatchAccountNumber  = "ACCOUNT_NUMBER_MATCH"
	MatchNIC            = "NIC_MATCH"
	MatchNone           = "NO_MATCH"
)

// Payment is one received payment row. Payments are persisted whether or not
// they matched a customer, for reconciliation review.
type Payment struct {
	ID            string
	ImportBatchID string

	PaymentDate    *time.Time
	ContractNumber string
	AccountNumber  string
	CustomerNIC    string

	ReceiptNumber       string
	PaymentType         string
	PaymentAmount       string
	CurrentTotalArrears *string

	BankReferenceNumber string
	PaymentMethod       string
	BranchName          string
	PaymentRemarks      string

	MatchedCustomerID *string
	MatchType         string
	IsMatched         bool

	CreatedAt *time.Time
}
