package models

import "time"

type ClientType string

const (
	ClientTypeBank  ClientType = "BANK"
	ClientTypeNBFI  ClientType = "NBFI"
	ClientTypeOther ClientType = "OTHER"
)

func (t ClientType) Valid() bool {
	switch t {
	case ClientTypeBank, ClientTypeNBFI, ClientTypeOther:
		return true
	}
	return false
}

// Client is a banking/financial partner that submits import files.
type Client struct {
	ID         string
	ClientCode string
	ClientName string
	ClientType ClientType

	ContactPerson string
	ContactEmail  string
	ContactPhone  string
	Address       string

	RegistrationNumber string
	TaxID              string

	IsActive bool

	CreatedAt *time.Time
	UpdatedAt *time.Time
	CreatedBy *string
}
