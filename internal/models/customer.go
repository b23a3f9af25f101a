package models

import "time"

// Customer is one defaulter account. The natural key for upserts is
// (ClientID, ContractNumber); NIC is indexed but not unique, the same person
// can owe several clients.
type Customer struct {
	ID             string
	ClientID       string
	ContractNumber string

	ClientName  string
	NIC         string
	HomeAddress string

	CustomerContactNumber1 string
	CustomerContactNumber2 string
	CustomerContactNumber3 string

	AccountNumber string
	CardNumber    string

	GrantedAmount               *string
	FacilityGrantedDate         *time.Time
	FacilityEndDate             *time.Time
	MonthlyRentalPaymentWithVAT *string
	LastPaymentDate             *time.Time
	LastPaymentAmount           *string
	DueDate                     *time.Time

	Designation             string
	WorkPlaceName           string
	WorkPlaceAddress        string
	WorkPlaceContactNumber1 string
	WorkPlaceContactNumber2 string

	Guarantor1Name           string
	Guarantor1Address        string
	Guarantor1NIC            string
	Guarantor1ContactNumber1 string
	Guarantor1ContactNumber2 string

	Guarantor2Name           string
	Guarantor2Address        string
	Guarantor2NIC            string
	Guarantor2ContactNumber1 string
	Guarantor2ContactNumber2 string

	Zone         string
	Region       string
	BranchName   string
	DistrictName string
	PostalTown   string

	DaysInArrears     *int
	RentalsInArrears  *int
	Details           string
	PaymentAssumption string

	ImportBatchID *string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	CreatedBy     *string
}
