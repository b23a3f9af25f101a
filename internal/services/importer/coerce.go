package importer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"collectra/internal/models"
)

var errNoContractNumber = errors.New("row has no contract_number")

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseDate tries the layouts banks actually send; nil means unparseable.
// Times are truncated to the calendar day.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, l := range dateLayouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			tt := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
			return &tt
		}
	}
	return nil
}

func parseCount(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Spreadsheets routinely hand integers back as "3.0".
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

// amountPtr normalizes a validated amount cell to a plain decimal string for
// the numeric column bind; unparseable values coerce to absent, validation
// already gated the format.
func amountPtr(s string) *string {
	d, err := ParseAmount(s)
	if err != nil {
		return nil
	}
	v := d.String()
	return &v
}

// buildCustomer coerces one validated row into a customer record scoped to
// the batch's client. Columns without a customer destination (card product
// metadata and the like) are validated upstream but not persisted. Absent
// values stay zero so the upsert never nulls out existing data.
func buildCustomer(row Row, schema Schema, clientID, batchID string, userID *string) (models.Customer, error) {
	c := models.Customer{
		ClientID:      clientID,
		ImportBatchID: &batchID,
		CreatedBy:     userID,
	}

	for _, f := range schema.Fields {
		val, ok := row.Get(f.Name)
		if !ok {
			continue
		}
		switch f.Name {
		case "contract_number":
			c.ContractNumber = val
		case "client_name":
			c.ClientName = val
		case "nic":
			c.NIC = strings.ToUpper(val)
		case "home_address":
			c.HomeAddress = val
		case "customer_contact_number_1":
			c.CustomerContactNumber1 = val
		case "customer_contact_number_2":
			c.CustomerContactNumber2 = val
		case "customer_contact_number_3":
			c.CustomerContactNumber3 = val
		case "account_number", "operative_account_number":
			c.AccountNumber = val
		case "card_number":
			c.CardNumber = val
		case "granted_amount":
			c.GrantedAmount = amountPtr(val)
		case "facility_granted_date":
			c.FacilityGrantedDate = parseDate(val)
		case "facility_end_date":
			c.FacilityEndDate = parseDate(val)
		case "monthly_rental_payment_with_vat":
			c.MonthlyRentalPaymentWithVAT = amountPtr(val)
		case "last_payment_date":
			c.LastPaymentDate = parseDate(val)
		case "last_payment_amount":
			c.LastPaymentAmount = amountPtr(val)
		case "due_date", "payment_due_date":
			c.DueDate = parseDate(val)
		case "days_in_arrears":
			if n := parseCount(val); n != nil && *n >= 0 {
				c.DaysInArrears = n
			}
		case "rentals_in_arrears":
			c.RentalsInArrears = parseCount(val)
		case "designation":
			c.Designation = val
		case "work_place_name":
			c.WorkPlaceName = val
		case "work_place_address":
			c.WorkPlaceAddress = val
		case "work_place_contact_number_1":
			c.WorkPlaceContactNumber1 = val
		case "work_place_contact_number_2":
			c.WorkPlaceContactNumber2 = val
		case "guarantor_1_name":
			c.Guarantor1Name = val
		case "guarantor_1_address":
			c.Guarantor1Address = val
		case "guarantor_1_nic":
			c.Guarantor1NIC = strings.ToUpper(val)
		case "guarantor_1_contact_number_1":
			c.Guarantor1ContactNumber1 = val
		case "guarantor_1_contact_number_2":
			c.Guarantor1ContactNumber2 = val
		case "guarantor_2_name":
			c.Guarantor2Name = val
		case "guarantor_2_address":
			c.Guarantor2Address = val
		case "guarantor_2_nic":
			c.Guarantor2NIC = strings.ToUpper(val)
		case "guarantor_2_contact_number_1":
			c.Guarantor2ContactNumber1 = val
		case "guarantor_2_contact_number_2":
			c.Guarantor2ContactNumber2 = val
		case "zone":
			c.Zone = val
		case "region":
			c.Region = val
		case "branch_name":
			c.BranchName = val
		case "district_name":
			c.DistrictName = val
		case "postal_town":
			c.PostalTown = val
		case "details":
			c.Details = val
		case "payment_assumption":
			c.PaymentAssumption = val
		}
	}

	if c.ContractNumber == "" {
		return c, errNoContractNumber
	}
	return c, nil
}

// buildPayment coerces one validated payment row. Payment rows are persisted
// whether or not they later match a customer.
func buildPayment(row Row, batchID string) models.Payment {
	p := models.Payment{ImportBatchID: batchID, MatchType: models.MatchNone}

	if v, ok := row.Get("payment_date"); ok {
		p.PaymentDate = parseDate(v)
	}
	if v, ok := row.Get("contract_number"); ok {
		p.ContractNumber = v
	}
	if v, ok := row.Get("account_number"); ok {
		p.AccountNumber = v
	}
	if v, ok := row.Get("customer_nic"); ok {
		p.CustomerNIC = strings.ToUpper(v)
	}
	if v, ok := row.Get("receipt_number"); ok {
		p.ReceiptNumber = v
	}
	if v, ok := row.Get("payment_type"); ok {
		p.PaymentType = v
	}
	if v, ok := row.Get("payment_amount"); ok {
		if a := amountPtr(v); a != nil {
			p.PaymentAmount = *a
		}
	}
	if v, ok := row.Get("current_total_arrears"); ok {
		p.CurrentTotalArrears = amountPtr(v)
	}
	if v, ok := row.Get("bank_reference_number"); ok {
		p.BankReferenceNumber = v
	}
	if v, ok := row.Get("payment_method"); ok {
		p.PaymentMethod = v
	}
	if v, ok := row.Get("branch_name"); ok {
		p.BranchName = v
	}
	if v, ok := row.Get("payment_remarks"); ok {
		p.PaymentRemarks = v
	}
	return p
}
