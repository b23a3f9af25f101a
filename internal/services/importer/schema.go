package importer

import "collectra/internal/models"

// FieldKind is the semantic class of a column; it drives both validation and
// coercion during import.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNIC
	KindPhone
	KindAmount
	KindCount
	KindDate
)

// Field is one column of an operation-type schema, in file order.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// Schema is the ordered field table for one operation type. Both the
// validator and the import engine consult it, so there is a single place that
// says which columns exist, what they hold and which ones are mandatory.
type Schema struct {
	Operation models.OperationType
	Fields    []Field
}

func (s Schema) Required() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// customerCommon is shared by every non-payment operation type.
var customerCommon = []Field{
	{Name: "client_name", Kind: KindText, Required: true},
	{Name: "nic", Kind: KindNIC, Required: true},
	{Name: "contract_number", Kind: KindText, Required: true},
	{Name: "home_address", Kind: KindText},
	{Name: "customer_contact_number_1", Kind: KindPhone},
	{Name: "customer_contact_number_2", Kind: KindPhone},
	{Name: "customer_contact_number_3", Kind: KindPhone},
	{Name: "account_number", Kind: KindText},
	{Name: "granted_amount", Kind: KindAmount},
	{Name: "facility_granted_date", Kind: KindDate},
	{Name: "facility_end_date", Kind: KindDate},
	{Name: "monthly_rental_payment_with_vat", Kind: KindAmount},
	{Name: "last_payment_date", Kind: KindDate},
	{Name: "last_payment_amount", Kind: KindAmount},
	{Name: "due_date", Kind: KindDate},
	{Name: "days_in_arrears", Kind: KindCount},
	{Name: "designation", Kind: KindText},
	{Name: "work_place_name", Kind: KindText},
	{Name: "work_place_address", Kind: KindText},
	{Name: "work_place_contact_number_1", Kind: KindPhone},
	{Name: "work_place_contact_number_2", Kind: KindPhone},
	{Name: "guarantor_1_name", Kind: KindText},
	{Name: "guarantor_1_address", Kind: KindText},
	{Name: "guarantor_1_nic", Kind: KindNIC},
	{Name: "guarantor_1_contact_number_1", Kind: KindPhone},
	{Name: "guarantor_1_contact_number_2", Kind: KindPhone},
	{Name: "guarantor_2_name", Kind: KindText},
	{Name: "guarantor_2_address", Kind: KindText},
	{Name: "guarantor_2_nic", Kind: KindNIC},
	{Name: "guarantor_2_contact_number_1", Kind: KindPhone},
	{Name: "guarantor_2_contact_number_2", Kind: KindPhone},
	{Name: "zone", Kind: KindText},
	{Name: "region", Kind: KindText},
	{Name: "branch_name", Kind: KindText},
	{Name: "district_name", Kind: KindText},
	{Name: "postal_town", Kind: KindText},
	{Name: "details", Kind: KindText},
	{Name: "payment_assumption", Kind: KindText},
	{Name: "client_code", Kind: KindText},
}

func withExtra(extra ...Field) []Field {
	out := make([]Field, 0, len(customerCommon)+len(extra))
	out = append(out, customerCommon...)
	out = append(out, extra...)
	return out
}

// require flips the Required flag on shared columns that a particular
// operation type treats as mandatory.
func require(fields []Field, names ...string) []Field {
	for _, n := range names {
		for i := range fields {
			if fields[i].Name == n {
				fields[i].Required = true
			}
		}
	}
	return fields
}

var schemas = map[models.OperationType]Schema{
	models.OperationCreditCard: {
		Operation: models.OperationCreditCard,
		Fields: withExtra(
			Field{Name: "card_number", Kind: KindText, Required: true},
			Field{Name: "card_product_type", Kind: KindText},
			Field{Name: "credit_limit", Kind: KindAmount},
			Field{Name: "capital_balance", Kind: KindAmount},
			Field{Name: "interest_over_due_balance", Kind: KindAmount},
			Field{Name: "total_outstanding_amount", Kind: KindAmount},
			Field{Name: "minimum_due_amount", Kind: KindAmount},
			Field{Name: "statement_date", Kind: KindDate},
			Field{Name: "payment_due_date", Kind: KindDate},
		),
	},
	models.OperationLoan: {
		Operation: models.OperationLoan,
		Fields: require(withExtra(
			Field{Name: "loan_type", Kind: KindText},
			Field{Name: "loan_number", Kind: KindText, Required: true},
			Field{Name: "capital_balance", Kind: KindAmount, Required: true},
			Field{Name: "interest_over_due_balance", Kind: KindAmount, Required: true},
			Field{Name: "installment_amount", Kind: KindAmount},
			Field{Name: "operative_account_number", Kind: KindText},
			Field{Name: "security_description", Kind: KindText},
			Field{Name: "security_value", Kind: KindAmount},
		), "account_number", "granted_amount"),
	},
	models.OperationLeasing: {
		Operation: models.OperationLeasing,
		Fields: withExtra(
			Field{Name: "vehicle_number", Kind: KindText, Required: true},
			Field{Name: "asset_description", Kind: KindText, Required: true},
			Field{Name: "model", Kind: KindText},
			Field{Name: "total_arrears", Kind: KindAmount, Required: true},
			Field{Name: "rentals_in_arrears", Kind: KindCount, Required: true},
			Field{Name: "rental_category", Kind: KindText},
			Field{Name: "other_party_name", Kind: KindText},
			Field{Name: "other_party_contact_number", Kind: KindPhone},
		),
	},
	models.OperationPayment: {
		Operation: models.OperationPayment,
		Fields: []Field{
			{Name: "payment_date", Kind: KindDate, Required: true},
			{Name: "contract_number", Kind: KindText, Required: true},
			{Name: "payment_amount", Kind: KindAmount, Required: true},
			{Name: "account_number", Kind: KindText},
			{Name: "customer_nic", Kind: KindNIC},
			{Name: "receipt_number", Kind: KindText},
			{Name: "payment_type", Kind: KindText},
			{Name: "current_total_arrears", Kind: KindAmount},
			{Name: "bank_reference_number", Kind: KindText},
			{Name: "payment_method", Kind: KindText},
			{Name: "branch_name", Kind: KindText},
			{Name: "payment_remarks", Kind: KindText},
			{Name: "client_code", Kind: KindText},
		},
	},
}

// SchemaFor returns the field table for an operation type.
func SchemaFor(op models.OperationType) (Schema, bool) {
	s, ok := schemas[op]
	return s, ok
}
