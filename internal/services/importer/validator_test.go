package importer

import (
	"strings"
	"testing"

	"collectra/internal/models"
)

func tableOf(cols []string, rows ...map[string]string) *Table {
	t := &Table{Columns: cols}
	for i, vals := range rows {
		t.Rows = append(t.Rows, Row{Number: i + 2, Values: vals})
	}
	return t
}

func findingsOfType(findings []models.ImportError, errType string) []models.ImportError {
	var out []models.ImportError
	for _, f := range findings {
		if f.ErrorType == errType {
			out = append(out, f)
		}
	}
	return out
}

func TestValidNIC(t *testing.T) {
	cases := []struct {
		nic  string
		want bool
	}{
		{"123456789V", true},
		{"123456789v", true},
		{"123456789X", true},
		{"123456789012", true},
		{"12345", false},
		{"123456789A", false},
		{"1234567890123", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidNIC(c.nic); got != c.want {
			t.Errorf("ValidNIC(%q) = %v, want %v", c.nic, got, c.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"0771234567", true},
		{"077-123 4567", true},
		{"011234567", true},
		{"771234567", false},
		{"07712345", false},
		{"07712345678", false},
	}
	for _, c := range cases {
		if got := ValidPhone(c.phone); got != c.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", c.phone, got, c.want)
		}
	}
}

func TestValidateMissingColumns(t *testing.T) {
	schema, _ := SchemaFor(models.OperationLoan)
	// loan files require the facility columns on top of the identity ones;
	// leave them all out of the header
	tab := tableOf(
		[]string{"client_name", "nic", "contract_number"},
		map[string]string{"client_name": "John", "nic": "123456789V", "contract_number": "LN-1"},
	)

	_, findings := NewValidator().Validate(tab, "b1", schema, RuleSet{})

	mc := findingsOfType(findings, models.ErrTypeMissingColumns)
	if len(mc) != 1 {
		t.Fatalf("expected one MISSING_COLUMNS finding, got %d", len(mc))
	}
	if mc[0].RowNumber != 0 || !mc[0].IsCritical {
		t.Fatalf("missing-columns finding should be batch-level and critical: %+v", mc[0])
	}
	for _, col := range []string{"loan_number", "account_number", "granted_amount", "capital_balance", "interest_over_due_balance"} {
		if !strings.Contains(mc[0].ErrorMessage, col) {
			t.Errorf("missing-columns message should name %q: %s", col, mc[0].ErrorMessage)
		}
	}
	if strings.Contains(mc[0].ErrorMessage, "loan_type") {
		t.Errorf("loan_type is optional, message should not name it: %s", mc[0].ErrorMessage)
	}
}

// ruleTestSchema trims the loan schema down to the columns the generic rule
// tests below exercise, so their fixtures stay readable.
var ruleTestSchema = Schema{
	Operation: models.OperationLoan,
	Fields: []Field{
		{Name: "client_name", Kind: KindText, Required: true},
		{Name: "nic", Kind: KindNIC, Required: true},
		{Name: "contract_number", Kind: KindText, Required: true},
		{Name: "loan_type", Kind: KindText},
		{Name: "client_code", Kind: KindText},
	},
}

func TestValidateRequiredFieldMissing(t *testing.T) {
	schema, _ := SchemaFor(models.OperationCreditCard)
	tab := tableOf(
		[]string{"client_name", "nic", "contract_number", "card_number"},
		map[string]string{"client_name": "John", "nic": "123456789V", "contract_number": "CC-1", "card_number": "4111"},
		map[string]string{"client_name": "Jane", "nic": "123456789012", "card_number": "4222"}, // no contract
	)

	valid, findings := NewValidator().Validate(tab, "b1", schema, RuleSet{})
	if valid != 1 {
		t.Fatalf("valid = %d, want 1", valid)
	}

	rf := findingsOfType(findings, models.ErrTypeRequiredFieldMissing)
	if len(rf) != 1 || rf[0].RowNumber != 3 || rf[0].ColumnName != "contract_number" {
		t.Fatalf("unexpected required-field findings: %+v", rf)
	}
}

func TestValidateDuplicateContractFlagsAllOccurrences(t *testing.T) {
	tab := tableOf(
		[]string{"client_name", "nic", "contract_number", "loan_type"},
		map[string]string{"client_name": "A", "nic": "123456789V", "contract_number": "LN-1", "loan_type": "PERSONAL"},
		map[string]string{"client_name": "B", "nic": "123456789012", "contract_number": "LN-2", "loan_type": "PERSONAL"},
		map[string]string{"client_name": "C", "nic": "934567890V", "contract_number": "LN-1", "loan_type": "HOUSING"},
	)

	valid, findings := NewValidator().Validate(tab, "b1", ruleTestSchema, RuleSet{})
	if valid != 1 {
		t.Fatalf("valid = %d, want 1 (both duplicate rows are invalid)", valid)
	}

	dup := findingsOfType(findings, models.ErrTypeDuplicateContract)
	if len(dup) != 2 {
		t.Fatalf("expected both occurrences flagged, got %d findings", len(dup))
	}
	if dup[0].RowNumber != 2 || dup[1].RowNumber != 4 {
		t.Fatalf("duplicate rows: got %d,%d want 2,4", dup[0].RowNumber, dup[1].RowNumber)
	}
}

func TestValidateNICAdvisoryByDefault(t *testing.T) {
	tab := tableOf(
		[]string{"client_name", "nic", "contract_number", "loan_type"},
		map[string]string{"client_name": "A", "nic": "badnic", "contract_number": "LN-1", "loan_type": "PERSONAL"},
	)

	valid, findings := NewValidator().Validate(tab, "b1", ruleTestSchema, RuleSet{})
	nicF := findingsOfType(findings, models.ErrTypeInvalidNICFormat)
	if len(nicF) != 1 || nicF[0].IsCritical {
		t.Fatalf("expected one advisory NIC finding, got %+v", nicF)
	}
	if valid != 1 {
		t.Fatalf("advisory finding must not invalidate the row, valid = %d", valid)
	}

	// promoted to critical
	valid, findings = NewValidator().Validate(tab, "b1", ruleTestSchema, RuleSet{NICCritical: true})
	nicF = findingsOfType(findings, models.ErrTypeInvalidNICFormat)
	if len(nicF) != 1 || !nicF[0].IsCritical {
		t.Fatalf("expected critical NIC finding, got %+v", nicF)
	}
	if valid != 0 {
		t.Fatalf("critical finding must invalidate the row, valid = %d", valid)
	}
}

func TestValidateClientCodeMismatch(t *testing.T) {
	tab := tableOf(
		[]string{"client_name", "nic", "contract_number", "loan_type", "client_code"},
		map[string]string{"client_name": "A", "nic": "123456789V", "contract_number": "LN-1", "loan_type": "PERSONAL", "client_code": "hnb"},
		map[string]string{"client_name": "B", "nic": "123456789012", "contract_number": "LN-2", "loan_type": "PERSONAL", "client_code": "BOC"},
	)

	valid, findings := NewValidator().Validate(tab, "b1", ruleTestSchema, RuleSet{ExpectedClientCode: "HNB"})
	if valid != 1 {
		t.Fatalf("valid = %d, want 1 (code compare is case-insensitive)", valid)
	}

	cm := findingsOfType(findings, models.ErrTypeClientCodeMismatch)
	if len(cm) != 1 || cm[0].RowNumber != 3 || !cm[0].IsCritical {
		t.Fatalf("unexpected client-code findings: %+v", cm)
	}
}

func TestValidateAmountsAndDates(t *testing.T) {
	schema, _ := SchemaFor(models.OperationPayment)
	tab := tableOf(
		[]string{"payment_date", "contract_number", "payment_amount"},
		map[string]string{"payment_date": "2026-01-15", "contract_number": "LN-1", "payment_amount": "1,250.00"},
		map[string]string{"payment_date": "2026-01-15", "contract_number": "LN-2", "payment_amount": "abc"},
		map[string]string{"payment_date": "2026-01-15", "contract_number": "LN-3", "payment_amount": "-50"},
		map[string]string{"payment_date": "someday", "contract_number": "LN-4", "payment_amount": "10"},
	)

	valid, findings := NewValidator().Validate(tab, "b1", schema, RuleSet{})
	if valid != 1 {
		t.Fatalf("valid = %d, want 1", valid)
	}

	if f := findingsOfType(findings, models.ErrTypeInvalidAmountFormat); len(f) != 1 || f[0].RowNumber != 3 {
		t.Fatalf("amount-format findings: %+v", f)
	}
	if f := findingsOfType(findings, models.ErrTypeNegativeAmount); len(f) != 1 || f[0].RowNumber != 4 {
		t.Fatalf("negative-amount findings: %+v", f)
	}
	if f := findingsOfType(findings, models.ErrTypeInvalidDateFormat); len(f) != 1 || f[0].RowNumber != 5 {
		t.Fatalf("date-format findings: %+v", f)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1250", "1250", false},
		{"1,250.75", "1250.75", false},
		{" 99.90 ", "99.9", false},
		{"abc", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", c.in, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", c.in, got.String(), c.want)
		}
	}
}
