package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"collectra/internal/models"
)

// RuleSet tunes validation per batch. The NIC rule is advisory by default and
// promoted to critical when the client-code cross-check is in effect.
type RuleSet struct {
	// ExpectedClientCode enables the per-row client-code cross-check when the
	// file carries a client_code column.
	ExpectedClientCode string
	// NICCritical promotes INVALID_NIC_FORMAT findings to critical.
	NICCritical bool
}

var (
	nicOldFormat = regexp.MustCompile(`^\d{9}[VvXx]$`)
	nicNewFormat = regexp.MustCompile(`^\d{12}$`)
	nonDigits    = regexp.MustCompile(`[^\d]`)
)

// ValidNIC accepts the old 9-digit+V/X and the new 12-digit identity formats.
func ValidNIC(nic string) bool {
	return nicOldFormat.MatchString(nic) || nicNewFormat.MatchString(nic)
}

// ValidPhone accepts 9-10 digit numbers with a leading zero, ignoring
// separators.
func ValidPhone(phone string) bool {
	digits := nonDigits.ReplaceAllString(phone, "")
	return len(digits) >= 9 && len(digits) <= 10 && strings.HasPrefix(digits, "0")
}

// Validator applies the per-operation-type rule set to a parsed table.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Validate returns the count of rows with zero critical findings plus the
// full finding list, tagged to the batch. Findings come out in rule order
// within each row, rows in file order; the batch-level missing-columns
// finding leads.
func (v *Validator) Validate(t *Table, batchID string, schema Schema, rs RuleSet) (valid int, findings []models.ImportError) {
	var missing []string
	for _, f := range schema.Required() {
		if !t.HasColumn(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		findings = append(findings, models.ImportError{
			BatchID:      batchID,
			RowNumber:    0,
			ErrorType:    models.ErrTypeMissingColumns,
			ErrorMessage: fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")),
			IsCritical:   true,
		})
	}

	dupes := duplicateContracts(t)
	crossCheck := rs.ExpectedClientCode != "" && t.HasColumn("client_code")

	for _, row := range t.Rows {
		critical := false

		add := func(e models.ImportError) {
			e.BatchID = batchID
			e.RowNumber = row.Number
			findings = append(findings, e)
			if e.IsCritical {
				critical = true
			}
		}

		// Required fields: only columns actually present in the header; the
		// batch-level finding already covers the absent ones.
		for _, f := range schema.Required() {
			if !t.HasColumn(f.Name) {
				continue
			}
			if _, ok := row.Get(f.Name); !ok {
				add(models.ImportError{
					ColumnName:   f.Name,
					ErrorType:    models.ErrTypeRequiredFieldMissing,
					ErrorMessage: fmt.Sprintf("Required field %q is missing or empty", f.Name),
					IsCritical:   true,
				})
			}
		}

		for _, f := range schema.Fields {
			val, ok := row.Get(f.Name)
			if !ok {
				continue
			}
			switch f.Kind {
			case KindNIC:
				if !ValidNIC(val) {
					add(models.ImportError{
						ColumnName:     f.Name,
						ErrorType:      models.ErrTypeInvalidNICFormat,
						ErrorMessage:   "Invalid NIC format",
						OriginalValue:  val,
						SuggestedValue: "Use format: 123456789V or 123456789012",
						IsCritical:     rs.NICCritical,
					})
				}
			case KindPhone:
				if !ValidPhone(val) {
					add(models.ImportError{
						ColumnName:     f.Name,
						ErrorType:      models.ErrTypeInvalidPhoneFormat,
						ErrorMessage:   "Invalid phone number format",
						OriginalValue:  val,
						SuggestedValue: "Use format: 0771234567",
						IsCritical:     false,
					})
				}
			}
		}

		if crossCheck {
			if code, ok := row.Get("client_code"); ok && !strings.EqualFold(code, rs.ExpectedClientCode) {
				add(models.ImportError{
					ColumnName:    "client_code",
					ErrorType:     models.ErrTypeClientCodeMismatch,
					ErrorMessage:  fmt.Sprintf("Row client code %q does not match batch client %q", code, rs.ExpectedClientCode),
					OriginalValue: code,
					IsCritical:    true,
				})
			}
		}

		if contract, ok := row.Get("contract_number"); ok && dupes[contract] {
			add(models.ImportError{
				ColumnName:    "contract_number",
				ErrorType:     models.ErrTypeDuplicateContract,
				ErrorMessage:  fmt.Sprintf("Contract number %q appears more than once in this file", contract),
				OriginalValue: contract,
				IsCritical:    true,
			})
		}

		for _, f := range schema.Fields {
			val, ok := row.Get(f.Name)
			if !ok || f.Kind != KindAmount {
				continue
			}
			amt, err := ParseAmount(val)
			if err != nil {
				add(models.ImportError{
					ColumnName:    f.Name,
					ErrorType:     models.ErrTypeInvalidAmountFormat,
					ErrorMessage:  "Invalid amount format",
					OriginalValue: val,
					IsCritical:    true,
				})
			} else if amt.IsNegative() {
				add(models.ImportError{
					ColumnName:    f.Name,
					ErrorType:     models.ErrTypeNegativeAmount,
					ErrorMessage:  "Amount cannot be negative",
					OriginalValue: val,
					IsCritical:    true,
				})
			}
		}

		for _, f := range schema.Fields {
			val, ok := row.Get(f.Name)
			if !ok || f.Kind != KindDate {
				continue
			}
			if parseDate(val) == nil {
				add(models.ImportError{
					ColumnName:     f.Name,
					ErrorType:      models.ErrTypeInvalidDateFormat,
					ErrorMessage:   "Invalid date format",
					OriginalValue:  val,
					SuggestedValue: "Use format: YYYY-MM-DD",
					IsCritical:     true,
				})
			}
		}

		if !critical {
			valid++
		}
	}

	return valid, findings
}

// duplicateContracts flags every contract number occurring more than once, so
// all occurrences get a finding, not just the repeats.
func duplicateContracts(t *Table) map[string]bool {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if c, ok := row.Get("contract_number"); ok {
			counts[c]++
		}
	}
	dupes := make(map[string]bool)
	for c, n := range counts {
		if n > 1 {
			dupes[c] = true
		}
	}
	return dupes
}

// ParseAmount parses a monetary cell into a decimal, tolerating thousands
// separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}
