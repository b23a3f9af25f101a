package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"collectra/internal/models"
	"collectra/internal/ports"
)

// importCustomers runs the upsert pass for non-payment operation types. Rows
// are committed in fixed-size groups; a row that cannot be coerced or stored
// is skipped and audited, it never aborts the batch.
func (s *Service) importCustomers(ctx context.Context, t *Table, b *models.ImportBatch, invalid map[int]bool, userID *string) (imported, created, updated int, err error) {
	schema, _ := SchemaFor(b.OperationType)

	type pending struct {
		row      Row
		customer models.Customer
	}
	var chunk []pending

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		rows := make([]models.Customer, len(chunk))
		for i, p := range chunk {
			rows[i] = p.customer
		}
		c, u, rowErrs, err := s.Customers.UpsertBatch(ctx, rows)
		if err != nil {
			return fmt.Errorf("customer upsert commit: %w", err)
		}
		created += c
		updated += u
		imported += c + u
		for i, p := range chunk {
			if rowErrs != nil && rowErrs[i] != nil {
				log.Printf("[IMP][customers][ERR] row=%d contract=%q: %v", p.row.Number, p.customer.ContractNumber, rowErrs[i])
				s.auditRow(ctx, b.ID, p.row, "customers", "", "failed", rowErrs[i].Error())
				continue
			}
			s.auditRow(ctx, b.ID, p.row, "customers", p.customer.ContractNumber, "done", "")
		}
		chunk = chunk[:0]
		return nil
	}

	for _, row := range t.Rows {
		if invalid[row.Number] {
			continue
		}
		customer, err := buildCustomer(row, schema, b.ClientID, b.ID, userID)
		if err != nil {
			log.Printf("[IMP][customers][ERR] row=%d: %v", row.Number, err)
			s.auditRow(ctx, b.ID, row, "customers", "", "failed", err.Error())
			continue
		}
		chunk = append(chunk, pending{row: row, customer: customer})
		if len(chunk) >= s.CommitSize {
			if err := flush(); err != nil {
				return imported, created, updated, err
			}
		}
	}
	if err := flush(); err != nil {
		return imported, created, updated, err
	}

	log.Printf("[IMP][customers][DONE] batch=%s imported=%d created=%d updated=%d", b.ID, imported, created, updated)
	return imported, created, updated, nil
}

// importPayments stores every payment row and tries to reconcile each one
// against the customer ledger: contract number first, then account number,
// then NIC. Unmatched rows are kept with NO_MATCH for review.
func (s *Service) importPayments(ctx context.Context, t *Table, b *models.ImportBatch, invalid map[int]bool) (imported int, err error) {
	cache := make(map[string]*models.Customer)

	type pending struct {
		row     Row
		payment models.Payment
	}
	var chunk []pending

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		rows := make([]models.Payment, len(chunk))
		for i, p := range chunk {
			rows[i] = p.payment
		}
		rowErrs, err := s.Payments.InsertBatch(ctx, rows)
		if err != nil {
			return fmt.Errorf("payment insert commit: %w", err)
		}
		for i, p := range chunk {
			if rowErrs != nil && rowErrs[i] != nil {
				log.Printf("[IMP][payments][ERR] row=%d contract=%q: %v", p.row.Number, p.payment.ContractNumber, rowErrs[i])
				s.auditRow(ctx, b.ID, p.row, "payments", "", "failed", rowErrs[i].Error())
				continue
			}
			imported++
			s.auditRow(ctx, b.ID, p.row, "payments", p.payment.ContractNumber, "done", "")
		}
		chunk = chunk[:0]
		return nil
	}

	for _, row := range t.Rows {
		if invalid[row.Number] {
			continue
		}
		p := buildPayment(row, b.ID)

		customer, matchType := s.matchPayment(ctx, b.ClientID, p, cache)
		if customer != nil {
			p.MatchedCustomerID = &customer.ID
			p.MatchType = matchType
			p.IsMatched = true
			if err := s.applyPayment(ctx, customer, p); err != nil {
				log.Printf("[IMP][payments][WARN] row=%d apply to customer %s: %v", row.Number, customer.ID, err)
			}
		}

		chunk = append(chunk, pending{row: row, payment: p})
		if len(chunk) >= s.CommitSize {
			if err := flush(); err != nil {
				return imported, err
			}
		}
	}
	if err := flush(); err != nil {
		return imported, err
	}

	log.Printf("[IMP][payments][DONE] batch=%s imported=%d", b.ID, imported)
	return imported, nil
}

// matchPayment resolves a payment to a customer, first match wins. The cache
// keeps one lookup per distinct key within a batch.
func (s *Service) matchPayment(ctx context.Context, clientID string, p models.Payment, cache map[string]*models.Customer) (*models.Customer, string) {
	lookup := func(kind, key string, find func() (*models.Customer, error)) (*models.Customer, bool) {
		if key == "" {
			return nil, false
		}
		ck := kind + ":" + key
		if c, ok := cache[ck]; ok {
			return c, c != nil
		}
		c, err := find()
		if err != nil && err != ports.ErrNotFound {
			log.Printf("[IMP][payments][WARN] %s lookup %q: %v", kind, key, err)
		}
		if err != nil {
			c = nil
		}
		cache[ck] = c
		return c, c != nil
	}

	if c, ok := lookup("contract", p.ContractNumber, func() (*models.Customer, error) {
		return s.Customers.FindByClientContract(ctx, clientID, p.ContractNumber)
	}); ok {
		return c, models.MatchContractNumber
	}
	if c, ok := lookup("account", p.AccountNumber, func() (*models.Customer, error) {
		return s.Customers.FindByAccountNumber(ctx, clientID, p.AccountNumber)
	}); ok {
		return c, models.MatchAccountNumber
	}
	if c, ok := lookup("nic", p.CustomerNIC, func() (*models.Customer, error) {
		return s.Customers.FindByNIC(ctx, clientID, p.CustomerNIC)
	}); ok {
		return c, models.MatchNIC
	}
	return nil, models.MatchNone
}

// applyPayment updates the matched customer's payment state and recomputes
// days in arrears as the gap between payment date and due date, floored at
// zero. Partial payments and multiple due cycles are not modelled.
func (s *Service) applyPayment(ctx context.Context, customer *models.Customer, p models.Payment) error {
	if p.PaymentDate == nil {
		return nil
	}
	days := 0
	if customer.DaysInArrears != nil {
		days = *customer.DaysInArrears
	}
	if customer.DueDate != nil {
		days = daysBetween(*customer.DueDate, *p.PaymentDate)
		if days < 0 {
			days = 0
		}
	}
	customer.DaysInArrears = &days
	return s.Customers.ApplyPayment(ctx, customer.ID, *p.PaymentDate, p.PaymentAmount, days)
}

// daysBetween counts whole calendar days from a to b. Both dates are
// re-anchored in UTC so a DST transition between them cannot shave hours off
// the difference.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func (s *Service) auditRow(ctx context.Context, batchID string, row Row, entityType, entityID, status, errMsg string) {
	if s.Audit == nil {
		return
	}
	item := ports.RowAuditItem{
		BatchID:    batchID,
		RowNumber:  row.Number,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    mustJSON(row.Values),
		Status:     status,
		Error:      errMsg,
	}
	if err := s.Audit.Insert(ctx, item); err != nil {
		log.Printf("[IMP][audit][WARN] row=%d: %v", row.Number, err)
	}
}

func mustJSON(m map[string]string) string {
	b, err := json.Marshal(m)
	if err != nil {
		log.Printf("[IMP][WARN] json marshal payload failed: %v; fallback {}", err)
		return "{}"
	}
	return string(b)
}
