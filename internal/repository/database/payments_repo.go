package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"collectra/internal/config/connections/postgres"
	"collectra/internal/models"
)

type PaymentRepo struct {
	pg *postgres.Postgres
}

func NewPaymentRepo(pg *postgres.Postgres) *PaymentRepo {
	return &PaymentRepo{pg: pg}
}

// InsertBatch queues the whole group through one pgx batch; per-statement
// failures come back in the aligned error slice.
func (r *PaymentRepo) InsertBatch(ctx context.Context, rows []models.Payment) ([]error, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, p := range rows {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(`
			INSERT INTO payments (
				id, import_batch_id, payment_date, contract_number, account_number,
				customer_nic, receipt_number, payment_type, payment_amount,
				current_total_arrears, bank_reference_number, payment_method,
				branch_name, payment_remarks, matched_customer_id, match_type,
				is_matched, created_at
			) VALUES (
				$1, $2, $3, $4, $5,
				$6, $7, $8, $9::numeric,
				$10::numeric, $11, $12,
				$13, $14, $15, $16,
				$17, NOW()
			)`,
			id, p.ImportBatchID, p.PaymentDate, p.ContractNumber, nullIfEmpty(p.AccountNumber),
			nullIfEmpty(p.CustomerNIC), nullIfEmpty(p.ReceiptNumber), nullIfEmpty(p.PaymentType), nullIfEmpty(p.PaymentAmount),
			p.CurrentTotalArrears, nullIfEmpty(p.BankReferenceNumber), nullIfEmpty(p.PaymentMethod),
			nullIfEmpty(p.BranchName), nullIfEmpty(p.PaymentRemarks), p.MatchedCustomerID, p.MatchType,
			p.IsMatched,
		)
	}

	br := r.pg.Pool.SendBatch(ctx, batch)
	defer br.Close()

	rowErrs := make([]error, len(rows))
	for i := range rows {
		if _, err := br.Exec(); err != nil {
			rowErrs[i] = err
		}
	}
	return rowErrs, nil
}

func (r *PaymentRepo) ListByBatch(ctx context.Context, batchID string) ([]models.Payment, error) {
	rows, err := r.pg.Pool.Query(ctx, `
		SELECT id, import_batch_id, payment_date, contract_number, account_number,
		       customer_nic, receipt_number, payment_type, payment_amount::text,
		       current_total_arrears::text, bank_reference_number, payment_method,
		       branch_name, payment_remarks, matched_customer_id, match_type,
		       is_matched, created_at
		FROM payments
		WHERE import_batch_id = $1
		ORDER BY created_at`,
		batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		var account, nic, receipt, ptype, amount *string
		var bankRef, method, branch, remarks *string
		if err := rows.Scan(
			&p.ID, &p.ImportBatchID, &p.PaymentDate, &p.ContractNumber, &account,
			&nic, &receipt, &ptype, &amount,
			&p.CurrentTotalArrears, &bankRef, &method,
			&branch, &remarks, &p.MatchedCustomerID, &p.MatchType,
			&p.IsMatched, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.AccountNumber = deref(account)
		p.CustomerNIC = deref(nic)
		p.ReceiptNumber = deref(receipt)
		p.PaymentType = deref(ptype)
		p.PaymentAmount = deref(amount)
		p.BankReferenceNumber = deref(bankRef)
		p.PaymentMethod = deref(method)
		p.BranchName = deref(branch)
		p.PaymentRemarks = deref(remarks)
		out = append(out, p)
	}
	return out, rows.Err()
}
