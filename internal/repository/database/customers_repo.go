package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"collectra/internal/config/connections/postgres"
	"collectra/internal/models"
	"collectra/internal/ports"
)

type CustomerRepo struct {
	pg *postgres.Postgres
}

func NewCustomerRepo(pg *postgres.Postgres) *CustomerRepo {
	return &CustomerRepo{pg: pg}
}

const customerColumns = `
	id, client_id, contract_number, client_name, nic, home_address,
	customer_contact_number_1, customer_contact_number_2, customer_contact_number_3,
	account_number, card_number,
	granted_amount::text, facility_granted_date, facility_end_date,
	monthly_rental_payment_with_vat::text, last_payment_date, last_payment_amount::text, due_date,
	designation, work_place_name, work_place_address,
	work_place_contact_number_1, work_place_contact_number_2,
	guarantor_1_name, guarantor_1_address, guarantor_1_nic,
	guarantor_1_contact_number_1, guarantor_1_contact_number_2,
	guarantor_2_name, guarantor_2_address, guarantor_2_nic,
	guarantor_2_contact_number_1, guarantor_2_contact_number_2,
	zone, region, branch_name, district_name, postal_town,
	days_in_arrears, rentals_in_arrears, details, payment_assumption,
	import_batch_id, created_at, updated_at, created_by`

// upsertCustomerSQL keys on (client_id, contract_number) and only overwrites
// a column when the incoming row carries a value; absent fields never null
// out existing data. RETURNING xmax = 0 tells insert from update apart.
const upsertCustomerSQL = `
	INSERT INTO customers (
		id, client_id, contract_number, client_name, nic, home_address,
		customer_contact_number_1, customer_contact_number_2, customer_contact_number_3,
		account_number, card_number,
		granted_amount, facility_granted_date, facility_end_date,
		monthly_rental_payment_with_vat, last_payment_date, last_payment_amount, due_date,
		designation, work_place_name, work_place_address,
		work_place_contact_number_1, work_place_contact_number_2,
		guarantor_1_name, guarantor_1_address, guarantor_1_nic,
		guarantor_1_contact_number_1, guarantor_1_contact_number_2,
		guarantor_2_name, guarantor_2_address, guarantor_2_nic,
		guarantor_2_contact_number_1, guarantor_2_contact_number_2,
		zone, region, branch_name, district_name, postal_town,
		days_in_arrears, rentals_in_arrears, details, payment_assumption,
		import_batch_id, created_at, updated_at, created_by
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9,
		$10, $11,
		$12::numeric, $13, $14,
		$15::numeric, $16, $17::numeric, $18,
		$19, $20, $21,
		$22, $23,
		$24, $25, $26,
		$27, $28,
		$29, $30, $31,
		$32, $33,
		$34, $35, $36, $37, $38,
		$39, $40, $41, $42,
		$43, NOW(), NOW(), $44
	)
	ON CONFLICT (client_id, contract_number) DO UPDATE SET
		client_name = COALESCE(NULLIF(EXCLUDED.client_name, ''), customers.client_name),
		nic = COALESCE(NULLIF(EXCLUDED.nic, ''), customers.nic),
		home_address = COALESCE(NULLIF(EXCLUDED.home_address, ''), customers.home_address),
		customer_contact_number_1 = COALESCE(NULLIF(EXCLUDED.customer_contact_number_1, ''), customers.customer_contact_number_1),
		customer_contact_number_2 = COALESCE(NULLIF(EXCLUDED.customer_contact_number_2, ''), customers.customer_contact_number_2),
		customer_contact_number_3 = COALESCE(NULLIF(EXCLUDED.customer_contact_number_3, ''), customers.customer_contact_number_3),
		account_number = COALESCE(NULLIF(EXCLUDED.account_number, ''), customers.account_number),
		card_number = COALESCE(NULLIF(EXCLUDED.card_number, ''), customers.card_number),
		granted_amount = COALESCE(EXCLUDED.granted_amount, customers.granted_amount),
		facility_granted_date = COALESCE(EXCLUDED.facility_granted_date, customers.facility_granted_date),
		facility_end_date = COALESCE(EXCLUDED.facility_end_date, customers.facility_end_date),
		monthly_rental_payment_with_vat = COALESCE(EXCLUDED.monthly_rental_payment_with_vat, customers.monthly_rental_payment_with_vat),
		last_payment_date = COALESCE(EXCLUDED.last_payment_date, customers.last_payment_date),
		last_payment_amount = COALESCE(EXCLUDED.last_payment_amount, customers.last_payment_amount),
		due_date = COALESCE(EXCLUDED.due_date, customers.due_date),
		designation = COALESCE(NULLIF(EXCLUDED.designation, ''), customers.designation),
		work_place_name = COALESCE(NULLIF(EXCLUDED.work_place_name, ''), customers.work_place_name),
		work_place_address = COALESCE(NULLIF(EXCLUDED.work_place_address, ''), customers.work_place_address),
		work_place_contact_number_1 = COALESCE(NULLIF(EXCLUDED.work_place_contact_number_1, ''), customers.work_place_contact_number_1),
		work_place_contact_number_2 = COALESCE(NULLIF(EXCLUDED.work_place_contact_number_2, ''), customers.work_place_contact_number_2),
		guarantor_1_name = COALESCE(NULLIF(EXCLUDED.guarantor_1_name, ''), customers.guarantor_1_name),
		guarantor_1_address = COALESCE(NULLIF(EXCLUDED.guarantor_1_address, ''), customers.guarantor_1_address),
		guarantor_1_nic = COALESCE(NULLIF(EXCLUDED.guarantor_1_nic, ''), customers.guarantor_1_nic),
		guarantor_1_contact_number_1 = COALESCE(NULLIF(EXCLUDED.guarantor_1_contact_number_1, ''), customers.guarantor_1_contact_number_1),
		guarantor_1_contact_number_2 = COALESCE(NULLIF(EXCLUDED.guarantor_1_contact_number_2, ''), customers.guarantor_1_contact_number_2),
		guarantor_2_name = COALESCE(NULLIF(EXCLUDED.guarantor_2_name, ''), customers.guarantor_2_name),
		guarantor_2_address = COALESCE(NULLIF(EXCLUDED.guarantor_2_address, ''), customers.guarantor_2_address),
		guarantor_2_nic = COALESCE(NULLIF(EXCLUDED.guarantor_2_nic, ''), customers.guarantor_2_nic),
		guarantor_2_contact_number_1 = COALESCE(NULLIF(EXCLUDED.guarantor_2_contact_number_1, ''), customers.guarantor_2_contact_number_1),
		guarantor_2_contact_number_2 = COALESCE(NULLIF(EXCLUDED.guarantor_2_contact_number_2, ''), customers.guarantor_2_contact_number_2),
		zone = COALESCE(NULLIF(EXCLUDED.zone, ''), customers.zone),
		region = COALESCE(NULLIF(EXCLUDED.region, ''), customers.region),
		branch_name = COALESCE(NULLIF(EXCLUDED.branch_name, ''), customers.branch_name),
		district_name = COALESCE(NULLIF(EXCLUDED.district_name, ''), customers.district_name),
		postal_town = COALESCE(NULLIF(EXCLUDED.postal_town, ''), customers.postal_town),
		days_in_arrears = COALESCE(EXCLUDED.days_in_arrears, customers.days_in_arrears),
		rentals_in_arrears = COALESCE(EXCLUDED.rentals_in_arrears, customers.rentals_in_arrears),
		details = COALESCE(NULLIF(EXCLUDED.details, ''), customers.details),
		payment_assumption = COALESCE(NULLIF(EXCLUDED.payment_assumption, ''), customers.payment_assumption),
		import_batch_id = EXCLUDED.import_batch_id,
		updated_at = NOW()
	RETURNING (xmax = 0) AS inserted`

// UpsertBatch commits the slice as one transaction; each row runs under a
// savepoint so a bad row is rolled back alone and reported in rowErrs while
// the rest of the group still commits.
func (r *CustomerRepo) UpsertBatch(ctx context.Context, rows []models.Customer) (created, updated int, rowErrs []error, err error) {
	if len(rows) == 0 {
		return 0, 0, nil, nil
	}

	tx, err := r.pg.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rowErrs = make([]error, len(rows))
	for i, c := range rows {
		if _, err := tx.Exec(ctx, "SAVEPOINT row_sp"); err != nil {
			return created, updated, rowErrs, fmt.Errorf("savepoint: %w", err)
		}

		var inserted bool
		scanErr := tx.QueryRow(ctx, upsertCustomerSQL, upsertArgs(c)...).Scan(&inserted)
		if scanErr != nil {
			rowErrs[i] = scanErr
			if _, err := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT row_sp"); err != nil {
				return created, updated, rowErrs, fmt.Errorf("rollback savepoint: %w", err)
			}
			continue
		}
		if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT row_sp"); err != nil {
			return created, updated, rowErrs, fmt.Errorf("release savepoint: %w", err)
		}
		if inserted {
			created++
		} else {
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, rowErrs, fmt.Errorf("commit upsert tx: %w", err)
	}
	return created, updated, rowErrs, nil
}

func upsertArgs(c models.Customer) []any {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	return []any{
		id, c.ClientID, c.ContractNumber, c.ClientName, c.NIC, nullIfEmpty(c.HomeAddress),
		nullIfEmpty(c.CustomerContactNumber1), nullIfEmpty(c.CustomerContactNumber2), nullIfEmpty(c.CustomerContactNumber3),
		nullIfEmpty(c.AccountNumber), nullIfEmpty(c.CardNumber),
		c.GrantedAmount, c.FacilityGrantedDate, c.FacilityEndDate,
		c.MonthlyRentalPaymentWithVAT, c.LastPaymentDate, c.LastPaymentAmount, c.DueDate,
		nullIfEmpty(c.Designation), nullIfEmpty(c.WorkPlaceName), nullIfEmpty(c.WorkPlaceAddress),
		nullIfEmpty(c.WorkPlaceContactNumber1), nullIfEmpty(c.WorkPlaceContactNumber2),
		nullIfEmpty(c.Guarantor1Name), nullIfEmpty(c.Guarantor1Address), nullIfEmpty(c.Guarantor1NIC),
		nullIfEmpty(c.Guarantor1ContactNumber1), nullIfEmpty(c.Guarantor1ContactNumber2),
		nullIfEmpty(c.Guarantor2Name), nullIfEmpty(c.Guarantor2Address), nullIfEmpty(c.Guarantor2NIC),
		nullIfEmpty(c.Guarantor2ContactNumber1), nullIfEmpty(c.Guarantor2ContactNumber2),
		nullIfEmpty(c.Zone), nullIfEmpty(c.Region), nullIfEmpty(c.BranchName), nullIfEmpty(c.DistrictName), nullIfEmpty(c.PostalTown),
		c.DaysInArrears, c.RentalsInArrears, nullIfEmpty(c.Details), nullIfEmpty(c.PaymentAssumption),
		c.ImportBatchID, c.CreatedBy,
	}
}

func (r *CustomerRepo) FindByClientContract(ctx context.Context, clientID, contractNumber string) (*models.Customer, error) {
	return r.findOne(ctx, `client_id = $1 AND contract_number = $2`, clientID, contractNumber)
}

func (r *CustomerRepo) FindByAccountNumber(ctx context.Context, clientID, accountNumber string) (*models.Customer, error) {
	return r.findOne(ctx, `client_id = $1 AND account_number = $2`, clientID, accountNumber)
}

func (r *CustomerRepo) FindByNIC(ctx context.Context, clientID, nic string) (*models.Customer, error) {
	return r.findOne(ctx, `client_id = $1 AND UPPER(nic) = UPPER($2)`, clientID, nic)
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (*models.Customer, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *CustomerRepo) findOne(ctx context.Context, where string, args ...any) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + where + ` LIMIT 1`
	row := r.pg.Pool.QueryRow(ctx, query, args...)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CustomerRepo) List(ctx context.Context, clientID string, limit, offset int) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	args := []any{}
	if clientID != "" {
		query += ` WHERE client_id = $1`
		args = append(args, clientID)
	}
	query += fmt.Sprintf(` ORDER BY client_name LIMIT %d OFFSET %d`, limit, offset)

	pgRows, err := r.pg.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer pgRows.Close()

	out := make([]models.Customer, 0)
	for pgRows.Next() {
		c, err := scanCustomer(pgRows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, pgRows.Err()
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pg.Pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	var n int64
	err := r.pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE client_id = $1`, clientID).Scan(&n)
	return n, err
}

func (r *CustomerRepo) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	ct, err := r.pg.Pool.Exec(ctx, `DELETE FROM customers WHERE client_id = $1`, clientID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *CustomerRepo) ApplyPayment(ctx context.Context, customerID string, paymentDate time.Time, amount string, daysInArrears int) error {
	ct, err := r.pg.Pool.Exec(ctx, `
		UPDATE customers SET
			last_payment_date = $2,
			last_payment_amount = $3::numeric,
			days_in_arrears = $4,
			updated_at = NOW()
		WHERE id = $1`,
		customerID, paymentDate, nullIfEmpty(amount), daysInArrears,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	var (
		homeAddress, contact1, contact2, contact3       *string
		accountNumber, cardNumber                       *string
		designation, workName, workAddr, workC1, workC2 *string
		g1Name, g1Addr, g1NIC, g1C1, g1C2               *string
		g2Name, g2Addr, g2NIC, g2C1, g2C2               *string
		zone, region, branch, district, town            *string
		details, assumption                             *string
	)
	err := row.Scan(
		&c.ID, &c.ClientID, &c.ContractNumber, &c.ClientName, &c.NIC, &homeAddress,
		&contact1, &contact2, &contact3,
		&accountNumber, &cardNumber,
		&c.GrantedAmount, &c.FacilityGrantedDate, &c.FacilityEndDate,
		&c.MonthlyRentalPaymentWithVAT, &c.LastPaymentDate, &c.LastPaymentAmount, &c.DueDate,
		&designation, &workName, &workAddr,
		&workC1, &workC2,
		&g1Name, &g1Addr, &g1NIC,
		&g1C1, &g1C2,
		&g2Name, &g2Addr, &g2NIC,
		&g2C1, &g2C2,
		&zone, &region, &branch, &district, &town,
		&c.DaysInArrears, &c.RentalsInArrears, &details, &assumption,
		&c.ImportBatchID, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	c.HomeAddress = deref(homeAddress)
	c.CustomerContactNumber1 = deref(contact1)
	c.CustomerContactNumber2 = deref(contact2)
	c.CustomerContactNumber3 = deref(contact3)
	c.AccountNumber = deref(accountNumber)
	c.CardNumber = deref(cardNumber)
	c.Designation = deref(designation)
	c.WorkPlaceName = deref(workName)
	c.WorkPlaceAddress = deref(workAddr)
	c.WorkPlaceContactNumber1 = deref(workC1)
	c.WorkPlaceContactNumber2 = deref(workC2)
	c.Guarantor1Name = deref(g1Name)
	c.Guarantor1Address = deref(g1Addr)
	c.Guarantor1NIC = deref(g1NIC)
	c.Guarantor1ContactNumber1 = deref(g1C1)
	c.Guarantor1ContactNumber2 = deref(g1C2)
	c.Guarantor2Name = deref(g2Name)
	c.Guarantor2Address = deref(g2Addr)
	c.Guarantor2NIC = deref(g2NIC)
	c.Guarantor2ContactNumber1 = deref(g2C1)
	c.Guarantor2ContactNumber2 = deref(g2C2)
	c.Zone = deref(zone)
	c.Region = deref(region)
	c.BranchName = deref(branch)
	c.DistrictName = deref(district)
	c.PostalTown = deref(town)
	c.Details = deref(details)
	c.PaymentAssumption = deref(assumption)
	return &c, nil
}
