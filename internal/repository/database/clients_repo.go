package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"collectra/internal/config/connections/postgres"
	"collectra/internal/models"
	"collectra/internal/ports"
)

type ClientRepo struct {
	pg *postgres.Postgres
}

func NewClientRepo(pg *postgres.Postgres) *ClientRepo {
	return &ClientRepo{pg: pg}
}

const clientColumns = `
	id, client_code, client_name, client_type,
	contact_person, contact_email, contact_phone, address,
	registration_number, tax_id, is_active,
	created_at, updated_at, created_by`

func (r *ClientRepo) Create(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.ClientCode = strings.ToUpper(strings.TrimSpace(c.ClientCode))
	_, err := r.pg.Pool.Exec(ctx, `
		INSERT INTO clients (
			id, client_code, client_name, client_type,
			contact_person, contact_email, contact_phone, address,
			registration_number, tax_id, is_active,
			created_at, updated_at, created_by
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11,
			NOW(), NOW(), $12
		)`,
		c.ID, c.ClientCode, c.ClientName, string(c.ClientType),
		nullIfEmpty(c.ContactPerson), nullIfEmpty(c.ContactEmail), nullIfEmpty(c.ContactPhone), nullIfEmpty(c.Address),
		nullIfEmpty(c.RegistrationNumber), nullIfEmpty(c.TaxID), c.IsActive,
		c.CreatedBy,
	)
	return err
}

func (r *ClientRepo) Get(ctx context.Context, id string) (*models.Client, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *ClientRepo) GetByCode(ctx context.Context, code string) (*models.Client, error) {
	return r.findOne(ctx, `client_code = UPPER($1)`, code)
}

func (r *ClientRepo) findOne(ctx context.Context, where string, args ...any) (*models.Client, error) {
	row := r.pg.Pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE `+where, args...)
	c, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClientRepo) List(ctx context.Context, activeOnly bool, search string, limit, offset int) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var conds []string
	var args []any
	if activeOnly {
		conds = append(conds, `is_active`)
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf(`(client_code ILIKE $%d OR client_name ILIKE $%d)`, len(args), len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY client_name LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.pg.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ClientRepo) Update(ctx context.Context, c *models.Client) error {
	ct, err := r.pg.Pool.Exec(ctx, `
		UPDATE clients SET
			client_name = $2, client_type = $3,
			contact_person = $4, contact_email = $5, contact_phone = $6, address = $7,
			registration_number = $8, tax_id = $9, is_active = $10,
			updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.ClientName, string(c.ClientType),
		nullIfEmpty(c.ContactPerson), nullIfEmpty(c.ContactEmail), nullIfEmpty(c.ContactPhone), nullIfEmpty(c.Address),
		nullIfEmpty(c.RegistrationNumber), nullIfEmpty(c.TaxID), c.IsActive,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pg.Pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	var ctype string
	var person, email, phone, addr, reg, tax *string
	err := row.Scan(
		&c.ID, &c.ClientCode, &c.ClientName, &ctype,
		&person, &email, &phone, &addr,
		&reg, &tax, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt, &c.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	c.ClientType = models.ClientType(ctype)
	c.ContactPerson = deref(person)
	c.ContactEmail = deref(email)
	c.ContactPhone = deref(phone)
	c.Address = deref(addr)
	c.RegistrationNumber = deref(reg)
	c.TaxID = deref(tax)
	return &c, nil
}
