package supplier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL supplier repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateSupplier(ctx context.Context, s *Supplier) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, licence_number, contact_name, contact_phone, contact_email, country, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.Name, s.LicenceNumber, s.ContactName, s.ContactPhone, s.ContactEmail, s.Country, s.IsActive)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

const supplierColumns = `id, name, licence_number, contact_name, contact_phone, contact_email, country, is_active, created_at, updated_at`

func (r *postgresRepo) GetSupplierByID(ctx context.Context, id string) (*Supplier, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "invalid supplier id %q", id)
	}
	return r.getOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id=$1`, uid)
}

func (r *postgresRepo) GetSupplierByName(ctx context.Context, name string) (*Supplier, error) {
	return r.getOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE name=$1`, name)
}

func (r *postgresRepo) getOne(ctx context.Context, query string, arg interface{}) (*Supplier, error) {
	s := &Supplier{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&s.ID, &s.Name, &s.LicenceNumber, &s.ContactName, &s.ContactPhone, &s.ContactEmail,
		&s.Country, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "supplier not found")
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []*Supplier
	for rows.Next() {
		s := &Supplier{}
		if err := rows.Scan(&s.ID, &s.Name, &s.LicenceNumber, &s.ContactName, &s.ContactPhone,
			&s.ContactEmail, &s.Country, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}
