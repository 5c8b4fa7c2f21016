package supplier

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
)

// Service defines supplier registry business logic.
type Service interface {
	RegisterSupplier(ctx context.Context, req RegisterSupplierRequest) (*Supplier, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]*Supplier, error)
}

// RegisterSupplierRequest holds data for registering a supplier.
type RegisterSupplierRequest struct {
	Name          string `json:"name"`
	LicenceNumber string `json:"licence_number"`
	ContactName   string `json:"contact_name,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	ContactEmail  string `json:"contact_email,omitempty"`
	Country       string `json:"country,omitempty"`
}

type service struct {
	repo Repository
}

// NewService creates a new supplier service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterSupplier(ctx context.Context, req RegisterSupplierRequest) (*Supplier, error) {
	if req.Name == "" {
		return nil, apperr.Validation("supplier name is required", nil, nil)
	}
	if req.LicenceNumber == "" {
		return nil, apperr.Validation("supplier licence number is required", nil, nil)
	}
	if existing, err := s.repo.GetSupplierByName(ctx, req.Name); err == nil && existing != nil {
		return nil, apperr.New(apperr.KindConflict, "supplier %s is already registered", req.Name)
	}

	country := req.Country
	if country == "" {
		country = "Zambia"
	}
	sup := &Supplier{
		ID:            uuid.New(),
		Name:          req.Name,
		LicenceNumber: req.LicenceNumber,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		Country:       country,
		IsActive:      true,
	}
	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *service) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	return s.repo.GetSupplierByID(ctx, id)
}

func (s *service) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}
