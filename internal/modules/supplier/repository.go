package supplier

import "context"

// Repository is the persistence boundary for suppliers.
type Repository interface {
	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplierByID(ctx context.Context, id string) (*Supplier, error)
	GetSupplierByName(ctx context.Context, name string) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]*Supplier, error)
}
