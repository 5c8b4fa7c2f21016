package store

import (
	"context"

	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// Repository is the persistence boundary for stores, their inventory rows and
// the append-only transaction log. Update methods apply an optimistic
// concurrency check on the row version.
type Repository interface {
	CreateStore(ctx context.Context, st *Store) error
	GetStoreByID(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context, regionID string, status Status) ([]*Store, error)
	UpdateStore(ctx context.Context, st *Store) error

	CreateInventory(ctx context.Context, inv *Inventory) error
	GetInventory(ctx context.Context, storeID string) ([]*Inventory, error)
	GetInventoryByType(ctx context.Context, storeID string, t explosive.Type) (*Inventory, error)
	UpdateInventory(ctx context.Context, inv *Inventory) error

	CreateTransaction(ctx context.Context, txn *Transaction) error
	ListTransactions(ctx context.Context, storeID string, limit int) ([]*Transaction, error)

	// ApplyAdjustment persists a manual stock adjustment atomically: the
	// inventory row, the store occupancy and the audit record move together.
	ApplyAdjustment(ctx context.Context, inv *Inventory, st *Store, txn *Transaction) error
}
