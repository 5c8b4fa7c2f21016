package transfer

import (
	"context"

	"github.com/mkandawire/explotrack-backend/internal/modules/store"
	"github.com/mkandawire/explotrack-backend/internal/modules/warehouse"
)

// ListFilter narrows and pages transfer request listings.
type ListFilter struct {
	Status             Status
	DestinationStoreID string
	RequestedByUserID  string
	// OverdueOnly keeps non-terminal requests whose required-by date passed.
	OverdueOnly bool
	// UrgentWithinHours > 0 keeps non-terminal requests due inside the window.
	UrgentWithinHours int
	Page              int
	PageSize          int
	// SortAscending orders by request date ascending; default is newest first.
	SortAscending bool
}

// Repository is the persistence boundary for transfer requests. Each state
// transition persists the request together with every ledger row it touched in
// one database transaction, all under version compare-and-swap, so concurrent
// conflicting transitions have exactly one winner.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Request, error)
	GetByNumber(ctx context.Context, requestNumber string) (*Request, error)
	List(ctx context.Context, f ListFilter) ([]*Request, int, error)

	// Create inserts the request and applies the batch allocation atomically.
	Create(ctx context.Context, req *Request, batch *warehouse.Batch) error

	// Update persists a transition; batch is nil when the ledger was untouched.
	Update(ctx context.Context, req *Request, batch *warehouse.Batch) error

	// RecordDelivery persists a delivery confirmation: the request, the
	// destination inventory row (inserted when invIsNew), the store occupancy
	// and the audit transaction move together.
	RecordDelivery(ctx context.Context, req *Request, inv *store.Inventory, invIsNew bool,
		st *store.Store, txn *store.Transaction) error
}
