package warehouse

import (
	"context"

	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// ListFilter narrows and pages batch listings.
type ListFilter struct {
	ExplosiveType explosive.Type
	Status        BatchStatus
	// ExpiringWithinDays > 0 keeps only batches expiring inside the window.
	ExpiringWithinDays int
	Page               int
	PageSize           int
}

// Repository is the persistence boundary for central warehouse batches.
// Update applies an optimistic-concurrency check on the batch version and
// fails with a Conflict error when the row changed underneath the caller.
type Repository interface {
	Create(ctx context.Context, b *Batch) error
	GetByID(ctx context.Context, id string) (*Batch, error)
	GetByBatchID(ctx context.Context, batchID string) (*Batch, error)
	List(ctx context.Context, f ListFilter) ([]*Batch, int, error)
	Update(ctx context.Context, b *Batch) error
	SaveANFOProperties(ctx context.Context, p *explosive.ANFOProperties) error
	SaveEmulsionProperties(ctx context.Context, p *explosive.EmulsionProperties) error
}
