package warehouse

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// BatchStatus is the lifecycle state of a central warehouse batch.
type BatchStatus string

const (
	StatusAvailable   BatchStatus = "AVAILABLE"
	StatusAllocated   BatchStatus = "ALLOCATED" // fully allocated, nothing left to reserve
	StatusExpired     BatchStatus = "EXPIRED"
	StatusQuarantined BatchStatus = "QUARANTINED"
	StatusDepleted    BatchStatus = "DEPLETED"
)

// Batch is one manufactured lot of explosive material held in the central
// warehouse. Quantity bookkeeping invariant: 0 ≤ AllocatedQuantity ≤ Quantity.
type Batch struct {
	ID                uuid.UUID                    `json:"id"`
	BatchID           string                       `json:"batch_id"` // e.g. ANFO-2024-001
	ExplosiveType     explosive.Type               `json:"explosive_type"`
	Quantity          float64                      `json:"quantity"`
	AllocatedQuantity float64                      `json:"allocated_quantity"`
	Unit              string                       `json:"unit"`
	ManufacturingDate time.Time                    `json:"manufacturing_date"`
	ExpiryDate        time.Time                    `json:"expiry_date"`
	Supplier          string                       `json:"supplier"`
	StorageLocation   string                       `json:"storage_location,omitempty"`
	Status            BatchStatus                  `json:"status"`
	IsActive          bool                         `json:"is_active"`
	Version           int64                        `json:"-"`
	ANFO              *explosive.ANFOProperties    `json:"anfo_properties,omitempty"`
	Emulsion          *explosive.EmulsionProperties `json:"emulsion_properties,omitempty"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
}

// AvailableQuantity is what remains after provisional allocations.
func (b *Batch) AvailableQuantity() float64 {
	return b.Quantity - b.AllocatedQuantity
}

// IsExpired reports whether the batch is past its expiry date.
func (b *Batch) IsExpired() bool {
	return time.Now().After(b.ExpiryDate)
}

// DaysUntilExpiry returns the whole days left before expiry (negative if past).
func (b *Batch) DaysUntilExpiry() int {
	return int(time.Until(b.ExpiryDate).Hours() / 24)
}

// IsExpiringSoon reports whether the batch expires within thresholdDays.
func (b *Batch) IsExpiringSoon(thresholdDays int) bool {
	return !b.IsExpired() && b.DaysUntilExpiry() <= thresholdDays
}

// Allocate provisionally reserves qty against the batch for a transfer.
func (b *Batch) Allocate(qty float64) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "allocation quantity must be greater than zero")
	}
	if b.Status != StatusAvailable {
		return apperr.New(apperr.KindBatchUnavailable, "batch %s is not available (status %s)", b.BatchID, b.Status)
	}
	if b.IsExpired() {
		return apperr.New(apperr.KindBatchUnavailable, "batch %s expired on %s", b.BatchID, b.ExpiryDate.Format("2006-01-02"))
	}
	if qty > b.AvailableQuantity() {
		return apperr.New(apperr.KindInsufficientStock,
			"batch %s has %.2f %s available, requested %.2f", b.BatchID, b.AvailableQuantity(), b.Unit, qty)
	}
	b.AllocatedQuantity += qty
	b.refreshStatus()
	return nil
}

// Deallocate reverses part of an earlier allocation (rejection or cancellation).
func (b *Batch) Deallocate(qty float64) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "deallocation quantity must be greater than zero")
	}
	if qty > b.AllocatedQuantity {
		return apperr.New(apperr.KindInvalidState,
			"batch %s has only %.2f %s allocated, cannot deallocate %.2f", b.BatchID, b.AllocatedQuantity, b.Unit, qty)
	}
	b.AllocatedQuantity -= qty
	b.refreshStatus()
	return nil
}

// Consume finalizes a completed transfer: the material physically left the
// warehouse, so both the total and the allocation shrink together.
func (b *Batch) Consume(qty float64) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "consumption quantity must be greater than zero")
	}
	if qty > b.AllocatedQuantity {
		return apperr.New(apperr.KindInvalidState,
			"batch %s has only %.2f %s allocated, cannot consume %.2f", b.BatchID, b.AllocatedQuantity, b.Unit, qty)
	}
	b.Quantity -= qty
	b.AllocatedQuantity -= qty
	b.refreshStatus()
	return nil
}

// MarkExpired flips the batch to Expired. Expiry is an explicit operation,
// never a clock-driven side effect.
func (b *Batch) MarkExpired() error {
	if !b.IsExpired() {
		return apperr.New(apperr.KindInvalidState, "batch %s has not reached its expiry date", b.BatchID)
	}
	if b.Status == StatusDepleted {
		return apperr.New(apperr.KindInvalidState, "batch %s is depleted", b.BatchID)
	}
	b.Status = StatusExpired
	return nil
}

// Quarantine places the batch on hold pending a quality investigation,
// blocking further allocation.
func (b *Batch) Quarantine() error {
	if b.Status == StatusDepleted || b.Status == StatusExpired {
		return apperr.New(apperr.KindInvalidState, "batch %s cannot be quarantined (status %s)", b.BatchID, b.Status)
	}
	b.Status = StatusQuarantined
	return nil
}

// ReleaseQuarantine lifts the hold and restores the quantity-derived status.
func (b *Batch) ReleaseQuarantine() error {
	if b.Status != StatusQuarantined {
		return apperr.New(apperr.KindInvalidState, "batch %s is not quarantined (status %s)", b.BatchID, b.Status)
	}
	if b.IsExpired() {
		b.Status = StatusExpired
		return nil
	}
	b.Status = StatusAvailable
	b.refreshStatus()
	return nil
}

// refreshStatus keeps the quantity-derived statuses consistent after ledger
// mutations. Expired and Quarantined are sticky and never overwritten here.
func (b *Batch) refreshStatus() {
	switch b.Status {
	case StatusAvailable, StatusAllocated, StatusDepleted:
		if b.Quantity <= 0 {
			b.Status = StatusDepleted
		} else if b.AvailableQuantity() <= 0 {
			b.Status = StatusAllocated
		} else {
			b.Status = StatusAvailable
		}
	}
}

// ValidateTransferQuantity checks whether requestedQty can be drawn from the
// batch. Hard failures go to Errors; an expiring batch or a request that takes
// 90% or more of what is left only warn.
func ValidateTransferQuantity(b *Batch, requestedQty float64, expiryWarningDays int) explosive.ValidationResult {
	result := explosive.ValidationResult{IsValid: true}

	if b.Status != StatusAvailable {
		result.IsValid = false
		result.Errors = append(result.Errors, "batch "+b.BatchID+" is not available (status "+string(b.Status)+")")
	}
	if b.IsExpired() {
		result.IsValid = false
		result.Errors = append(result.Errors, "batch "+b.BatchID+" is expired")
	}
	if requestedQty > b.AvailableQuantity() {
		result.IsValid = false
		result.Errors = append(result.Errors, "requested quantity exceeds available quantity")
	}

	if result.IsValid {
		if b.IsExpiringSoon(expiryWarningDays) {
			result.Warnings = append(result.Warnings, "batch "+b.BatchID+" expires soon; transfer and use it promptly")
		}
		if avail := b.AvailableQuantity(); avail > 0 && requestedQty >= 0.9*avail {
			result.Warnings = append(result.Warnings, "request consumes 90% or more of the batch's available quantity")
		}
	}

	return result
}
