package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// Status is the operational state of a field store.
type Status string

const (
	StatusOperational        Status = "OPERATIONAL"
	StatusUnderMaintenance   Status = "UNDER_MAINTENANCE"
	StatusTemporarilyClosed  Status = "TEMPORARILY_CLOSED"
	StatusInspectionRequired Status = "INSPECTION_REQUIRED"
	StatusDecommissioned     Status = "DECOMMISSIONED"
)

// Store is a physical explosives storage site at a mining region.
type Store struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	RegionID         string     `json:"region_id"`
	ManagerUserID    *uuid.UUID `json:"manager_user_id,omitempty"`
	StorageCapacity  float64    `json:"storage_capacity"` // kg; 0 means uncapped
	CurrentOccupancy float64    `json:"current_occupancy"`
	Status           Status     `json:"status"`
	IsActive         bool       `json:"is_active"`
	Version          int64      `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasCapacityFor reports whether adding qty keeps the store inside its
// configured capacity. Capacity is a soft limit checked on receipt.
func (s *Store) HasCapacityFor(qty float64) bool {
	if s.StorageCapacity <= 0 {
		return true
	}
	return s.CurrentOccupancy+qty <= s.StorageCapacity
}

// Inventory is the stock of one explosive type held at a store.
// One row exists per (store, explosive type).
// Invariant: 0 ≤ ReservedQuantity ≤ Quantity.
type Inventory struct {
	ID                uuid.UUID      `json:"id"`
	StoreID           uuid.UUID      `json:"store_id"`
	ExplosiveType     explosive.Type `json:"explosive_type"`
	Quantity          float64        `json:"quantity"`
	ReservedQuantity  float64        `json:"reserved_quantity"`
	Unit              string         `json:"unit"`
	MinimumStockLevel *float64       `json:"minimum_stock_level,omitempty"`
	MaximumStockLevel *float64       `json:"maximum_stock_level,omitempty"`
	BatchNumber       string         `json:"batch_number,omitempty"`
	Supplier          string         `json:"supplier,omitempty"`
	ExpiryDate        *time.Time     `json:"expiry_date,omitempty"`
	LastRestockedAt   *time.Time     `json:"last_restocked_at,omitempty"`
	Version           int64          `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// AvailableQuantity is what remains after store-side reservations.
func (i *Inventory) AvailableQuantity() float64 {
	return i.Quantity - i.ReservedQuantity
}

// IsLowStock reports whether stock fell below the configured minimum.
func (i *Inventory) IsLowStock() bool {
	return i.MinimumStockLevel != nil && i.Quantity < *i.MinimumStockLevel
}

// IsOverStock reports whether stock exceeds the configured maximum.
func (i *Inventory) IsOverStock() bool {
	return i.MaximumStockLevel != nil && i.Quantity > *i.MaximumStockLevel
}

// IsExpiringSoon reports whether the last received batch expires within thresholdDays.
func (i *Inventory) IsExpiringSoon(thresholdDays int) bool {
	if i.ExpiryDate == nil {
		return false
	}
	until := time.Until(*i.ExpiryDate)
	return until > 0 && int(until.Hours()/24) <= thresholdDays
}

// Reserve holds qty for a pending store-level picking operation.
func (i *Inventory) Reserve(qty float64) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "reservation quantity must be greater than zero")
	}
	if qty > i.AvailableQuantity() {
		return apperr.New(apperr.KindInsufficientStock,
			"store has %.2f %s of %s available, requested %.2f", i.AvailableQuantity(), i.Unit, i.ExplosiveType, qty)
	}
	i.ReservedQuantity += qty
	return nil
}

// Release reverses a store-side reservation.
func (i *Inventory) Release(qty float64) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "release quantity must be greater than zero")
	}
	if qty > i.ReservedQuantity {
		return apperr.New(apperr.KindInvalidState,
			"store has only %.2f %s of %s reserved, cannot release %.2f", i.ReservedQuantity, i.Unit, i.ExplosiveType, qty)
	}
	i.ReservedQuantity -= qty
	return nil
}

// Receive books delivered material into the store and refreshes the restock
// metadata carried over from the source batch.
func (i *Inventory) Receive(qty float64, batchNumber, supplier string, expiryDate *time.Time) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "received quantity must be greater than zero")
	}
	i.Quantity += qty
	if batchNumber != "" {
		i.BatchNumber = batchNumber
	}
	if supplier != "" {
		i.Supplier = supplier
	}
	if expiryDate != nil {
		i.ExpiryDate = expiryDate
	}
	now := time.Now()
	i.LastRestockedAt = &now
	return nil
}

// TransactionType classifies a stock movement.
type TransactionType string

const (
	TxnStockIn    TransactionType = "STOCK_IN"
	TxnStockOut   TransactionType = "STOCK_OUT"
	TxnTransfer   TransactionType = "TRANSFER"
	TxnAdjustment TransactionType = "ADJUSTMENT"
)

// Transaction is an immutable audit record of a stock movement. Rows are
// append-only and never updated after creation.
type Transaction struct {
	ID                uuid.UUID       `json:"id"`
	StoreID           uuid.UUID       `json:"store_id"`
	InventoryID       uuid.UUID       `json:"inventory_id"`
	Type              TransactionType `json:"type"`
	Quantity          float64         `json:"quantity"` // signed: negative for outbound movements
	Unit              string          `json:"unit"`
	ReferenceNumber   string          `json:"reference_number,omitempty"` // e.g. transfer request number
	Notes             string          `json:"notes,omitempty"`
	ProcessedByUserID *uuid.UUID      `json:"processed_by_user_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
