package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// Service defines store business logic: site management, stock levels,
// store-side reservations and manual adjustments with an audit trail.
type Service interface {
	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context, regionID string, status Status) ([]*Store, error)
	UpdateStoreStatus(ctx context.Context, id string, status Status) (*Store, error)

	GetInventory(ctx context.Context, storeID string) ([]*Inventory, error)
	SetStockLevels(ctx context.Context, storeID string, t explosive.Type, min, max *float64) (*Inventory, error)
	ReserveStock(ctx context.Context, storeID string, t explosive.Type, qty float64) (*Inventory, error)
	ReleaseStock(ctx context.Context, storeID string, t explosive.Type, qty float64) (*Inventory, error)
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*Inventory, error)

	ListTransactions(ctx context.Context, storeID string, limit int) ([]*Transaction, error)
	StockAlerts(ctx context.Context, storeID string) ([]*Alert, error)
}

// CreateStoreRequest holds data for commissioning a new store.
type CreateStoreRequest struct {
	Name            string  `json:"name"`
	RegionID        string  `json:"region_id"`
	ManagerUserID   string  `json:"manager_user_id,omitempty"`
	StorageCapacity float64 `json:"storage_capacity"`
}

// AdjustStockRequest is a manual stock correction (count reconciliation,
// damaged material write-off). Delta is signed.
type AdjustStockRequest struct {
	StoreID       string         `json:"store_id"`
	ExplosiveType explosive.Type `json:"explosive_type"`
	Delta         float64        `json:"delta"`
	Reason        string         `json:"reason"`
	UserID        string         `json:"user_id,omitempty"`
}

// Alert flags an inventory row that needs attention.
type Alert struct {
	Inventory    *Inventory `json:"inventory"`
	LowStock     bool       `json:"low_stock"`
	OverStock    bool       `json:"over_stock"`
	ExpiringSoon bool       `json:"expiring_soon"`
}

type service struct {
	repo              Repository
	log               *zap.Logger
	expiryWarningDays int
}

// NewService creates a new store service.
func NewService(repo Repository, log *zap.Logger, expiryWarningDays int) Service {
	return &service{repo: repo, log: log, expiryWarningDays: expiryWarningDays}
}

func (s *service) CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error) {
	if req.Name == "" {
		return nil, apperr.Validation("store name is required", nil, nil)
	}
	if req.StorageCapacity < 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "storage capacity cannot be negative")
	}

	st := &Store{
		ID:              uuid.New(),
		Name:            req.Name,
		RegionID:        req.RegionID,
		StorageCapacity: req.StorageCapacity,
		Status:          StatusOperational,
		IsActive:        true,
	}
	if req.ManagerUserID != "" {
		mid, err := uuid.Parse(req.ManagerUserID)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("invalid manager_user_id: %v", err), nil, nil)
		}
		st.ManagerUserID = &mid
	}

	if err := s.repo.CreateStore(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to persist store: %w", err)
	}
	s.log.Info("store commissioned", zap.String("store", st.Name), zap.String("region", st.RegionID))
	return st, nil
}

func (s *service) GetStore(ctx context.Context, id string) (*Store, error) {
	return s.repo.GetStoreByID(ctx, id)
}

func (s *service) ListStores(ctx context.Context, regionID string, status Status) ([]*Store, error) {
	return s.repo.ListStores(ctx, regionID, status)
}

func (s *service) UpdateStoreStatus(ctx context.Context, id string, status Status) (*Store, error) {
	switch status {
	case StatusOperational, StatusUnderMaintenance, StatusTemporarilyClosed,
		StatusInspectionRequired, StatusDecommissioned:
	default:
		return nil, apperr.New(apperr.KindInvalidState, "unknown store status %q", status)
	}

	st, err := s.repo.GetStoreByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == StatusDecommissioned && st.CurrentOccupancy > 0 {
		return nil, apperr.New(apperr.KindInvalidState,
			"store %s still holds %.2f kg of stock and cannot be decommissioned", st.Name, st.CurrentOccupancy)
	}
	st.Status = status
	if err := s.repo.UpdateStore(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info("store status changed", zap.String("store", st.Name), zap.String("status", string(status)))
	return st, nil
}

func (s *service) GetInventory(ctx context.Context, storeID string) ([]*Inventory, error) {
	if _, err := s.repo.GetStoreByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.repo.GetInventory(ctx, storeID)
}

func (s *service) SetStockLevels(ctx context.Context, storeID string, t explosive.Type, min, max *float64) (*Inventory, error) {
	if min != nil && *min < 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "minimum stock level cannot be negative")
	}
	if min != nil && max != nil && *min > *max {
		return nil, apperr.New(apperr.KindInvalidQuantity, "minimum stock level cannot exceed the maximum")
	}
	inv, err := s.repo.GetInventoryByType(ctx, storeID, t)
	if err != nil {
		return nil, err
	}
	inv.MinimumStockLevel = min
	inv.MaximumStockLevel = max
	if err := s.repo.UpdateInventory(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) ReserveStock(ctx context.Context, storeID string, t explosive.Type, qty float64) (*Inventory, error) {
	inv, err := s.repo.GetInventoryByType(ctx, storeID, t)
	if err != nil {
		return nil, err
	}
	if err := inv.Reserve(qty); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateInventory(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) ReleaseStock(ctx context.Context, storeID string, t explosive.Type, qty float64) (*Inventory, error) {
	inv, err := s.repo.GetInventoryByType(ctx, storeID, t)
	if err != nil {
		return nil, err
	}
	if err := inv.Release(qty); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateInventory(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) AdjustStock(ctx context.Context, req AdjustStockRequest) (*Inventory, error) {
	if req.Delta == 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "adjustment delta cannot be zero")
	}
	if req.Reason == "" {
		return nil, apperr.New(apperr.KindMissingReason, "an adjustment reason is required for the audit trail")
	}

	st, err := s.repo.GetStoreByID(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.GetInventoryByType(ctx, req.StoreID, req.ExplosiveType)
	if err != nil {
		return nil, err
	}

	newQty := inv.Quantity + req.Delta
	if newQty < 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity,
			"adjustment would leave %.2f %s of %s", newQty, inv.Unit, inv.ExplosiveType)
	}
	if newQty < inv.ReservedQuantity {
		return nil, apperr.New(apperr.KindInvalidQuantity,
			"adjustment would drop stock below the %.2f %s currently reserved", inv.ReservedQuantity, inv.Unit)
	}
	if req.Delta > 0 && !st.HasCapacityFor(req.Delta) {
		return nil, apperr.New(apperr.KindInvalidQuantity,
			"store %s cannot hold another %.2f %s (capacity %.2f, occupancy %.2f)",
			st.Name, req.Delta, inv.Unit, st.StorageCapacity, st.CurrentOccupancy)
	}

	inv.Quantity = newQty
	st.CurrentOccupancy += req.Delta
	if st.CurrentOccupancy < 0 {
		st.CurrentOccupancy = 0
	}

	txn := &Transaction{
		ID:          uuid.New(),
		StoreID:     st.ID,
		InventoryID: inv.ID,
		Type:        TxnAdjustment,
		Quantity:    req.Delta,
		Unit:        inv.Unit,
		Notes:       req.Reason,
	}
	if req.UserID != "" {
		uid, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("invalid user_id: %v", err), nil, nil)
		}
		txn.ProcessedByUserID = &uid
	}

	if err := s.repo.ApplyAdjustment(ctx, inv, st, txn); err != nil {
		return nil, err
	}
	s.log.Info("stock adjusted",
		zap.String("store", st.Name),
		zap.String("type", string(req.ExplosiveType)),
		zap.Float64("delta", req.Delta))
	return inv, nil
}

func (s *service) ListTransactions(ctx context.Context, storeID string, limit int) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, storeID, limit)
}

func (s *service) StockAlerts(ctx context.Context, storeID string) ([]*Alert, error) {
	items, err := s.GetInventory(ctx, storeID)
	if err != nil {
		return nil, err
	}
	var alerts []*Alert
	for _, inv := range items {
		a := &Alert{
			Inventory:    inv,
			LowStock:     inv.IsLowStock(),
			OverStock:    inv.IsOverStock(),
			ExpiringSoon: inv.IsExpiringSoon(s.expiryWarningDays),
		}
		if a.LowStock || a.OverStock || a.ExpiringSoon {
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}
