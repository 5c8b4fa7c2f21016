package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/store"
	"github.com/mkandawire/explotrack-backend/internal/modules/warehouse"
)

// Service drives the transfer request workflow. Every transition checks its
// preconditions before touching anything, then persists the request together
// with the ledger rows it moved in one atomic repository call: the caller sees
// complete success or complete failure, never a half-applied transition.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*RequestDTO, error)
	Approve(ctx context.Context, id string, req ApproveRequest) (*RequestDTO, error)
	Reject(ctx context.Context, id string, req RejectRequest) (*RequestDTO, error)
	Dispatch(ctx context.Context, id string, req DispatchRequest) (*RequestDTO, error)
	ConfirmDelivery(ctx context.Context, id string) (*RequestDTO, error)
	Complete(ctx context.Context, id string, userID string) (*RequestDTO, error)
	Cancel(ctx context.Context, id string, reason string) error

	Get(ctx context.Context, id string) (*RequestDTO, error)
	GetByNumber(ctx context.Context, requestNumber string) (*RequestDTO, error)
	List(ctx context.Context, f ListFilter) ([]*RequestDTO, int, error)
}

// CreateRequest is the payload for raising a new transfer request.
// BatchID accepts either the batch UUID or the formatted batch number.
type CreateRequest struct {
	BatchID            string     `json:"batch_id"`
	DestinationStoreID string     `json:"destination_store_id"`
	Quantity           float64    `json:"quantity"`
	Unit               string     `json:"unit,omitempty"`
	RequiredByDate     *time.Time `json:"required_by_date,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	RequestedByUserID  string     `json:"requested_by_user_id"`
}

// ApproveRequest is the payload for approving a pending transfer. A nil
// ApprovedQuantity grants the full requested quantity.
type ApproveRequest struct {
	ApprovedQuantity *float64 `json:"approved_quantity,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	UserID           string   `json:"user_id"`
}

// RejectRequest is the payload for rejecting a transfer.
type RejectRequest struct {
	Reason string `json:"reason"`
	UserID string `json:"user_id"`
}

// DispatchRequest is the payload for dispatching an approved transfer.
type DispatchRequest struct {
	TruckNumber   string `json:"truck_number"`
	DriverName    string `json:"driver_name"`
	DriverContact string `json:"driver_contact,omitempty"`
	UserID        string `json:"user_id"`
}

type service struct {
	repo              Repository
	batches           warehouse.Repository
	stores            store.Repository
	log               *zap.Logger
	expiryWarningDays int
	urgentWindowHours int
}

// NewService creates a new transfer service.
func NewService(repo Repository, batches warehouse.Repository, stores store.Repository,
	log *zap.Logger, expiryWarningDays, urgentWindowHours int) Service {
	return &service{
		repo:              repo,
		batches:           batches,
		stores:            stores,
		log:               log,
		expiryWarningDays: expiryWarningDays,
		urgentWindowHours: urgentWindowHours,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*RequestDTO, error) {
	if req.Quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "requested quantity must be greater than zero")
	}
	requesterID, err := uuid.Parse(req.RequestedByUserID)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("invalid requested_by_user_id: %v", err), nil, nil)
	}

	st, err := s.stores.GetStoreByID(ctx, req.DestinationStoreID)
	if err != nil {
		return nil, err
	}
	if st.Status != store.StatusOperational {
		return nil, apperr.New(apperr.KindInvalidState,
			"destination store %s is not operational (status %s)", st.Name, st.Status)
	}

	batch, err := s.findBatch(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}

	check := warehouse.ValidateTransferQuantity(batch, req.Quantity, s.expiryWarningDays)

	if err := batch.Allocate(req.Quantity); err != nil {
		return nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = batch.Unit
	}
	request := &Request{
		ID:                 uuid.New(),
		RequestNumber:      generateRequestNumber(),
		BatchID:            batch.ID,
		DestinationStoreID: st.ID,
		RequestedQuantity:  req.Quantity,
		Unit:               unit,
		Status:             StatusPending,
		RequestDate:        time.Now(),
		RequiredByDate:     req.RequiredByDate,
		RequestedByUserID:  requesterID,
		Notes:              req.Notes,
	}

	if err := s.repo.Create(ctx, request, batch); err != nil {
		return nil, err
	}

	s.log.Info("transfer requested",
		zap.String("request", request.RequestNumber),
		zap.String("batch", batch.BatchID),
		zap.String("store", st.Name),
		zap.Float64("quantity", req.Quantity))

	dto := toDTO(request, s.urgentWindowHours)
	dto.Warnings = check.Warnings
	return dto, nil
}

func (s *service) Approve(ctx context.Context, id string, req ApproveRequest) (*RequestDTO, error) {
	approverID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("invalid user_id: %v", err), nil, nil)
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allocated := request.FinalQuantity()
	if err := request.Approve(req.ApprovedQuantity, approverID, req.Notes); err != nil {
		return nil, err
	}

	// A partial approval hands the unneeded remainder back to the batch.
	var batch *warehouse.Batch
	if delta := allocated - request.FinalQuantity(); delta > 0 {
		batch, err = s.batches.GetByID(ctx, request.BatchID.String())
		if err != nil {
			return nil, err
		}
		if err := batch.Deallocate(delta); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, request, batch); err != nil {
		return nil, err
	}

	s.log.Info("transfer approved",
		zap.String("request", request.RequestNumber),
		zap.Float64("final_quantity", request.FinalQuantity()))
	return toDTO(request, s.urgentWindowHours), nil
}

func (s *service) Reject(ctx context.Context, id string, req RejectRequest) (*RequestDTO, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("invalid user_id: %v", err), nil, nil)
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allocated := request.FinalQuantity()
	if err := request.Reject(req.Reason, userID); err != nil {
		return nil, err
	}

	batch, err := s.batches.GetByID(ctx, request.BatchID.String())
	if err != nil {
		return nil, err
	}
	if err := batch.Deallocate(allocated); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, request, batch); err != nil {
		return nil, err
	}

	s.log.Info("transfer rejected",
		zap.String("request", request.RequestNumber),
		zap.String("reason", req.Reason))
	return toDTO(request, s.urgentWindowHours), nil
}

func (s *service) Dispatch(ctx context.Context, id string, req DispatchRequest) (*RequestDTO, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("invalid user_id: %v", err), nil, nil)
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Dispatch(req.TruckNumber, req.DriverName, req.DriverContact, userID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, request, nil); err != nil {
		return nil, err
	}

	s.log.Info("transfer dispatched",
		zap.String("request", request.RequestNumber),
		zap.String("truck", req.TruckNumber),
		zap.String("driver", req.DriverName))
	return toDTO(request, s.urgentWindowHours), nil
}

func (s *service) ConfirmDelivery(ctx context.Context, id string) (*RequestDTO, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.ConfirmDelivery(); err != nil {
		return nil, err
	}

	batch, err := s.batches.GetByID(ctx, request.BatchID.String())
	if err != nil {
		return nil, err
	}
	st, err := s.stores.GetStoreByID(ctx, request.DestinationStoreID.String())
	if err != nil {
		return nil, err
	}

	qty := request.FinalQuantity()
	if !st.HasCapacityFor(qty) {
		return nil, apperr.New(apperr.KindInvalidQuantity,
			"store %s cannot hold another %.2f %s (capacity %.2f, occupancy %.2f)",
			st.Name, qty, request.Unit, st.StorageCapacity, st.CurrentOccupancy)
	}

	inv, err := s.stores.GetInventoryByType(ctx, st.ID.String(), batch.ExplosiveType)
	invIsNew := false
	if apperr.Is(err, apperr.KindNotFound) {
		invIsNew = true
		inv = &store.Inventory{
			ID:            uuid.New(),
			StoreID:       st.ID,
			ExplosiveType: batch.ExplosiveType,
			Unit:          request.Unit,
		}
	} else if err != nil {
		return nil, err
	}

	expiry := batch.ExpiryDate
	if err := inv.Receive(qty, batch.BatchID, batch.Supplier, &expiry); err != nil {
		return nil, err
	}
	st.CurrentOccupancy += qty

	txn := &store.Transaction{
		ID:              uuid.New(),
		StoreID:         st.ID,
		InventoryID:     inv.ID,
		Type:            store.TxnTransfer,
		Quantity:        qty,
		Unit:            inv.Unit,
		ReferenceNumber: request.RequestNumber,
		Notes:           fmt.Sprintf("delivery of batch %s", batch.BatchID),
	}

	if err := s.repo.RecordDelivery(ctx, request, inv, invIsNew, st, txn); err != nil {
		return nil, err
	}

	s.log.Info("transfer delivered",
		zap.String("request", request.RequestNumber),
		zap.String("store", st.Name),
		zap.Float64("quantity", qty))
	return toDTO(request, s.urgentWindowHours), nil
}

func (s *service) Complete(ctx context.Context, id string, userID string) (*RequestDTO, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("invalid user_id: %v", err), nil, nil)
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Complete(uid); err != nil {
		return nil, err
	}

	batch, err := s.batches.GetByID(ctx, request.BatchID.String())
	if err != nil {
		return nil, err
	}
	if err := batch.Consume(request.FinalQuantity()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, request, batch); err != nil {
		return nil, err
	}

	s.log.Info("transfer completed",
		zap.String("request", request.RequestNumber),
		zap.String("batch", batch.BatchID),
		zap.Float64("quantity", request.FinalQuantity()))
	return toDTO(request, s.urgentWindowHours), nil
}

func (s *service) Cancel(ctx context.Context, id string, reason string) error {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allocated := request.FinalQuantity()
	if err := request.Cancel(reason); err != nil {
		return err
	}

	// Material never left the warehouse before delivery, so the whole
	// remaining allocation goes back.
	batch, err := s.batches.GetByID(ctx, request.BatchID.String())
	if err != nil {
		return err
	}
	if err := batch.Deallocate(allocated); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, request, batch); err != nil {
		return err
	}

	s.log.Info("transfer cancelled", zap.String("request", request.RequestNumber))
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*RequestDTO, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(request, s.urgentWindowHours), nil
}

func (s *service) GetByNumber(ctx context.Context, requestNumber string) (*RequestDTO, error) {
	request, err := s.repo.GetByNumber(ctx, requestNumber)
	if err != nil {
		return nil, err
	}
	return toDTO(request, s.urgentWindowHours), nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*RequestDTO, int, error) {
	requests, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*RequestDTO, 0, len(requests))
	for _, r := range requests {
		dtos = append(dtos, toDTO(r, s.urgentWindowHours))
	}
	return dtos, total, nil
}

// findBatch resolves either a batch UUID or a formatted batch number.
func (s *service) findBatch(ctx context.Context, id string) (*warehouse.Batch, error) {
	if _, err := uuid.Parse(id); err == nil {
		return s.batches.GetByID(ctx, id)
	}
	return s.batches.GetByBatchID(ctx, id)
}
