package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// Service defines central warehouse business logic: batch intake, technical
// property management and explicit status transitions. The quantity ledger
// itself (Allocate/Deallocate/Consume) is driven by the transfer module.
type Service interface {
	CreateBatch(ctx context.Context, req CreateBatchRequest) (*Batch, error)
	GetBatch(ctx context.Context, id string) (*Batch, error)
	GetBatchByNumber(ctx context.Context, batchID string) (*Batch, error)
	ListBatches(ctx context.Context, f ListFilter) ([]*Batch, int, error)

	UpdateANFOProperties(ctx context.Context, id string, p explosive.ANFOProperties) (*Batch, error)
	UpdateEmulsionProperties(ctx context.Context, id string, p explosive.EmulsionProperties) (*Batch, error)
	SetQualityStatus(ctx context.Context, id string, status explosive.QualityStatus) (*Batch, error)

	QuarantineBatch(ctx context.Context, id string) (*Batch, error)
	ReleaseQuarantine(ctx context.Context, id string) (*Batch, error)
	MarkExpired(ctx context.Context, id string) (*Batch, error)
	DeactivateBatch(ctx context.Context, id string) error
}

// CreateBatchRequest is the payload for receiving a new batch into the warehouse.
type CreateBatchRequest struct {
	BatchID           string                        `json:"batch_id"`
	ExplosiveType     explosive.Type                `json:"explosive_type"`
	Quantity          float64                       `json:"quantity"`
	Unit              string                        `json:"unit"`
	ManufacturingDate time.Time                     `json:"manufacturing_date"`
	ExpiryDate        time.Time                     `json:"expiry_date"`
	Supplier          string                        `json:"supplier"`
	StorageLocation   string                        `json:"storage_location,omitempty"`
	ANFO              *explosive.ANFOProperties     `json:"anfo_properties,omitempty"`
	Emulsion          *explosive.EmulsionProperties `json:"emulsion_properties,omitempty"`
}

type service struct {
	repo Repository
	log  *zap.Logger
}

// NewService creates a new warehouse service.
func NewService(repo Repository, log *zap.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) CreateBatch(ctx context.Context, req CreateBatchRequest) (*Batch, error) {
	if req.Quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "quantity must be greater than zero")
	}
	if req.ExplosiveType != explosive.TypeANFO && req.ExplosiveType != explosive.TypeEmulsion {
		return nil, apperr.Validation(fmt.Sprintf("unknown explosive type %q", req.ExplosiveType), nil, nil)
	}
	if err := explosive.ValidateBatchID(req.BatchID, req.ExplosiveType); err != nil {
		return nil, apperr.Validation(err.Error(), nil, nil)
	}
	if !req.ExpiryDate.After(req.ManufacturingDate) {
		return nil, apperr.Validation("expiry date must be after the manufacturing date", nil, nil)
	}
	if req.Supplier == "" {
		return nil, apperr.Validation("supplier is required", nil, nil)
	}

	if existing, err := s.repo.GetByBatchID(ctx, req.BatchID); err == nil && existing != nil {
		return nil, apperr.New(apperr.KindConflict, "batch %s already exists", req.BatchID)
	}

	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}

	b := &Batch{
		ID:                uuid.New(),
		BatchID:           req.BatchID,
		ExplosiveType:     req.ExplosiveType,
		Quantity:          req.Quantity,
		AllocatedQuantity: 0,
		Unit:              unit,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
		Supplier:          req.Supplier,
		StorageLocation:   req.StorageLocation,
		Status:            StatusAvailable,
		IsActive:          true,
	}

	switch req.ExplosiveType {
	case explosive.TypeANFO:
		if req.ANFO != nil {
			result := explosive.ValidateANFOProperties(*req.ANFO)
			if !result.IsValid {
				return nil, apperr.Validation("ANFO technical properties failed validation", result.Errors, result.Warnings)
			}
			props := *req.ANFO
			props.ID = uuid.New()
			props.BatchID = b.ID
			if props.QualityStatus == "" {
				props.QualityStatus = explosive.QualityPending
			}
			b.ANFO = &props
			if len(result.Warnings) > 0 {
				s.log.Warn("batch accepted with property warnings",
					zap.String("batch_id", b.BatchID), zap.Strings("warnings", result.Warnings))
			}
		}
	case explosive.TypeEmulsion:
		if req.Emulsion != nil {
			result := explosive.ValidateEmulsionProperties(*req.Emulsion)
			if !result.IsValid {
				return nil, apperr.Validation("emulsion technical properties failed validation", result.Errors, result.Warnings)
			}
			props := *req.Emulsion
			props.ID = uuid.New()
			props.BatchID = b.ID
			if props.QualityStatus == "" {
				props.QualityStatus = explosive.QualityPending
			}
			b.Emulsion = &props
			if len(result.Warnings) > 0 {
				s.log.Warn("batch accepted with property warnings",
					zap.String("batch_id", b.BatchID), zap.Strings("warnings", result.Warnings))
			}
		}
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to persist batch: %w", err)
	}

	s.log.Info("batch received",
		zap.String("batch_id", b.BatchID),
		zap.String("type", string(b.ExplosiveType)),
		zap.Float64("quantity", b.Quantity))
	return b, nil
}

func (s *service) GetBatch(ctx context.Context, id string) (*Batch, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBatchByNumber(ctx context.Context, batchID string) (*Batch, error) {
	return s.repo.GetByBatchID(ctx, batchID)
}

func (s *service) ListBatches(ctx context.Context, f ListFilter) ([]*Batch, int, error) {
	return s.repo.List(ctx, f)
}

func (s *service) UpdateANFOProperties(ctx context.Context, id string, p explosive.ANFOProperties) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ExplosiveType != explosive.TypeANFO {
		return nil, apperr.New(apperr.KindInvalidState, "batch %s is not an ANFO batch", b.BatchID)
	}

	result := explosive.ValidateANFOProperties(p)
	if !result.IsValid {
		return nil, apperr.Validation("ANFO technical properties failed validation", result.Errors, result.Warnings)
	}

	if b.ANFO != nil {
		p.ID = b.ANFO.ID
	} else {
		p.ID = uuid.New()
	}
	p.BatchID = b.ID
	// Fresh measurements reset the QA verdict.
	p.QualityStatus = explosive.QualityPending
	if err := s.repo.SaveANFOProperties(ctx, &p); err != nil {
		return nil, err
	}
	b.ANFO = &p
	return b, nil
}

func (s *service) UpdateEmulsionProperties(ctx context.Context, id string, p explosive.EmulsionProperties) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ExplosiveType != explosive.TypeEmulsion {
		return nil, apperr.New(apperr.KindInvalidState, "batch %s is not an emulsion batch", b.BatchID)
	}

	result := explosive.ValidateEmulsionProperties(p)
	if !result.IsValid {
		return nil, apperr.Validation("emulsion technical properties failed validation", result.Errors, result.Warnings)
	}

	if b.Emulsion != nil {
		p.ID = b.Emulsion.ID
	} else {
		p.ID = uuid.New()
	}
	p.BatchID = b.ID
	p.QualityStatus = explosive.QualityPending
	if err := s.repo.SaveEmulsionProperties(ctx, &p); err != nil {
		return nil, err
	}
	b.Emulsion = &p
	return b, nil
}

func (s *service) SetQualityStatus(ctx context.Context, id string, status explosive.QualityStatus) (*Batch, error) {
	if status != explosive.QualityApproved && status != explosive.QualityPending && status != explosive.QualityRejected {
		return nil, apperr.New(apperr.KindInvalidState, "unknown quality status %q", status)
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case b.ANFO != nil:
		b.ANFO.QualityStatus = status
		if err := s.repo.SaveANFOProperties(ctx, b.ANFO); err != nil {
			return nil, err
		}
	case b.Emulsion != nil:
		b.Emulsion.QualityStatus = status
		if err := s.repo.SaveEmulsionProperties(ctx, b.Emulsion); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.New(apperr.KindInvalidState, "batch %s has no technical properties recorded", b.BatchID)
	}
	return b, nil
}

func (s *service) QuarantineBatch(ctx context.Context, id string) (*Batch, error) {
	return s.transition(ctx, id, "quarantined", (*Batch).Quarantine)
}

func (s *service) ReleaseQuarantine(ctx context.Context, id string) (*Batch, error) {
	return s.transition(ctx, id, "released from quarantine", (*Batch).ReleaseQuarantine)
}

func (s *service) MarkExpired(ctx context.Context, id string) (*Batch, error) {
	return s.transition(ctx, id, "marked expired", (*Batch).MarkExpired)
}

func (s *service) DeactivateBatch(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.AllocatedQuantity > 0 {
		return apperr.New(apperr.KindInvalidState,
			"batch %s still has %.2f %s allocated to transfers", b.BatchID, b.AllocatedQuantity, b.Unit)
	}
	b.IsActive = false
	return s.repo.Update(ctx, b)
}

func (s *service) transition(ctx context.Context, id, action string, mutate func(*Batch) error) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(b); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("batch "+action, zap.String("batch_id", b.BatchID), zap.String("status", string(b.Status)))
	return b, nil
}
