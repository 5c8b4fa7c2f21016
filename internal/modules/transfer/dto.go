package transfer

import (
	"time"

	"github.com/google/uuid"
)

// RequestDTO is the outward-facing shape of a transfer request, carrying the
// derived workflow fields alongside the stored ones.
type RequestDTO struct {
	ID                 uuid.UUID `json:"id"`
	RequestNumber      string    `json:"request_number"`
	BatchID            uuid.UUID `json:"batch_id"`
	DestinationStoreID uuid.UUID `json:"destination_store_id"`
	RequestedQuantity  float64   `json:"requested_quantity"`
	ApprovedQuantity   *float64  `json:"approved_quantity,omitempty"`
	FinalQuantity      float64   `json:"final_quantity"`
	Unit               string    `json:"unit"`
	Status             Status    `json:"status"`

	RequestDate           time.Time  `json:"request_date"`
	RequiredByDate        *time.Time `json:"required_by_date,omitempty"`
	ApprovedDate          *time.Time `json:"approved_date,omitempty"`
	DispatchDate          *time.Time `json:"dispatch_date,omitempty"`
	DeliveryConfirmedDate *time.Time `json:"delivery_confirmed_date,omitempty"`
	CompletedDate         *time.Time `json:"completed_date,omitempty"`

	TruckNumber   string `json:"truck_number,omitempty"`
	DriverName    string `json:"driver_name,omitempty"`
	DriverContact string `json:"driver_contact,omitempty"`

	RequestedByUserID  uuid.UUID  `json:"requested_by_user_id"`
	ApprovedByUserID   *uuid.UUID `json:"approved_by_user_id,omitempty"`
	DispatchedByUserID *uuid.UUID `json:"dispatched_by_user_id,omitempty"`
	ProcessedByUserID  *uuid.UUID `json:"processed_by_user_id,omitempty"`

	RejectionReason string `json:"rejection_reason,omitempty"`
	Notes           string `json:"notes,omitempty"`

	IsOverdue bool `json:"is_overdue"`
	IsUrgent  bool `json:"is_urgent"`

	// NextStatuses lists the statuses the request may still move to.
	NextStatuses []Status `json:"next_statuses"`

	// Warnings carries informational validation messages from creation
	// (expiring batch, near-exhausting request). Never blocking.
	Warnings []string `json:"warnings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toDTO maps a Request to its DTO explicitly, field by field, so a new entity
// field that is forgotten here shows up in review instead of being silently
// dropped by a reflection mapper.
func toDTO(r *Request, urgentWindowHours int) *RequestDTO {
	return &RequestDTO{
		ID:                 r.ID,
		RequestNumber:      r.RequestNumber,
		BatchID:            r.BatchID,
		DestinationStoreID: r.DestinationStoreID,
		RequestedQuantity:  r.RequestedQuantity,
		ApprovedQuantity:   r.ApprovedQuantity,
		FinalQuantity:      r.FinalQuantity(),
		Unit:               r.Unit,
		Status:             r.Status,

		RequestDate:           r.RequestDate,
		RequiredByDate:        r.RequiredByDate,
		ApprovedDate:          r.ApprovedDate,
		DispatchDate:          r.DispatchDate,
		DeliveryConfirmedDate: r.DeliveryConfirmedDate,
		CompletedDate:         r.CompletedDate,

		TruckNumber:   r.TruckNumber,
		DriverName:    r.DriverName,
		DriverContact: r.DriverContact,

		RequestedByUserID:  r.RequestedByUserID,
		ApprovedByUserID:   r.ApprovedByUserID,
		DispatchedByUserID: r.DispatchedByUserID,
		ProcessedByUserID:  r.ProcessedByUserID,

		RejectionReason: r.RejectionReason,
		Notes:           r.Notes,

		IsOverdue: r.IsOverdue(),
		IsUrgent:  r.IsUrgent(urgentWindowHours),

		NextStatuses: validTransitions[r.Status],

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
