package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
)

// Status is the lifecycle state of a transfer request.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusInProgress Status = "IN_PROGRESS" // dispatched, en route or delivered
	StatusCompleted  Status = "COMPLETED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
)

// validTransitions is the allowed status state machine. Completed, Rejected
// and Cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:   {StatusInProgress, StatusRejected, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusRejected:   {},
	StatusCancelled:  {},
}

// Request is a central-warehouse-to-store inventory transfer moving through
// the approval/dispatch/delivery workflow.
type Request struct {
	ID                 uuid.UUID `json:"id"`
	RequestNumber      string    `json:"request_number"`
	BatchID            uuid.UUID `json:"batch_id"` // source central warehouse batch
	DestinationStoreID uuid.UUID `json:"destination_store_id"`
	RequestedQuantity  float64   `json:"requested_quantity"`
	ApprovedQuantity   *float64  `json:"approved_quantity,omitempty"`
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

	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FinalQuantity is the quantity the transfer actually moves: the approved
// quantity when one was set, otherwise the requested quantity.
func (r *Request) FinalQuantity() float64 {
	if r.ApprovedQuantity != nil {
		return *r.ApprovedQuantity
	}
	return r.RequestedQuantity
}

// IsTerminal reports whether the request can no longer transition.
func (r *Request) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusRejected || r.Status == StatusCancelled
}

// IsOverdue reports whether the required-by date passed before completion.
func (r *Request) IsOverdue() bool {
	if r.RequiredByDate == nil || r.IsTerminal() {
		return false
	}
	return time.Now().After(*r.RequiredByDate)
}

// IsUrgent reports whether the required-by date falls within windowHours.
func (r *Request) IsUrgent(windowHours int) bool {
	if r.RequiredByDate == nil || r.IsTerminal() {
		return false
	}
	return time.Until(*r.RequiredByDate) <= time.Duration(windowHours)*time.Hour
}

func (r *Request) invalidState(op string) error {
	return apperr.New(apperr.KindInvalidState,
		"cannot %s transfer %s in status %s", op, r.RequestNumber, r.Status)
}

// Approve moves a pending request to Approved. A nil approvedQty means the
// full requested quantity was granted.
func (r *Request) Approve(approvedQty *float64, approverID uuid.UUID, notes string) error {
	if r.Status != StatusPending {
		return r.invalidState("approve")
	}
	if approvedQty != nil {
		if *approvedQty <= 0 {
			return apperr.New(apperr.KindInvalidQuantity, "approved quantity must be greater than zero")
		}
		if *approvedQty > r.RequestedQuantity {
			return apperr.New(apperr.KindInvalidQuantity,
				"approved quantity %.2f exceeds the requested %.2f", *approvedQty, r.RequestedQuantity)
		}
		r.ApprovedQuantity = approvedQty
	}
	now := time.Now()
	r.Status = StatusApproved
	r.ApprovedDate = &now
	r.ApprovedByUserID = &approverID
	if notes != "" {
		r.Notes = notes
	}
	return nil
}

// Reject closes the request with a mandatory reason. Allowed from Pending and
// Approved only.
func (r *Request) Reject(reason string, userID uuid.UUID) error {
	if r.Status != StatusPending && r.Status != StatusApproved {
		return r.invalidState("reject")
	}
	if strings.TrimSpace(reason) == "" {
		return apperr.New(apperr.KindMissingReason, "a rejection reason is required")
	}
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.ProcessedByUserID = &userID
	return nil
}

// Dispatch records the physical loading of an approved transfer.
func (r *Request) Dispatch(truckNumber, driverName, driverContact string, userID uuid.UUID) error {
	if r.Status != StatusApproved {
		return r.invalidState("dispatch")
	}
	if strings.TrimSpace(truckNumber) == "" || strings.TrimSpace(driverName) == "" {
		return apperr.New(apperr.KindMissingDispatchInfo, "truck number and driver name are required to dispatch")
	}
	now := time.Now()
	r.Status = StatusInProgress
	r.DispatchDate = &now
	r.TruckNumber = truckNumber
	r.DriverName = driverName
	r.DriverContact = driverContact
	r.DispatchedByUserID = &userID
	return nil
}

// ConfirmDelivery records arrival at the destination store.
func (r *Request) ConfirmDelivery() error {
	if r.Status != StatusInProgress || r.DispatchDate == nil {
		return r.invalidState("confirm delivery for")
	}
	if r.DeliveryConfirmedDate != nil {
		return apperr.New(apperr.KindInvalidState,
			"delivery of transfer %s was already confirmed", r.RequestNumber)
	}
	now := time.Now()
	r.DeliveryConfirmedDate = &now
	return nil
}

// Complete closes out a delivered transfer.
func (r *Request) Complete(userID uuid.UUID) error {
	if r.Status != StatusInProgress || r.DeliveryConfirmedDate == nil {
		return r.invalidState("complete")
	}
	now := time.Now()
	r.Status = StatusCompleted
	r.CompletedDate = &now
	r.ProcessedByUserID = &userID
	return nil
}

// Cancel aborts the transfer. Allowed from Pending, Approved and from
// InProgress before delivery was confirmed.
func (r *Request) Cancel(reason string) error {
	switch r.Status {
	case StatusPending, StatusApproved:
	case StatusInProgress:
		if r.DeliveryConfirmedDate != nil {
			return apperr.New(apperr.KindInvalidState,
				"transfer %s was already delivered and can only be completed", r.RequestNumber)
		}
	default:
		return r.invalidState("cancel")
	}
	r.Status = StatusCancelled
	if reason != "" {
		r.RejectionReason = reason
	}
	return nil
}

// generateRequestNumber creates a human-readable request number: TRF-YYYYMMDD-XXXX
func generateRequestNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("TRF-%s-%s", date, suffix)
}
