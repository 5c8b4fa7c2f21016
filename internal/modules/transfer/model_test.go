package transfer

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
)

func f(v float64) *float64 { return &v }

func pendingRequest() *Request {
	return &Request{
		ID:                 uuid.New(),
		RequestNumber:      "TRF-20260830-AB12",
		BatchID:            uuid.New(),
		DestinationStoreID: uuid.New(),
		RequestedQuantity:  500,
		Unit:               "kg",
		Status:             StatusPending,
		RequestDate:        time.Now(),
		RequestedByUserID:  uuid.New(),
	}
}

func TestRequestApprove(t *testing.T) {
	r := pendingRequest()
	approver := uuid.New()

	require.NoError(t, r.Approve(nil, approver, "ok"))
	assert.Equal(t, StatusApproved, r.Status)
	assert.NotNil(t, r.ApprovedDate)
	assert.Equal(t, approver, *r.ApprovedByUserID)
	// Full approval: final quantity stays the requested quantity.
	assert.Equal(t, 500.0, r.FinalQuantity())
}

func TestRequestApprovePartial(t *testing.T) {
	r := pendingRequest()

	require.NoError(t, r.Approve(f(300), uuid.New(), ""))
	assert.Equal(t, 300.0, r.FinalQuantity())
}

func TestRequestApproveQuantityBounds(t *testing.T) {
	r := pendingRequest()
	assert.True(t, apperr.Is(r.Approve(f(0), uuid.New(), ""), apperr.KindInvalidQuantity))
	assert.True(t, apperr.Is(r.Approve(f(-10), uuid.New(), ""), apperr.KindInvalidQuantity))
	// Approving more than requested is not allowed.
	assert.True(t, apperr.Is(r.Approve(f(600), uuid.New(), ""), apperr.KindInvalidQuantity))
	assert.Equal(t, StatusPending, r.Status)
}

func TestRequestRejectRequiresReason(t *testing.T) {
	r := pendingRequest()

	err := r.Reject("   ", uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindMissingReason))
	assert.Equal(t, StatusPending, r.Status)

	require.NoError(t, r.Reject("batch failed QA", uuid.New()))
	assert.Equal(t, StatusRejected, r.Status)
	assert.Equal(t, "batch failed QA", r.RejectionReason)
}

func TestRequestRejectAfterApproval(t *testing.T) {
	r := pendingRequest()
	require.NoError(t, r.Approve(nil, uuid.New(), ""))

	require.NoError(t, r.Reject("store closed", uuid.New()))
	assert.Equal(t, StatusRejected, r.Status)
}

func TestRequestDispatchRequiresDispatchInfo(t *testing.T) {
	r := pendingRequest()
	require.NoError(t, r.Approve(nil, uuid.New(), ""))

	err := r.Dispatch("", "J. Banda", "0977", uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindMissingDispatchInfo))

	err = r.Dispatch("TRK-042", "  ", "", uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindMissingDispatchInfo))

	require.NoError(t, r.Dispatch("TRK-042", "J. Banda", "0977", uuid.New()))
	assert.Equal(t, StatusInProgress, r.Status)
	assert.NotNil(t, r.DispatchDate)
}

func TestRequestDispatchOnlyFromApproved(t *testing.T) {
	r := pendingRequest()
	err := r.Dispatch("TRK-042", "J. Banda", "", uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestRequestCompleteRequiresConfirmedDelivery(t *testing.T) {
	r := pendingRequest()
	require.NoError(t, r.Approve(nil, uuid.New(), ""))
	require.NoError(t, r.Dispatch("TRK-042", "J. Banda", "", uuid.New()))

	// In progress but not yet delivered.
	assert.True(t, apperr.Is(r.Complete(uuid.New()), apperr.KindInvalidState))

	require.NoError(t, r.ConfirmDelivery())
	require.NoError(t, r.Complete(uuid.New()))
	assert.Equal(t, StatusCompleted, r.Status)
	assert.NotNil(t, r.CompletedDate)
}

func TestRequestConfirmDeliveryTwice(t *testing.T) {
	r := pendingRequest()
	require.NoError(t, r.Approve(nil, uuid.New(), ""))
	require.NoError(t, r.Dispatch("TRK-042", "J. Banda", "", uuid.New()))
	require.NoError(t, r.ConfirmDelivery())

	err := r.ConfirmDelivery()
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestRequestCancelBeforeDelivery(t *testing.T) {
	r := pendingRequest()
	require.NoError(t, r.Cancel("not needed"))
	assert.Equal(t, StatusCancelled, r.Status)

	r = pendingRequest()
	require.NoError(t, r.Approve(nil, uuid.New(), ""))
	require.NoError(t, r.Dispatch("TRK-042", "J. Banda", "", uuid.New()))
	require.NoError(t, r.Cancel("truck broke down"))
	assert.Equal(t, StatusCancelled, r.Status)
}

func TestRequestCancelAfterDeliveryFails(t *testing.T) {
	r := pendingRequest()
	require.NoError(t, r.Approve(nil, uuid.New(), ""))
	require.NoError(t, r.Dispatch("TRK-042", "J. Banda", "", uuid.New()))
	require.NoError(t, r.ConfirmDelivery())

	err := r.Cancel("changed my mind")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Equal(t, StatusInProgress, r.Status)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	terminal := func(build func(r *Request)) *Request {
		r := pendingRequest()
		build(r)
		return r
	}

	requests := []*Request{
		terminal(func(r *Request) { require.NoError(t, r.Reject("no", uuid.New())) }),
		terminal(func(r *Request) { require.NoError(t, r.Cancel("no")) }),
		terminal(func(r *Request) {
			require.NoError(t, r.Approve(nil, uuid.New(), ""))
			require.NoError(t, r.Dispatch("TRK-042", "J. Banda", "", uuid.New()))
			require.NoError(t, r.ConfirmDelivery())
			require.NoError(t, r.Complete(uuid.New()))
		}),
	}

	for _, r := range requests {
		assert.True(t, r.IsTerminal())
		assert.True(t, apperr.Is(r.Approve(nil, uuid.New(), ""), apperr.KindInvalidState))
		assert.True(t, apperr.Is(r.Dispatch("TRK-042", "J. Banda", "", uuid.New()), apperr.KindInvalidState))
		assert.True(t, apperr.Is(r.Complete(uuid.New()), apperr.KindInvalidState))
		if r.Status != StatusRejected {
			assert.True(t, apperr.Is(r.Reject("late", uuid.New()), apperr.KindInvalidState))
		}
		if r.Status != StatusCancelled {
			assert.True(t, apperr.Is(r.Cancel("late"), apperr.KindInvalidState))
		}
		assert.Empty(t, validTransitions[r.Status])
	}
}

func TestRequestIsOverdue(t *testing.T) {
	r := pendingRequest()
	assert.False(t, r.IsOverdue(), "no required-by date set")

	past := time.Now().Add(-time.Hour)
	r.RequiredByDate = &past
	assert.True(t, r.IsOverdue())

	// Terminal requests are never overdue.
	require.NoError(t, r.Cancel("no"))
	assert.False(t, r.IsOverdue())
}

func TestRequestIsUrgent(t *testing.T) {
	r := pendingRequest()
	due := time.Now().Add(24 * time.Hour)
	r.RequiredByDate = &due

	assert.True(t, r.IsUrgent(48))
	assert.False(t, r.IsUrgent(12))
}

func TestGenerateRequestNumber(t *testing.T) {
	n := generateRequestNumber()
	parts := strings.Split(n, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "TRF", parts[0])
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 4)
}
