package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

func f(v float64) *float64 { return &v }

func testInventory(qty float64) *Inventory {
	return &Inventory{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		ExplosiveType: explosive.TypeANFO,
		Quantity:      qty,
		Unit:          "kg",
	}
}

func TestInventoryReserve(t *testing.T) {
	inv := testInventory(500)

	require.NoError(t, inv.Reserve(200))
	assert.Equal(t, 200.0, inv.ReservedQuantity)
	assert.Equal(t, 300.0, inv.AvailableQuantity())
}

func TestInventoryReserveBeyondAvailable(t *testing.T) {
	inv := testInventory(500)
	require.NoError(t, inv.Reserve(400))

	err := inv.Reserve(200)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	// Reserved never exceeds quantity.
	assert.LessOrEqual(t, inv.ReservedQuantity, inv.Quantity)
}

func TestInventoryReserveInvalidQuantity(t *testing.T) {
	inv := testInventory(500)
	assert.True(t, apperr.Is(inv.Reserve(0), apperr.KindInvalidQuantity))
	assert.True(t, apperr.Is(inv.Reserve(-10), apperr.KindInvalidQuantity))
}

func TestInventoryRelease(t *testing.T) {
	inv := testInventory(500)
	require.NoError(t, inv.Reserve(300))

	require.NoError(t, inv.Release(100))
	assert.Equal(t, 200.0, inv.ReservedQuantity)

	err := inv.Release(300)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Equal(t, 200.0, inv.ReservedQuantity)
}

func TestInventoryReceive(t *testing.T) {
	inv := testInventory(100)
	expiry := time.Now().AddDate(1, 0, 0)

	require.NoError(t, inv.Receive(250, "ANFO-2024-007", "Dyno Nobel", &expiry))
	assert.Equal(t, 350.0, inv.Quantity)
	assert.Equal(t, "ANFO-2024-007", inv.BatchNumber)
	assert.Equal(t, "Dyno Nobel", inv.Supplier)
	require.NotNil(t, inv.ExpiryDate)
	require.NotNil(t, inv.LastRestockedAt)
}

func TestInventoryReceiveKeepsMetadataWhenBlank(t *testing.T) {
	inv := testInventory(100)
	inv.BatchNumber = "ANFO-2024-001"
	inv.Supplier = "Orica"

	require.NoError(t, inv.Receive(50, "", "", nil))
	assert.Equal(t, "ANFO-2024-001", inv.BatchNumber)
	assert.Equal(t, "Orica", inv.Supplier)
}

func TestInventoryStockLevelFlags(t *testing.T) {
	inv := testInventory(500)
	inv.MinimumStockLevel = f(100)
	inv.MaximumStockLevel = f(1000)
	assert.False(t, inv.IsLowStock())
	assert.False(t, inv.IsOverStock())

	inv.Quantity = 50
	assert.True(t, inv.IsLowStock())

	inv.Quantity = 1200
	assert.True(t, inv.IsOverStock())

	// Unset levels never flag.
	inv.MinimumStockLevel = nil
	inv.MaximumStockLevel = nil
	assert.False(t, inv.IsLowStock())
	assert.False(t, inv.IsOverStock())
}

func TestInventoryIsExpiringSoon(t *testing.T) {
	inv := testInventory(500)
	assert.False(t, inv.IsExpiringSoon(30))

	soon := time.Now().AddDate(0, 0, 10)
	inv.ExpiryDate = &soon
	assert.True(t, inv.IsExpiringSoon(30))

	far := time.Now().AddDate(1, 0, 0)
	inv.ExpiryDate = &far
	assert.False(t, inv.IsExpiringSoon(30))
}

func TestStoreHasCapacityFor(t *testing.T) {
	st := &Store{StorageCapacity: 1000, CurrentOccupancy: 800}
	assert.True(t, st.HasCapacityFor(200))
	assert.False(t, st.HasCapacityFor(201))

	// Zero capacity means uncapped.
	st = &Store{StorageCapacity: 0, CurrentOccupancy: 5000}
	assert.True(t, st.HasCapacityFor(100000))
}
