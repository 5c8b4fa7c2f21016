package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
	"github.com/mkandawire/explotrack-backend/internal/modules/store"
	"github.com/mkandawire/explotrack-backend/internal/modules/warehouse"
)

// env is a shared in-memory backing store for the repository fakes, so a write
// through one repository is visible through the others, like rows in one
// database.
type env struct {
	batches     map[string]*warehouse.Batch
	stores      map[string]*store.Store
	inventories map[string]*store.Inventory // keyed by storeID/type
	requests    map[string]*Request
	txns        []*store.Transaction
}

func newEnv() *env {
	return &env{
		batches:     map[string]*warehouse.Batch{},
		stores:      map[string]*store.Store{},
		inventories: map[string]*store.Inventory{},
		requests:    map[string]*Request{},
	}
}

func invKey(storeID uuid.UUID, t explosive.Type) string {
	return storeID.String() + "/" + string(t)
}

func copyBatch(b *warehouse.Batch) *warehouse.Batch { c := *b; return &c }
func copyStore(s *store.Store) *store.Store         { c := *s; return &c }
func copyInventory(i *store.Inventory) *store.Inventory {
	c := *i
	return &c
}
func copyRequest(r *Request) *Request { c := *r; return &c }

type fakeBatchRepo struct{ env *env }

func (f *fakeBatchRepo) Create(_ context.Context, b *warehouse.Batch) error {
	f.env.batches[b.ID.String()] = copyBatch(b)
	return nil
}

func (f *fakeBatchRepo) GetByID(_ context.Context, id string) (*warehouse.Batch, error) {
	b, ok := f.env.batches[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "batch not found")
	}
	return copyBatch(b), nil
}

func (f *fakeBatchRepo) GetByBatchID(_ context.Context, batchID string) (*warehouse.Batch, error) {
	for _, b := range f.env.batches {
		if b.BatchID == batchID {
			return copyBatch(b), nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "batch not found")
}

func (f *fakeBatchRepo) List(_ context.Context, _ warehouse.ListFilter) ([]*warehouse.Batch, int, error) {
	return nil, 0, nil
}

func (f *fakeBatchRepo) Update(_ context.Context, b *warehouse.Batch) error {
	f.env.batches[b.ID.String()] = copyBatch(b)
	return nil
}

func (f *fakeBatchRepo) SaveANFOProperties(_ context.Context, _ *explosive.ANFOProperties) error {
	return nil
}

func (f *fakeBatchRepo) SaveEmulsionProperties(_ context.Context, _ *explosive.EmulsionProperties) error {
	return nil
}

type fakeStoreRepo struct{ env *env }

func (f *fakeStoreRepo) CreateStore(_ context.Context, st *store.Store) error {
	f.env.stores[st.ID.String()] = copyStore(st)
	return nil
}

func (f *fakeStoreRepo) GetStoreByID(_ context.Context, id string) (*store.Store, error) {
	st, ok := f.env.stores[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "store not found")
	}
	return copyStore(st), nil
}

func (f *fakeStoreRepo) ListStores(_ context.Context, _ string, _ store.Status) ([]*store.Store, error) {
	return nil, nil
}

func (f *fakeStoreRepo) UpdateStore(_ context.Context, st *store.Store) error {
	f.env.stores[st.ID.String()] = copyStore(st)
	return nil
}

func (f *fakeStoreRepo) CreateInventory(_ context.Context, inv *store.Inventory) error {
	f.env.inventories[invKey(inv.StoreID, inv.ExplosiveType)] = copyInventory(inv)
	return nil
}

func (f *fakeStoreRepo) GetInventory(_ context.Context, _ string) ([]*store.Inventory, error) {
	return nil, nil
}

func (f *fakeStoreRepo) GetInventoryByType(_ context.Context, storeID string, t explosive.Type) (*store.Inventory, error) {
	for _, inv := range f.env.inventories {
		if inv.StoreID.String() == storeID && inv.ExplosiveType == t {
			return copyInventory(inv), nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "no inventory for this explosive type")
}

func (f *fakeStoreRepo) UpdateInventory(_ context.Context, inv *store.Inventory) error {
	f.env.inventories[invKey(inv.StoreID, inv.ExplosiveType)] = copyInventory(inv)
	return nil
}

func (f *fakeStoreRepo) CreateTransaction(_ context.Context, txn *store.Transaction) error {
	f.env.txns = append(f.env.txns, txn)
	return nil
}

func (f *fakeStoreRepo) ListTransactions(_ context.Context, _ string, _ int) ([]*store.Transaction, error) {
	return f.env.txns, nil
}

func (f *fakeStoreRepo) ApplyAdjustment(_ context.Context, inv *store.Inventory, st *store.Store, txn *store.Transaction) error {
	f.env.inventories[invKey(inv.StoreID, inv.ExplosiveType)] = copyInventory(inv)
	f.env.stores[st.ID.String()] = copyStore(st)
	f.env.txns = append(f.env.txns, txn)
	return nil
}

type fakeTransferRepo struct{ env *env }

func (f *fakeTransferRepo) GetByID(_ context.Context, id string) (*Request, error) {
	r, ok := f.env.requests[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "transfer request not found")
	}
	return copyRequest(r), nil
}

func (f *fakeTransferRepo) GetByNumber(_ context.Context, number string) (*Request, error) {
	for _, r := range f.env.requests {
		if r.RequestNumber == number {
			return copyRequest(r), nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "transfer request not found")
}

func (f *fakeTransferRepo) List(_ context.Context, _ ListFilter) ([]*Request, int, error) {
	var out []*Request
	for _, r := range f.env.requests {
		out = append(out, copyRequest(r))
	}
	return out, len(out), nil
}

func (f *fakeTransferRepo) Create(_ context.Context, req *Request, batch *warehouse.Batch) error {
	f.env.requests[req.ID.String()] = copyRequest(req)
	f.env.batches[batch.ID.String()] = copyBatch(batch)
	return nil
}

func (f *fakeTransferRepo) Update(_ context.Context, req *Request, batch *warehouse.Batch) error {
	f.env.requests[req.ID.String()] = copyRequest(req)
	if batch != nil {
		f.env.batches[batch.ID.String()] = copyBatch(batch)
	}
	return nil
}

func (f *fakeTransferRepo) RecordDelivery(_ context.Context, req *Request, inv *store.Inventory, _ bool,
	st *store.Store, txn *store.Transaction) error {
	f.env.requests[req.ID.String()] = copyRequest(req)
	f.env.inventories[invKey(inv.StoreID, inv.ExplosiveType)] = copyInventory(inv)
	f.env.stores[st.ID.String()] = copyStore(st)
	f.env.txns = append(f.env.txns, txn)
	return nil
}

type fixture struct {
	env     *env
	service Service
	batch   *warehouse.Batch
	store   *store.Store
	userID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	e := newEnv()

	batch := &warehouse.Batch{
		ID:                uuid.New(),
		BatchID:           "ANFO-2024-001",
		ExplosiveType:     explosive.TypeANFO,
		Quantity:          1000,
		Unit:              "kg",
		ManufacturingDate: time.Now().AddDate(0, -1, 0),
		ExpiryDate:        time.Now().AddDate(1, 0, 0),
		Supplier:          "Dyno Nobel",
		Status:            warehouse.StatusAvailable,
		IsActive:          true,
	}
	e.batches[batch.ID.String()] = batch

	st := &store.Store{
		ID:              uuid.New(),
		Name:            "Kitwe North Store",
		RegionID:        "copperbelt",
		StorageCapacity: 2000,
		Status:          store.StatusOperational,
		IsActive:        true,
	}
	e.stores[st.ID.String()] = st

	svc := NewService(
		&fakeTransferRepo{env: e},
		&fakeBatchRepo{env: e},
		&fakeStoreRepo{env: e},
		zap.NewNop(), 30, 48)

	return &fixture{env: e, service: svc, batch: batch, store: st, userID: uuid.New().String()}
}

func (fx *fixture) create(t *testing.T, qty float64) *RequestDTO {
	t.Helper()
	dto, err := fx.service.Create(context.Background(), CreateRequest{
		BatchID:            fx.batch.ID.String(),
		DestinationStoreID: fx.store.ID.String(),
		Quantity:           qty,
		RequestedByUserID:  fx.userID,
	})
	require.NoError(t, err)
	return dto
}

func (fx *fixture) storedBatch() *warehouse.Batch {
	return fx.env.batches[fx.batch.ID.String()]
}

func TestTransferFullLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	dto := fx.create(t, 500)
	assert.Equal(t, StatusPending, dto.Status)
	assert.Equal(t, 500.0, fx.storedBatch().AllocatedQuantity)

	dto, err := fx.service.Approve(ctx, dto.ID.String(), ApproveRequest{UserID: fx.userID})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, dto.Status)
	assert.Equal(t, 500.0, dto.FinalQuantity)

	dto, err = fx.service.Dispatch(ctx, dto.ID.String(), DispatchRequest{
		TruckNumber: "TRK-042", DriverName: "J. Banda", UserID: fx.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, dto.Status)

	dto, err = fx.service.ConfirmDelivery(ctx, dto.ID.String())
	require.NoError(t, err)
	require.NotNil(t, dto.DeliveryConfirmedDate)

	// Delivery books the stock into the store and leaves an audit record.
	inv := fx.env.inventories[invKey(fx.store.ID, explosive.TypeANFO)]
	require.NotNil(t, inv)
	assert.Equal(t, 500.0, inv.Quantity)
	assert.Equal(t, "ANFO-2024-001", inv.BatchNumber)
	assert.Equal(t, 500.0, fx.env.stores[fx.store.ID.String()].CurrentOccupancy)
	require.Len(t, fx.env.txns, 1)
	assert.Equal(t, store.TxnTransfer, fx.env.txns[0].Type)
	assert.Equal(t, dto.RequestNumber, fx.env.txns[0].ReferenceNumber)

	dto, err = fx.service.Complete(ctx, dto.ID.String(), fx.userID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, dto.Status)

	// Completion consumes the warehouse side of the ledger.
	b := fx.storedBatch()
	assert.Equal(t, 500.0, b.Quantity)
	assert.Equal(t, 0.0, b.AllocatedQuantity)
}

func TestTransferPartialApprovalReturnsRemainder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	dto := fx.create(t, 500)
	assert.Equal(t, 500.0, fx.storedBatch().AllocatedQuantity)

	dto, err := fx.service.Approve(ctx, dto.ID.String(), ApproveRequest{
		ApprovedQuantity: f(300), UserID: fx.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, dto.FinalQuantity)
	// The unneeded 200 went straight back to the batch.
	assert.Equal(t, 300.0, fx.storedBatch().AllocatedQuantity)
}

func TestTransferRejectionRestoresAllocation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	dto := fx.create(t, 500)
	_, err := fx.service.Reject(ctx, dto.ID.String(), RejectRequest{
		Reason: "batch failed QA", UserID: fx.userID,
	})
	require.NoError(t, err)

	b := fx.storedBatch()
	assert.Equal(t, 0.0, b.AllocatedQuantity)
	assert.Equal(t, 1000.0, b.Quantity)

	// A rejected request is terminal: no transition may follow.
	_, err = fx.service.Approve(ctx, dto.ID.String(), ApproveRequest{UserID: fx.userID})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	_, err = fx.service.Dispatch(ctx, dto.ID.String(), DispatchRequest{
		TruckNumber: "TRK-042", DriverName: "J. Banda", UserID: fx.userID,
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestTransferRejectWithoutReason(t *testing.T) {
	fx := newFixture(t)

	dto := fx.create(t, 500)
	_, err := fx.service.Reject(context.Background(), dto.ID.String(), RejectRequest{UserID: fx.userID})
	assert.True(t, apperr.Is(err, apperr.KindMissingReason))
	// Nothing changed.
	assert.Equal(t, 500.0, fx.storedBatch().AllocatedQuantity)
}

func TestTransferCancelInTransitRestoresAllocation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	dto := fx.create(t, 500)
	_, err := fx.service.Approve(ctx, dto.ID.String(), ApproveRequest{UserID: fx.userID})
	require.NoError(t, err)
	_, err = fx.service.Dispatch(ctx, dto.ID.String(), DispatchRequest{
		TruckNumber: "TRK-042", DriverName: "J. Banda", UserID: fx.userID,
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.Cancel(ctx, dto.ID.String(), "truck broke down"))

	b := fx.storedBatch()
	assert.Equal(t, 0.0, b.AllocatedQuantity)
	assert.Equal(t, 1000.0, b.Quantity)
}

func TestTransferCancelAfterDeliveryFails(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	dto := fx.create(t, 500)
	_, err := fx.service.Approve(ctx, dto.ID.String(), ApproveRequest{UserID: fx.userID})
	require.NoError(t, err)
	_, err = fx.service.Dispatch(ctx, dto.ID.String(), DispatchRequest{
		TruckNumber: "TRK-042", DriverName: "J. Banda", UserID: fx.userID,
	})
	require.NoError(t, err)
	_, err = fx.service.ConfirmDelivery(ctx, dto.ID.String())
	require.NoError(t, err)

	err = fx.service.Cancel(ctx, dto.ID.String(), "changed plans")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestTransferCreateInsufficientStock(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Create(context.Background(), CreateRequest{
		BatchID:            fx.batch.ID.String(),
		DestinationStoreID: fx.store.ID.String(),
		Quantity:           1500,
		RequestedByUserID:  fx.userID,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))

	// Nothing was persisted.
	assert.Empty(t, fx.env.requests)
	assert.Equal(t, 0.0, fx.storedBatch().AllocatedQuantity)
}

func TestTransferCreateToNonOperationalStore(t *testing.T) {
	fx := newFixture(t)
	fx.store.Status = store.StatusUnderMaintenance
	fx.env.stores[fx.store.ID.String()] = fx.store

	_, err := fx.service.Create(context.Background(), CreateRequest{
		BatchID:            fx.batch.ID.String(),
		DestinationStoreID: fx.store.ID.String(),
		Quantity:           100,
		RequestedByUserID:  fx.userID,
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestTransferCreateByBatchNumber(t *testing.T) {
	fx := newFixture(t)

	dto, err := fx.service.Create(context.Background(), CreateRequest{
		BatchID:            "ANFO-2024-001",
		DestinationStoreID: fx.store.ID.String(),
		Quantity:           100,
		RequestedByUserID:  fx.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, fx.batch.ID, dto.BatchID)
}

func TestTransferCreateCarriesWarnings(t *testing.T) {
	fx := newFixture(t)
	fx.batch.ExpiryDate = time.Now().AddDate(0, 0, 10)
	fx.env.batches[fx.batch.ID.String()] = fx.batch

	// Expiring batch plus a request for 95% of what is available.
	dto := fx.create(t, 950)
	assert.Len(t, dto.Warnings, 2)
}

func TestTransferDeliveryExceedingStoreCapacity(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.store.CurrentOccupancy = 1900
	fx.env.stores[fx.store.ID.String()] = fx.store

	dto := fx.create(t, 500)
	_, err := fx.service.Approve(ctx, dto.ID.String(), ApproveRequest{UserID: fx.userID})
	require.NoError(t, err)
	_, err = fx.service.Dispatch(ctx, dto.ID.String(), DispatchRequest{
		TruckNumber: "TRK-042", DriverName: "J. Banda", UserID: fx.userID,
	})
	require.NoError(t, err)

	_, err = fx.service.ConfirmDelivery(ctx, dto.ID.String())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidQuantity))
	// Stock stayed untouched.
	assert.Nil(t, fx.env.inventories[invKey(fx.store.ID, explosive.TypeANFO)])
}

func TestTransferDeliveryAccumulatesExistingInventory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	existing := &store.Inventory{
		ID:            uuid.New(),
		StoreID:       fx.store.ID,
		ExplosiveType: explosive.TypeANFO,
		Quantity:      200,
		Unit:          "kg",
	}
	fx.env.inventories[invKey(fx.store.ID, explosive.TypeANFO)] = existing

	dto := fx.create(t, 300)
	_, err := fx.service.Approve(ctx, dto.ID.String(), ApproveRequest{UserID: fx.userID})
	require.NoError(t, err)
	_, err = fx.service.Dispatch(ctx, dto.ID.String(), DispatchRequest{
		TruckNumber: "TRK-042", DriverName: "J. Banda", UserID: fx.userID,
	})
	require.NoError(t, err)
	_, err = fx.service.ConfirmDelivery(ctx, dto.ID.String())
	require.NoError(t, err)

	inv := fx.env.inventories[invKey(fx.store.ID, explosive.TypeANFO)]
	assert.Equal(t, existing.ID, inv.ID)
	assert.Equal(t, 500.0, inv.Quantity)
}
