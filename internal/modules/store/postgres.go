package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL store repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateStore(ctx context.Context, st *Store) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores
		  (id, name, region_id, manager_user_id, storage_capacity, current_occupancy, status, is_active, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		st.ID, st.Name, st.RegionID, st.ManagerUserID, st.StorageCapacity, st.CurrentOccupancy,
		st.Status, st.IsActive, st.Version)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetStoreByID(ctx context.Context, id string) (*Store, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "invalid store id %q", id)
	}
	st := &Store{}
	var manager sql.NullString
	err = r.db.QueryRowContext(ctx, `
		SELECT id, name, region_id, manager_user_id, storage_capacity, current_occupancy,
		       status, is_active, version, created_at, updated_at
		FROM stores WHERE id=$1 AND is_active`, uid).Scan(
		&st.ID, &st.Name, &st.RegionID, &manager, &st.StorageCapacity, &st.CurrentOccupancy,
		&st.Status, &st.IsActive, &st.Version, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "store not found")
	}
	if err != nil {
		return nil, err
	}
	if manager.Valid {
		mid, _ := uuid.Parse(manager.String)
		st.ManagerUserID = &mid
	}
	return st, nil
}

func (r *postgresRepo) ListStores(ctx context.Context, regionID string, status Status) ([]*Store, error) {
	query := `SELECT id, name, region_id, manager_user_id, storage_capacity, current_occupancy,
	                 status, is_active, version, created_at, updated_at
	          FROM stores WHERE is_active`
	args := []interface{}{}
	n := 0
	if regionID != "" {
		n++
		query += fmt.Sprintf(` AND region_id=$%d`, n)
		args = append(args, regionID)
	}
	if status != "" {
		n++
		query += fmt.Sprintf(` AND status=$%d`, n)
		args = append(args, status)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*Store
	for rows.Next() {
		st := &Store{}
		var manager sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &st.RegionID, &manager, &st.StorageCapacity,
			&st.CurrentOccupancy, &st.Status, &st.IsActive, &st.Version, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		if manager.Valid {
			mid, _ := uuid.Parse(manager.String)
			st.ManagerUserID = &mid
		}
		stores = append(stores, st)
	}
	return stores, rows.Err()
}

func (r *postgresRepo) UpdateStore(ctx context.Context, st *Store) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stores
		SET name=$1, region_id=$2, manager_user_id=$3, storage_capacity=$4, current_occupancy=$5,
		    status=$6, is_active=$7, version=version+1, updated_at=$8
		WHERE id=$9 AND version=$10`,
		st.Name, st.RegionID, st.ManagerUserID, st.StorageCapacity, st.CurrentOccupancy,
		st.Status, st.IsActive, time.Now(), st.ID, st.Version)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.KindConflict, "store %s was modified concurrently", st.Name)
	}
	st.Version++
	return nil
}

func (r *postgresRepo) CreateInventory(ctx context.Context, inv *Inventory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO store_inventories
		  (id, store_id, explosive_type, quantity, reserved_quantity, unit,
		   minimum_stock_level, maximum_stock_level, batch_number, supplier, expiry_date,
		   last_restocked_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		inv.ID, inv.StoreID, inv.ExplosiveType, inv.Quantity, inv.ReservedQuantity, inv.Unit,
		inv.MinimumStockLevel, inv.MaximumStockLevel, inv.BatchNumber, inv.Supplier, inv.ExpiryDate,
		inv.LastRestockedAt, inv.Version)
	if err != nil {
		return fmt.Errorf("insert store inventory: %w", err)
	}
	return nil
}

const inventoryColumns = `id, store_id, explosive_type, quantity, reserved_quantity, unit,
	minimum_stock_level, maximum_stock_level, batch_number, supplier, expiry_date,
	last_restocked_at, version, created_at, updated_at`

func (r *postgresRepo) GetInventory(ctx context.Context, storeID string) ([]*Inventory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inventoryColumns+` FROM store_inventories WHERE store_id=$1 ORDER BY explosive_type`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

func (r *postgresRepo) GetInventoryByType(ctx context.Context, storeID string, t explosive.Type) (*Inventory, error) {
	inv, err := scanInventory(r.db.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM store_inventories WHERE store_id=$1 AND explosive_type=$2`, storeID, t))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "no %s inventory at this store", t)
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *postgresRepo) UpdateInventory(ctx context.Context, inv *Inventory) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE store_inventories
		SET quantity=$1, reserved_quantity=$2, minimum_stock_level=$3, maximum_stock_level=$4,
		    batch_number=$5, supplier=$6, expiry_date=$7, last_restocked_at=$8,
		    version=version+1, updated_at=$9
		WHERE id=$10 AND version=$11`,
		inv.Quantity, inv.ReservedQuantity, inv.MinimumStockLevel, inv.MaximumStockLevel,
		inv.BatchNumber, inv.Supplier, inv.ExpiryDate, inv.LastRestockedAt,
		time.Now(), inv.ID, inv.Version)
	if err != nil {
		return fmt.Errorf("update store inventory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.KindConflict, "store inventory was modified concurrently")
	}
	inv.Version++
	return nil
}

func (r *postgresRepo) CreateTransaction(ctx context.Context, txn *Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO store_transactions
		  (id, store_id, inventory_id, type, quantity, unit, reference_number, notes, processed_by_user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		txn.ID, txn.StoreID, txn.InventoryID, txn.Type, txn.Quantity, txn.Unit,
		txn.ReferenceNumber, txn.Notes, txn.ProcessedByUserID)
	if err != nil {
		return fmt.Errorf("insert store transaction: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListTransactions(ctx context.Context, storeID string, limit int) ([]*Transaction, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, store_id, inventory_id, type, quantity, unit, reference_number, notes,
		       processed_by_user_id, created_at
		FROM store_transactions WHERE store_id=$1 ORDER BY created_at DESC LIMIT $2`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*Transaction
	for rows.Next() {
		txn := &Transaction{}
		var ref, notes sql.NullString
		var processedBy sql.NullString
		if err := rows.Scan(&txn.ID, &txn.StoreID, &txn.InventoryID, &txn.Type, &txn.Quantity,
			&txn.Unit, &ref, &notes, &processedBy, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txn.ReferenceNumber = ref.String
		txn.Notes = notes.String
		if processedBy.Valid {
			pid, _ := uuid.Parse(processedBy.String)
			txn.ProcessedByUserID = &pid
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// ApplyAdjustment updates the inventory row and store occupancy and writes the
// audit record in a single transaction, with version checks on both rows.
func (r *postgresRepo) ApplyAdjustment(ctx context.Context, inv *Inventory, st *Store, txn *Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE store_inventories
		SET quantity=$1, reserved_quantity=$2, version=version+1, updated_at=$3
		WHERE id=$4 AND version=$5`,
		inv.Quantity, inv.ReservedQuantity, time.Now(), inv.ID, inv.Version)
	if err != nil {
		return fmt.Errorf("update store inventory: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindConflict, "store inventory was modified concurrently")
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE stores SET current_occupancy=$1, version=version+1, updated_at=$2
		WHERE id=$3 AND version=$4`,
		st.CurrentOccupancy, time.Now(), st.ID, st.Version)
	if err != nil {
		return fmt.Errorf("update store occupancy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindConflict, "store %s was modified concurrently", st.Name)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO store_transactions
		  (id, store_id, inventory_id, type, quantity, unit, reference_number, notes, processed_by_user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		txn.ID, txn.StoreID, txn.InventoryID, txn.Type, txn.Quantity, txn.Unit,
		txn.ReferenceNumber, txn.Notes, txn.ProcessedByUserID)
	if err != nil {
		return fmt.Errorf("insert store transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	inv.Version++
	st.Version++
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInventory(row rowScanner) (*Inventory, error) {
	inv := &Inventory{}
	var batchNumber, supplier sql.NullString
	var minLevel, maxLevel sql.NullFloat64
	var expiry, restocked sql.NullTime
	err := row.Scan(&inv.ID, &inv.StoreID, &inv.ExplosiveType, &inv.Quantity, &inv.ReservedQuantity,
		&inv.Unit, &minLevel, &maxLevel, &batchNumber, &supplier, &expiry, &restocked,
		&inv.Version, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.BatchNumber = batchNumber.String
	inv.Supplier = supplier.String
	if minLevel.Valid {
		inv.MinimumStockLevel = &minLevel.Float64
	}
	if maxLevel.Valid {
		inv.MaximumStockLevel = &maxLevel.Float64
	}
	if expiry.Valid {
		inv.ExpiryDate = &expiry.Time
	}
	if restocked.Valid {
		inv.LastRestockedAt = &restocked.Time
	}
	return inv, nil
}
