package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
	"github.com/mkandawire/explotrack-backend/internal/modules/store"
	"github.com/mkandawire/explotrack-backend/internal/modules/warehouse"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL transfer repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const requestColumns = `id, request_number, batch_id, destination_store_id, requested_quantity,
	approved_quantity, unit, status, request_date, required_by_date, approved_date, dispatch_date,
	delivery_confirmed_date, completed_date, truck_number, driver_name, driver_contact,
	requested_by_user_id, approved_by_user_id, dispatched_by_user_id, processed_by_user_id,
	rejection_reason, notes, version, created_at, updated_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Request, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "invalid transfer request id %q", id)
	}
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM transfer_requests WHERE id=$1`, uid)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, requestNumber string) (*Request, error) {
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM transfer_requests WHERE request_number=$1`, requestNumber)
}

func (r *postgresRepo) getOne(ctx context.Context, query string, arg interface{}) (*Request, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "transfer request not found")
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Request, int, error) {
	where := ` WHERE true`
	args := []interface{}{}
	n := 0
	if f.Status != "" {
		n++
		where += fmt.Sprintf(` AND status=$%d`, n)
		args = append(args, f.Status)
	}
	if f.DestinationStoreID != "" {
		n++
		where += fmt.Sprintf(` AND destination_store_id=$%d`, n)
		args = append(args, f.DestinationStoreID)
	}
	if f.RequestedByUserID != "" {
		n++
		where += fmt.Sprintf(` AND requested_by_user_id=$%d`, n)
		args = append(args, f.RequestedByUserID)
	}
	nonTerminal := ` AND status NOT IN ('COMPLETED','REJECTED','CANCELLED')`
	if f.OverdueOnly {
		where += nonTerminal + ` AND required_by_date IS NOT NULL AND required_by_date < now()`
	}
	if f.UrgentWithinHours > 0 {
		n++
		where += nonTerminal + fmt.Sprintf(` AND required_by_date IS NOT NULL AND required_by_date <= $%d`, n)
		args = append(args, time.Now().Add(time.Duration(f.UrgentWithinHours)*time.Hour))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM transfer_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := ` ORDER BY request_date DESC`
	if f.SortAscending {
		order = ` ORDER BY request_date ASC`
	}
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	query := `SELECT ` + requestColumns + ` FROM transfer_requests` + where + order +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, req *Request, batch *warehouse.Batch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transfer_requests
		  (id, request_number, batch_id, destination_store_id, requested_quantity, approved_quantity,
		   unit, status, request_date, required_by_date, requested_by_user_id, notes, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		req.ID, req.RequestNumber, req.BatchID, req.DestinationStoreID, req.RequestedQuantity,
		req.ApprovedQuantity, req.Unit, req.Status, req.RequestDate, req.RequiredByDate,
		req.RequestedByUserID, req.Notes, req.Version)
	if err != nil {
		return fmt.Errorf("insert transfer request: %w", err)
	}

	if err := updateBatchTx(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	batch.Version++
	return nil
}

func (r *postgresRepo) Update(ctx context.Context, req *Request, batch *warehouse.Batch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateRequestTx(ctx, tx, req); err != nil {
		return err
	}
	if batch != nil {
		if err := updateBatchTx(ctx, tx, batch); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	req.Version++
	if batch != nil {
		batch.Version++
	}
	return nil
}

func (r *postgresRepo) RecordDelivery(ctx context.Context, req *Request, inv *store.Inventory,
	invIsNew bool, st *store.Store, txn *store.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateRequestTx(ctx, tx, req); err != nil {
		return err
	}

	if invIsNew {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO store_inventories
			  (id, store_id, explosive_type, quantity, reserved_quantity, unit,
			   batch_number, supplier, expiry_date, last_restocked_at, version)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			inv.ID, inv.StoreID, inv.ExplosiveType, inv.Quantity, inv.ReservedQuantity, inv.Unit,
			inv.BatchNumber, inv.Supplier, inv.ExpiryDate, inv.LastRestockedAt, inv.Version)
		if err != nil {
			return fmt.Errorf("insert store inventory: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE store_inventories
			SET quantity=$1, batch_number=$2, supplier=$3, expiry_date=$4, last_restocked_at=$5,
			    version=version+1, updated_at=$6
			WHERE id=$7 AND version=$8`,
			inv.Quantity, inv.BatchNumber, inv.Supplier, inv.ExpiryDate, inv.LastRestockedAt,
			time.Now(), inv.ID, inv.Version)
		if err != nil {
			return fmt.Errorf("update store inventory: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.New(apperr.KindConflict, "store inventory was modified concurrently")
		}
	}

	res, err := tx.ExecContext(ctx, `
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
	req.Version++
	if !invIsNew {
		inv.Version++
	}
	st.Version++
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func updateRequestTx(ctx context.Context, tx *sql.Tx, req *Request) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE transfer_requests
		SET approved_quantity=$1, status=$2, approved_date=$3, dispatch_date=$4,
		    delivery_confirmed_date=$5, completed_date=$6, truck_number=$7, driver_name=$8,
		    driver_contact=$9, approved_by_user_id=$10, dispatched_by_user_id=$11,
		    processed_by_user_id=$12, rejection_reason=$13, notes=$14,
		    version=version+1, updated_at=$15
		WHERE id=$16 AND version=$17`,
		req.ApprovedQuantity, req.Status, req.ApprovedDate, req.DispatchDate,
		req.DeliveryConfirmedDate, req.CompletedDate, req.TruckNumber, req.DriverName,
		req.DriverContact, req.ApprovedByUserID, req.DispatchedByUserID,
		req.ProcessedByUserID, req.RejectionReason, req.Notes,
		time.Now(), req.ID, req.Version)
	if err != nil {
		return fmt.Errorf("update transfer request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindConflict,
			"transfer request %s was modified concurrently", req.RequestNumber)
	}
	return nil
}

func updateBatchTx(ctx context.Context, tx *sql.Tx, b *warehouse.Batch) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE central_warehouse_inventory
		SET quantity=$1, allocated_quantity=$2, status=$3, version=version+1, updated_at=$4
		WHERE id=$5 AND version=$6`,
		b.Quantity, b.AllocatedQuantity, b.Status, time.Now(), b.ID, b.Version)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindConflict, "batch %s was modified concurrently", b.BatchID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*Request, error) {
	req := &Request{}
	var approvedQty sql.NullFloat64
	var requiredBy, approvedAt, dispatchedAt, deliveredAt, completedAt sql.NullTime
	var truck, driver, contact, reason, notes sql.NullString
	var approvedBy, dispatchedBy, processedBy sql.NullString

	err := row.Scan(
		&req.ID, &req.RequestNumber, &req.BatchID, &req.DestinationStoreID, &req.RequestedQuantity,
		&approvedQty, &req.Unit, &req.Status, &req.RequestDate, &requiredBy, &approvedAt,
		&dispatchedAt, &deliveredAt, &completedAt, &truck, &driver, &contact,
		&req.RequestedByUserID, &approvedBy, &dispatchedBy, &processedBy,
		&reason, &notes, &req.Version, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if approvedQty.Valid {
		req.ApprovedQuantity = &approvedQty.Float64
	}
	for dst, src := range map[**time.Time]sql.NullTime{
		&req.RequiredByDate: requiredBy, &req.ApprovedDate: approvedAt,
		&req.DispatchDate: dispatchedAt, &req.DeliveryConfirmedDate: deliveredAt,
		&req.CompletedDate: completedAt,
	} {
		if src.Valid {
			t := src.Time
			*dst = &t
		}
	}
	req.TruckNumber = truck.String
	req.DriverName = driver.String
	req.DriverContact = contact.String
	req.RejectionReason = reason.String
	req.Notes = notes.String
	for dst, src := range map[**uuid.UUID]sql.NullString{
		&req.ApprovedByUserID: approvedBy, &req.DispatchedByUserID: dispatchedBy,
		&req.ProcessedByUserID: processedBy,
	} {
		if src.Valid {
			uid, err := uuid.Parse(src.String)
			if err == nil {
				*dst = &uid
			}
		}
	}
	return req, nil
}
