package warehouse

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

// NewPostgresRepository creates a new PostgreSQL warehouse repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const batchColumns = `id, batch_id, explosive_type, quantity, allocated_quantity, unit,
	manufacturing_date, expiry_date, supplier, storage_location, status, is_active, version,
	created_at, updated_at`

// Create inserts the batch and its technical-properties satellite in one transaction.
func (r *postgresRepo) Create(ctx context.Context, b *Batch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO central_warehouse_inventory
		  (id, batch_id, explosive_type, quantity, allocated_quantity, unit,
		   manufacturing_date, expiry_date, supplier, storage_location, status, is_active, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		b.ID, b.BatchID, b.ExplosiveType, b.Quantity, b.AllocatedQuantity, b.Unit,
		b.ManufacturingDate, b.ExpiryDate, b.Supplier, b.StorageLocation, b.Status, b.IsActive, b.Version)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	if b.ANFO != nil {
		if err := upsertANFO(ctx, tx, b.ANFO); err != nil {
			return err
		}
	}
	if b.Emulsion != nil {
		if err := upsertEmulsion(ctx, tx, b.Emulsion); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Batch, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "invalid batch id %q", id)
	}
	return r.getOne(ctx, `SELECT `+batchColumns+` FROM central_warehouse_inventory WHERE id=$1 AND is_active`, uid)
}

func (r *postgresRepo) GetByBatchID(ctx context.Context, batchID string) (*Batch, error) {
	return r.getOne(ctx, `SELECT `+batchColumns+` FROM central_warehouse_inventory WHERE batch_id=$1 AND is_active`, batchID)
}

func (r *postgresRepo) getOne(ctx context.Context, query string, arg interface{}) (*Batch, error) {
	b, err := scanBatch(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "batch not found")
		}
		return nil, err
	}
	if err := r.loadProperties(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Batch, int, error) {
	where := ` WHERE is_active`
	args := []interface{}{}
	n := 0
	if f.ExplosiveType != "" {
		n++
		where += fmt.Sprintf(` AND explosive_type=$%d`, n)
		args = append(args, f.ExplosiveType)
	}
	if f.Status != "" {
		n++
		where += fmt.Sprintf(` AND status=$%d`, n)
		args = append(args, f.Status)
	}
	if f.ExpiringWithinDays > 0 {
		n++
		where += fmt.Sprintf(` AND expiry_date <= $%d AND expiry_date > now()`, n)
		args = append(args, time.Now().AddDate(0, 0, f.ExpiringWithinDays))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM central_warehouse_inventory`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	query := `SELECT ` + batchColumns + ` FROM central_warehouse_inventory` + where +
		fmt.Sprintf(` ORDER BY expiry_date ASC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, err
		}
		batches = append(batches, b)
	}
	return batches, total, rows.Err()
}

// Update persists ledger and status mutations with a version compare-and-swap.
func (r *postgresRepo) Update(ctx context.Context, b *Batch) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE central_warehouse_inventory
		SET quantity=$1, allocated_quantity=$2, status=$3, storage_location=$4,
		    is_active=$5, version=version+1, updated_at=$6
		WHERE id=$7 AND version=$8`,
		b.Quantity, b.AllocatedQuantity, b.Status, b.StorageLocation,
		b.IsActive, time.Now(), b.ID, b.Version)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.KindConflict, "batch %s was modified concurrently", b.BatchID)
	}
	b.Version++
	return nil
}

func (r *postgresRepo) SaveANFOProperties(ctx context.Context, p *explosive.ANFOProperties) error {
	return upsertANFO(ctx, r.db, p)
}

func (r *postgresRepo) SaveEmulsionProperties(ctx context.Context, p *explosive.EmulsionProperties) error {
	return upsertEmulsion(ctx, r.db, p)
}

// ── helpers ──────────────────────────────────────────────────────────────────

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertANFO(ctx context.Context, db execer, p *explosive.ANFOProperties) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO anfo_technical_properties
		  (id, batch_id, density, fuel_oil_content, storage_temperature, storage_humidity,
		   moisture_content, prill_size, detonation_velocity, quality_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (batch_id) DO UPDATE SET
		  density=EXCLUDED.density, fuel_oil_content=EXCLUDED.fuel_oil_content,
		  storage_temperature=EXCLUDED.storage_temperature, storage_humidity=EXCLUDED.storage_humidity,
		  moisture_content=EXCLUDED.moisture_content, prill_size=EXCLUDED.prill_size,
		  detonation_velocity=EXCLUDED.detonation_velocity, quality_status=EXCLUDED.quality_status,
		  updated_at=now()`,
		p.ID, p.BatchID, p.Density, p.FuelOilContent, p.StorageTemperature, p.StorageHumidity,
		p.MoistureContent, p.PrillSize, p.DetonationVelocity, p.QualityStatus)
	if err != nil {
		return fmt.Errorf("save anfo properties: %w", err)
	}
	return nil
}

func upsertEmulsion(ctx context.Context, db execer, p *explosive.EmulsionProperties) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO emulsion_technical_properties
		  (id, batch_id, density_unsensitized, density_sensitized, viscosity, water_content, ph,
		   storage_temperature, detonation_velocity, bubble_size, application_temperature,
		   phase_separation, crystallization, color_consistency, quality_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (batch_id) DO UPDATE SET
		  density_unsensitized=EXCLUDED.density_unsensitized, density_sensitized=EXCLUDED.density_sensitized,
		  viscosity=EXCLUDED.viscosity, water_content=EXCLUDED.water_content, ph=EXCLUDED.ph,
		  storage_temperature=EXCLUDED.storage_temperature, detonation_velocity=EXCLUDED.detonation_velocity,
		  bubble_size=EXCLUDED.bubble_size, application_temperature=EXCLUDED.application_temperature,
		  phase_separation=EXCLUDED.phase_separation, crystallization=EXCLUDED.crystallization,
		  color_consistency=EXCLUDED.color_consistency, quality_status=EXCLUDED.quality_status,
		  updated_at=now()`,
		p.ID, p.BatchID, p.DensityUnsensitized, p.DensitySensitized, p.Viscosity, p.WaterContent, p.PH,
		p.StorageTemperature, p.DetonationVelocity, p.BubbleSize, p.ApplicationTemperature,
		p.PhaseSeparation, p.Crystallization, p.ColorConsistency, p.QualityStatus)
	if err != nil {
		return fmt.Errorf("save emulsion properties: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row rowScanner) (*Batch, error) {
	b := &Batch{}
	var storageLocation sql.NullString
	err := row.Scan(
		&b.ID, &b.BatchID, &b.ExplosiveType, &b.Quantity, &b.AllocatedQuantity, &b.Unit,
		&b.ManufacturingDate, &b.ExpiryDate, &b.Supplier, &storageLocation, &b.Status,
		&b.IsActive, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.StorageLocation = storageLocation.String
	return b, nil
}

func (r *postgresRepo) loadProperties(ctx context.Context, b *Batch) error {
	switch b.ExplosiveType {
	case explosive.TypeANFO:
		p := &explosive.ANFOProperties{}
		err := r.db.QueryRowContext(ctx, `
			SELECT id, batch_id, density, fuel_oil_content, storage_temperature, storage_humidity,
			       moisture_content, prill_size, detonation_velocity, quality_status, created_at, updated_at
			FROM anfo_technical_properties WHERE batch_id=$1`, b.ID).Scan(
			&p.ID, &p.BatchID, &p.Density, &p.FuelOilContent, &p.StorageTemperature, &p.StorageHumidity,
			&p.MoistureContent, &p.PrillSize, &p.DetonationVelocity, &p.QualityStatus, &p.CreatedAt, &p.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		b.ANFO = p
	case explosive.TypeEmulsion:
		p := &explosive.EmulsionProperties{}
		err := r.db.QueryRowContext(ctx, `
			SELECT id, batch_id, density_unsensitized, density_sensitized, viscosity, water_content, ph,
			       storage_temperature, detonation_velocity, bubble_size, application_temperature,
			       phase_separation, crystallization, color_consistency, quality_status, created_at, updated_at
			FROM emulsion_technical_properties WHERE batch_id=$1`, b.ID).Scan(
			&p.ID, &p.BatchID, &p.DensityUnsensitized, &p.DensitySensitized, &p.Viscosity, &p.WaterContent, &p.PH,
			&p.StorageTemperature, &p.DetonationVelocity, &p.BubbleSize, &p.ApplicationTemperature,
			&p.PhaseSeparation, &p.Crystallization, &p.ColorConsistency, &p.QualityStatus, &p.CreatedAt, &p.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		b.Emulsion = p
	}
	return nil
}
