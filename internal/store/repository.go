package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// keyColumns is the business key rows are upserted on.
var keyColumns = []string{"tenant_id", "electronic_order_id", "delivery_number"}

// Writer persists batches of rows.
type Writer interface {
	UpsertBatch(ctx context.Context, rows []OrderRecord) (int64, error)
}

// Ensure Repository implements Writer.
var _ Writer = (*Repository)(nil)

// Repository wraps all operations on the procurement_entries table.
type Repository struct {
	db *gorm.DB
}

// InitDB opens a PostgreSQL connection pool.
// dsn format: "host=localhost user=postgres password=secret dbname=procfeed port=5432 sslmode=disable".
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// NewRepository creates a repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate creates or updates the table and its unique key index.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&OrderRecord{}); err != nil {
		return fmt.Errorf("failed to migrate procurement_entries: %w", err)
	}

	return nil
}

// UpsertBatch inserts rows, overwriting every non-key column of rows whose business
// key already exists. rows must not repeat a key.
func (r *Repository) UpsertBatch(ctx context.Context, rows []OrderRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Clauses(upsertClause()).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to upsert %d rows: %w", len(rows), res.Error)
	}

	return res.RowsAffected, nil
}

// CountByTenant returns the number of rows stored for tenantID.
func (r *Repository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var n int64

	err := r.db.WithContext(ctx).
		Model(&OrderRecord{}).
		Where("tenant_id = ?", tenantID).
		Count(&n).Error

	return n, err
}

// FindByOrder returns every delivery stored for one electronic order.
func (r *Repository) FindByOrder(ctx context.Context, tenantID, orderID string) ([]OrderRecord, error) {
	var rows []OrderRecord

	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND electronic_order_id = ?", tenantID, orderID).
		Order("delivery_number").
		Find(&rows).Error

	return rows, err
}

func upsertClause() clause.OnConflict {
	columns := make([]clause.Column, len(keyColumns))
	for i, name := range keyColumns {
		columns[i] = clause.Column{Name: name}
	}

	return clause.OnConflict{
		Columns:   columns,
		DoUpdates: clause.AssignmentColumns(updatableColumns()),
	}
}

// updatableColumns lists every column an upsert overwrites.
func updatableColumns() []string {
	return []string{
		"framework_agreement_code",
		"procurement_method",
		"purchase_type",
		"order_status",
		"physical_order_ref",
		"scanned_order_link",
		"supplier_tax_id",
		"supplier_name",
		"supplier_address",
		"buyer_tax_id",
		"buyer_name",
		"executing_unit",
		"catalog_id",
		"category",
		"product_description",
		"brand",
		"part_number",
		"product_sheet_link",
		"delivery_department",
		"delivery_province",
		"delivery_district",
		"delivery_address",
		"quantity_delivered",
		"unit_price",
		"subtotal",
		"tax_amount",
		"total_amount",
		"total_deliveries",
		"delivery_term_days",
		"publication_date",
		"acceptance_date",
		"delivery_start_date",
		"delivery_end_date",
		"updated_at",
	}
}
