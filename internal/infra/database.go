package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/olatunbossun/craftcart/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies idempotent SQL patches for what AutoMigrate cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Sale{},
		&model.Review{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches adds DDL that GORM tags cannot express. Each statement
// is idempotent (IF NOT EXISTS) so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{
			// Partial index making "active sale per product within a window"
			// lookups cheap; the overlap check itself runs under a product
			// row lock, this just keeps it an index scan.
			"partial index on active sales per product",
			`CREATE INDEX IF NOT EXISTS idx_sales_active_window
			 ON sales (product_id, start_date, end_date) WHERE is_active = true`,
		},
		{
			"range guard on discount percentage",
			`DO $$ BEGIN
			   ALTER TABLE sales ADD CONSTRAINT chk_sales_discount_pct
			     CHECK (discount_percentage >= 0 AND discount_percentage <= 100);
			 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		},
		{
			"date order guard on sale windows",
			`DO $$ BEGIN
			   ALTER TABLE sales ADD CONSTRAINT chk_sales_date_order
			     CHECK (end_date > start_date);
			 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}
