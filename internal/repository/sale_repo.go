package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/model"
)

// SaleRepository defines data access for sales. Methods suffixed Tx run
// inside a caller-supplied transaction so sale and product writes commit
// atomically.
type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// FindByIDTx reads through the transaction so the row is seen under the
	// locks the caller already holds.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error)
	// ListActiveAt returns sales whose flag is set and whose window contains
	// now. Deliberately does not apply the quantity cap — the per-record
	// derived flag does.
	ListActiveAt(ctx context.Context, now time.Time) ([]model.Sale, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Sale, error)
	ListByArtisan(ctx context.Context, artisanID uuid.UUID) ([]model.Sale, error)
	// FindOverlappingTx returns an active sale on the product whose
	// [start,end] window intersects the given one, or gorm.ErrRecordNotFound.
	FindOverlappingTx(tx *gorm.DB, productID uuid.UUID, start, end time.Time) (*model.Sale, error)
	UpdateTx(tx *gorm.DB, s *model.Sale) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	IncrementSoldTx(tx *gorm.DB, id uuid.UUID, delta int) error
	// ListExpired returns active sales whose window closed before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Sale, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *saleRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.First(&s, id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.ArtisanID != "" {
		q = q.Where("artisan_id = ?", filter.ArtisanID)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.StartAfter != "" {
		q = q.Where("start_date >= ?", filter.StartAfter)
	}
	if filter.EndBefore != "" {
		q = q.Where("end_date <= ?", filter.EndBefore)
	}
	if filter.MinDiscount != "" {
		q = q.Where("discount_percentage >= ?", filter.MinDiscount)
	}
	if filter.MaxDiscount != "" {
		q = q.Where("discount_percentage <= ?", filter.MaxDiscount)
	}

	err := q.Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListActiveAt(ctx context.Context, now time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("is_active = true AND start_date <= ? AND end_date >= ?", now, now).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListByArtisan(ctx context.Context, artisanID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Where("artisan_id = ?", artisanID).
		Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindOverlappingTx(tx *gorm.DB, productID uuid.UUID, start, end time.Time) (*model.Sale, error) {
	var s model.Sale
	// Two windows intersect when neither ends before the other begins.
	err := tx.Where("product_id = ? AND is_active = true AND start_date <= ? AND end_date >= ?",
		productID, end, start).First(&s).Error
	return &s, err
}

func (r *saleRepo) UpdateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Save(s).Error
}

func (r *saleRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Sale{}, id).Error
}

func (r *saleRepo) IncrementSoldTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).
		Update("sold_quantity", gorm.Expr("sold_quantity + ?", delta)).Error
}

func (r *saleRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("is_active = true AND end_date < ?", now).
		Limit(limit).Find(&sales).Error
	return sales, err
}

func (r *saleRepo) DB() *gorm.DB { return r.db }
