package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/model"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via mocks.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	// FindForUpdateTx takes a row lock, serializing sale creation per product.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	ApplySaleTx(tx *gorm.DB, id uuid.UUID, saleID uuid.UUID, salePrice, discountPct decimal.Decimal) error
	// UpdateSalePricingTx refreshes only the denormalized price pair,
	// leaving CurrentSaleID and IsOnSale untouched.
	UpdateSalePricingTx(tx *gorm.DB, id uuid.UUID, salePrice, discountPct decimal.Decimal) error
	ClearSaleTx(tx *gorm.DB, id uuid.UUID) error
	AdjustQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ArtisanID != "" {
		q = q.Where("artisan_id = ?", filter.ArtisanID)
	}
	if filter.MinPrice != "" {
		q = q.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != "" {
		q = q.Where("price <= ?", filter.MaxPrice)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *productRepo) ApplySaleTx(tx *gorm.DB, id uuid.UUID, saleID uuid.UUID, salePrice, discountPct decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"current_sale_id":     saleID,
		"sale_price":          salePrice,
		"discount_percentage": discountPct,
		"is_on_sale":          true,
	}).Error
}

func (r *productRepo) UpdateSalePricingTx(tx *gorm.DB, id uuid.UUID, salePrice, discountPct decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sale_price":          salePrice,
		"discount_percentage": discountPct,
	}).Error
}

func (r *productRepo) ClearSaleTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"current_sale_id":     nil,
		"sale_price":          nil,
		"discount_percentage": nil,
		"is_on_sale":          false,
	}).Error
}

func (r *productRepo) AdjustQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
