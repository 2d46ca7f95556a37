package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSaleRequest struct {
	ProductID          string          `json:"product_id" validate:"required,uuid"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	StartDate          time.Time       `json:"start_date" validate:"required"`
	EndDate            time.Time       `json:"end_date"   validate:"required"`
	MaxQuantity        *int            `json:"max_quantity" validate:"omitempty,gt=0"`
	Description        *string         `json:"description"`
}

// UpdateSaleRequest applies only the provided fields. Activation state is
// not updatable here — activate/deactivate are explicit operations.
type UpdateSaleRequest struct {
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	StartDate          *time.Time       `json:"start_date"`
	EndDate            *time.Time       `json:"end_date"`
	MaxQuantity        *int             `json:"max_quantity" validate:"omitempty,gt=0"`
	Description        *string          `json:"description"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type SaleFilter struct {
	ProductID   string `form:"product_id"`
	ArtisanID   string `form:"artisan_id"`
	IsActive    *bool  `form:"is_active"`
	StartAfter  string `form:"start_after"`  // RFC 3339
	EndBefore   string `form:"end_before"`   // RFC 3339
	MinDiscount string `form:"min_discount"` // percent
	MaxDiscount string `form:"max_discount"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	ArtisanID          string          `json:"artisan_id"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	SalePrice          decimal.Decimal `json:"sale_price"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            time.Time       `json:"end_date"`
	IsActive           bool            `json:"is_active"`
	IsCurrentlyActive  bool            `json:"is_currently_active"`
	MaxQuantity        *int            `json:"max_quantity,omitempty"`
	SoldQuantity       int             `json:"sold_quantity"`
	Description        *string         `json:"description,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}
