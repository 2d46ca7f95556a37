package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,min=2,max=120"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
	Quantity    int             `json:"quantity"    validate:"min=0"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"category_id" validate:"required,uuid"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=2,max=120"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"    validate:"omitempty,min=0"`
	Images      []string         `json:"images"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	CategoryID string `form:"category_id"`
	ArtisanID  string `form:"artisan_id"`
	MinPrice   string `form:"min_price"`
	MaxPrice   string `form:"max_price"`
	Search     string `form:"search"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Images      []string        `json:"images,omitempty"`
	CategoryID  string          `json:"category_id"`
	ArtisanID   string          `json:"artisan_id"`

	IsOnSale           bool             `json:"is_on_sale"`
	SalePrice          *decimal.Decimal `json:"sale_price,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	CurrentSaleID      *string          `json:"current_sale_id,omitempty"`

	// Derived via the pricing engine, never stored.
	EffectivePrice decimal.Decimal `json:"effective_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// PriceCheckResponse is returned by the public price endpoint (no auth required).
type PriceCheckResponse struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	IsOnSale       bool            `json:"is_on_sale"`
	QuantityLeft   int             `json:"quantity_left"`
}
