package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a time-limited discount on exactly one product, owned by the
// artisan who created it. OriginalPrice is a snapshot of the product price
// at creation; DiscountAmount and SalePrice are derived from it:
//
//	DiscountAmount = OriginalPrice * DiscountPercentage / 100
//	SalePrice      = max(0, OriginalPrice - DiscountAmount)
//
// IsActive is an explicit flag independent of the date window. Whether the
// sale is in force right now is a derived question answered by
// pricing.IsCurrentlyActive against the current clock, never stored.
type Sale struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID          uuid.UUID       `gorm:"type:uuid;index:idx_sales_product_active;not null"`
	ArtisanID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	OriginalPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SalePrice          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StartDate          time.Time       `gorm:"index;not null"`
	EndDate            time.Time       `gorm:"index;not null"`
	IsActive           bool            `gorm:"index:idx_sales_product_active;not null;default:true"`
	Description        *string
	// MaxQuantity caps how many units may sell at the sale price; nil = uncapped.
	MaxQuantity  *int
	SoldQuantity int `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Artisan *User    `gorm:"foreignKey:ArtisanID"`
}
