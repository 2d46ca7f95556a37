package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is an artisan listing. The sale-state block (IsOnSale, SalePrice,
// DiscountPercentage, CurrentSaleID) is denormalized from the product's
// active Sale for read efficiency and is mutated only by the sale lifecycle
// operations — never by the display path.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"index;not null"`
	Description string    `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity    int             `gorm:"not null;default:0"`
	Images      []string        `gorm:"serializer:json"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	ArtisanID   uuid.UUID       `gorm:"type:uuid;index;not null"`

	// Denormalized sale state. Invariant: when IsOnSale is true, SalePrice,
	// DiscountPercentage and CurrentSaleID are all set and consistent with
	// the referenced Sale.
	IsOnSale           bool             `gorm:"not null;default:false"`
	SalePrice          *decimal.Decimal `gorm:"type:decimal(10,2)"`
	DiscountPercentage *decimal.Decimal `gorm:"type:decimal(5,2)"`
	CurrentSaleID      *uuid.UUID       `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
	Artisan  *User     `gorm:"foreignKey:ArtisanID"`
}
