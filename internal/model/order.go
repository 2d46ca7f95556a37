package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values.
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

// Order records a buyer's checkout. Each item snapshots the price actually
// charged (the effective price at purchase time), so later sale changes
// never rewrite order history.
type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BuyerID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status    string          `gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Buyer *User       `gorm:"foreignKey:BuyerID"`
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is one product line within an order.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        int             `gorm:"not null"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
