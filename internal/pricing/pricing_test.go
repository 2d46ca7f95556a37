package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/olatunbossun/craftcart/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeDiscount(t *testing.T) {
	cases := []struct {
		name       string
		price, pct string
		wantAmount string
		wantSale   string
	}{
		{"quarter off", "100.00", "25", "25", "75"},
		{"half off", "100.00", "50", "50", "50"},
		{"zero percent", "80.00", "0", "0", "80"},
		{"full discount", "80.00", "100", "80", "0"},
		{"zero price", "0", "40", "0", "0"},
		{"fractional", "19.99", "15", "2.9985", "17.0015"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, sale := ComputeDiscount(dec(tc.price), dec(tc.pct))
			assert.True(t, dec(tc.wantAmount).Equal(amount), "discount amount: want %s got %s", tc.wantAmount, amount)
			assert.True(t, dec(tc.wantSale).Equal(sale), "sale price: want %s got %s", tc.wantSale, sale)
		})
	}
}

func TestComputeDiscount_SalePriceNeverNegative(t *testing.T) {
	for _, pct := range []string{"0", "13.5", "50", "99.99", "100"} {
		_, sale := ComputeDiscount(dec("49.90"), dec(pct))
		assert.False(t, sale.IsNegative(), "pct=%s produced negative sale price %s", pct, sale)
	}
}

func TestIsCurrentlyActive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cap3 := 3

	base := func() *model.Sale {
		return &model.Sale{
			IsActive:  true,
			StartDate: now.Add(-24 * time.Hour),
			EndDate:   now.Add(24 * time.Hour),
		}
	}

	t.Run("active within window", func(t *testing.T) {
		assert.True(t, IsCurrentlyActive(base(), now))
	})

	t.Run("flag off", func(t *testing.T) {
		s := base()
		s.IsActive = false
		assert.False(t, IsCurrentlyActive(s, now))
	})

	t.Run("before window regardless of flag", func(t *testing.T) {
		s := base()
		s.StartDate = now.Add(time.Hour)
		s.EndDate = now.Add(48 * time.Hour)
		assert.False(t, IsCurrentlyActive(s, now))
	})

	t.Run("after window regardless of flag", func(t *testing.T) {
		s := base()
		s.StartDate = now.Add(-48 * time.Hour)
		s.EndDate = now.Add(-time.Hour)
		assert.False(t, IsCurrentlyActive(s, now))
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		s := base()
		assert.True(t, IsCurrentlyActive(s, s.StartDate))
		assert.True(t, IsCurrentlyActive(s, s.EndDate))
	})

	t.Run("quantity cap exhausted", func(t *testing.T) {
		s := base()
		s.MaxQuantity = &cap3
		s.SoldQuantity = 3
		assert.False(t, IsCurrentlyActive(s, now))
	})

	t.Run("quantity cap not yet reached", func(t *testing.T) {
		s := base()
		s.MaxQuantity = &cap3
		s.SoldQuantity = 2
		assert.True(t, IsCurrentlyActive(s, now))
	})

	t.Run("nil cap means uncapped", func(t *testing.T) {
		s := base()
		s.SoldQuantity = 100000
		assert.True(t, IsCurrentlyActive(s, now))
	})
}

func TestEffectivePrice(t *testing.T) {
	sale := dec("75.00")

	p := &model.Product{Price: dec("100.00")}
	assert.True(t, dec("100.00").Equal(EffectivePrice(p)))
	assert.True(t, DiscountAmount(p).IsZero())

	p.IsOnSale = true
	p.SalePrice = &sale
	assert.True(t, dec("75.00").Equal(EffectivePrice(p)))
	assert.True(t, dec("25.00").Equal(DiscountAmount(p)))

	// On-sale flag without a stored sale price falls back to list price.
	p.SalePrice = nil
	assert.True(t, dec("100.00").Equal(EffectivePrice(p)))
	assert.True(t, DiscountAmount(p).IsZero())
}
