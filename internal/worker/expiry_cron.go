package worker

// expiry_cron.go
// Periodically sweeps sales whose end date has passed, flips them inactive
// and clears the denormalized pricing from their product. The partial index
// on (is_active, end_date) keeps the sweep query cheap.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/olatunbossun/craftcart/internal/model"
	"github.com/olatunbossun/craftcart/internal/repository"
)

const expiryBatchSize = 100

// ExpiryCron deactivates sales past their end date.
type ExpiryCron struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	rdb         *redis.Client
	interval    time.Duration
}

func NewExpiryCron(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, rdb *redis.Client, interval time.Duration) *ExpiryCron {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpiryCron{saleRepo: saleRepo, productRepo: productRepo, rdb: rdb, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.
func (c *ExpiryCron) Start(ctx context.Context) {
	log.Info().Dur("interval", c.interval).Msg("expiry_cron: started")
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiry_cron: stopped")
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep deactivates one batch of expired sales. Exported so tests and the
// startup path can trigger a pass without waiting for the ticker.
func (c *ExpiryCron) Sweep(ctx context.Context) {
	expired, err := c.saleRepo.ListExpired(ctx, time.Now().UTC(), expiryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("expiry_cron: listing expired sales failed")
		return
	}
	if len(expired) == 0 {
		return
	}

	deactivated := 0
	for i := range expired {
		sale := &expired[i]
		if err := c.expire(ctx, sale); err != nil {
			log.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("expiry_cron: deactivation failed")
			continue
		}
		deactivated++
	}
	log.Info().Int("count", deactivated).Msg("expiry_cron: expired sales deactivated")
}

func (c *ExpiryCron) expire(ctx context.Context, sale *model.Sale) error {
	deactivate := func(tx *gorm.DB) error {
		sale.IsActive = false
		if err := c.saleRepo.UpdateTx(tx, sale); err != nil {
			return err
		}
		return c.productRepo.ClearSaleTx(tx, sale.ProductID)
	}

	var txErr error
	if db := c.saleRepo.DB(); db != nil {
		txErr = db.WithContext(ctx).Transaction(deactivate)
	} else {
		txErr = deactivate(nil)
	}
	if txErr != nil {
		return txErr
	}

	if c.rdb != nil {
		if err := c.rdb.Del(ctx, "price:"+sale.ProductID.String()).Err(); err != nil {
			log.Warn().Err(err).Str("product_id", sale.ProductID.String()).Msg("expiry_cron: price cache invalidation failed")
		}
	}
	return nil
}
