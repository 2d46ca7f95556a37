package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/olatunbossun/craftcart/internal/apierror"
	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/model"
	"github.com/olatunbossun/craftcart/internal/pricing"
	"github.com/olatunbossun/craftcart/internal/repository"
)

// SaleService manages the lifecycle of product sales. Every mutation keeps
// the owning product's denormalized sale fields consistent within the same
// transaction.
type SaleService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error)
	ListActive(ctx context.Context) ([]dto.SaleResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]dto.SaleResponse, error)
	ListByArtisan(ctx context.Context, artisanID uuid.UUID) ([]dto.SaleResponse, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	Activate(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.SaleResponse, error)
	Deactivate(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.SaleResponse, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type saleService struct {
	repo        repository.SaleRepository
	productRepo repository.ProductRepository
	rdb         *redis.Client
	now         func() time.Time
}

func NewSaleService(repo repository.SaleRepository, productRepo repository.ProductRepository, rdb *redis.Client) SaleService {
	return &saleService{repo: repo, productRepo: productRepo, rdb: rdb, now: time.Now}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// Full flow:
//  1. Validate role, percentage and dates (pre-flight, outside tx)
//  2. BEGIN TX: lock product row, check ownership, check window overlap
//  3. Snapshot originalPrice, compute discount fields, insert sale
//  4. Denormalize sale fields onto the product
//  5. COMMIT, then invalidate the product's price cache

func (s *saleService) Create(ctx context.Context, actor model.Actor, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if actor.Role != model.RoleArtisan {
		return nil, apierror.Forbidden("only artisans can create sales")
	}

	fields := map[string]string{}
	if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(decimalHundred) {
		fields["discount_percentage"] = "must be between 0 and 100"
	}
	if !req.StartDate.Before(req.EndDate) {
		fields["end_date"] = "must be after start date"
	}
	if req.StartDate.Before(s.now()) {
		fields["start_date"] = "cannot be in the past"
	}
	if len(fields) > 0 {
		return nil, &apierror.ValidationError{Fields: fields}
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.NewValidation("product_id", "must be a valid id")
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Row lock serializes concurrent creates against the same product, so
		// two requests cannot both pass the overlap check below.
		product, err := s.productRepo.FindForUpdateTx(tx, productID)
		if err != nil {
			return apierror.NotFound("product")
		}
		if product.ArtisanID != actor.ID {
			return apierror.Forbidden("you can only create sales for your own products")
		}

		if _, err := s.repo.FindOverlappingTx(tx, productID, req.StartDate, req.EndDate); err == nil {
			return apierror.NewValidation("start_date", "this product already has an active sale during the specified period")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		discountAmount, salePrice := pricing.ComputeDiscount(product.Price, req.DiscountPercentage)
		sale = model.Sale{
			ProductID:          productID,
			ArtisanID:          actor.ID,
			DiscountPercentage: req.DiscountPercentage,
			OriginalPrice:      product.Price,
			DiscountAmount:     discountAmount,
			SalePrice:          salePrice,
			StartDate:          req.StartDate,
			EndDate:            req.EndDate,
			IsActive:           true,
			MaxQuantity:        req.MaxQuantity,
			Description:        req.Description,
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		return s.productRepo.ApplySaleTx(tx, productID, sale.ID, sale.SalePrice, sale.DiscountPercentage)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidatePriceCache(ctx, productID)
	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("product_id", productID.String()).
		Str("sale_price", sale.SalePrice.String()).
		Msg("sale created")
	return s.toResponse(&sale), nil
}

// ── Update ────────────────────────────────────────────────────────────────────

func (s *saleService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale")
	}
	if err := authorizeSaleAccess(actor, sale); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if req.DiscountPercentage != nil &&
		(req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(decimalHundred)) {
		fields["discount_percentage"] = "must be between 0 and 100"
	}
	if req.StartDate != nil && req.EndDate != nil && !req.StartDate.Before(*req.EndDate) {
		fields["end_date"] = "must be after start date"
	}
	if len(fields) > 0 {
		return nil, &apierror.ValidationError{Fields: fields}
	}

	if req.StartDate != nil {
		sale.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		sale.EndDate = *req.EndDate
	}
	if req.MaxQuantity != nil {
		sale.MaxQuantity = req.MaxQuantity
	}
	if req.Description != nil {
		sale.Description = req.Description
	}

	discountChanged := req.DiscountPercentage != nil && !req.DiscountPercentage.Equal(sale.DiscountPercentage)
	if req.DiscountPercentage != nil {
		sale.DiscountPercentage = *req.DiscountPercentage
		// Recompute against the frozen price snapshot taken at creation, not
		// the product's live price.
		sale.DiscountAmount, sale.SalePrice = pricing.ComputeDiscount(sale.OriginalPrice, sale.DiscountPercentage)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, sale); err != nil {
			return err
		}
		if discountChanged {
			return s.productRepo.UpdateSalePricingTx(tx, sale.ProductID, sale.SalePrice, sale.DiscountPercentage)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if discountChanged {
		s.invalidatePriceCache(ctx, sale.ProductID)
	}
	return s.toResponse(sale), nil
}

// ── Activate / Deactivate ────────────────────────────────────────────────────

// Activate flips the sale on and re-applies its fields to the product.
// Overlap against other active sales is deliberately not re-checked here:
// reactivation always wins.
func (s *saleService) Activate(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale")
	}
	if err := authorizeSaleAccess(actor, sale); err != nil {
		return nil, err
	}

	sale.IsActive = true
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, sale); err != nil {
			return err
		}
		return s.productRepo.ApplySaleTx(tx, sale.ProductID, sale.ID, sale.SalePrice, sale.DiscountPercentage)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidatePriceCache(ctx, sale.ProductID)
	return s.toResponse(sale), nil
}

func (s *saleService) Deactivate(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale")
	}
	if err := authorizeSaleAccess(actor, sale); err != nil {
		return nil, err
	}

	sale.IsActive = false
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, sale); err != nil {
			return err
		}
		return s.productRepo.ClearSaleTx(tx, sale.ProductID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidatePriceCache(ctx, sale.ProductID)
	return s.toResponse(sale), nil
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (s *saleService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("sale")
	}
	if err := authorizeSaleAccess(actor, sale); err != nil {
		return err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.productRepo.ClearSaleTx(tx, sale.ProductID); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if txErr != nil {
		return txErr
	}

	s.invalidatePriceCache(ctx, sale.ProductID)
	log.Info().Str("sale_id", id.String()).Str("product_id", sale.ProductID.String()).Msg("sale deleted")
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale")
	}
	return s.toResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error) {
	sales, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.toResponses(sales), nil
}

// ListActive filters by flag and date window only; the per-record
// is_currently_active field in each response additionally reflects the
// quantity cap.
func (s *saleService) ListActive(ctx context.Context) ([]dto.SaleResponse, error) {
	sales, err := s.repo.ListActiveAt(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return s.toResponses(sales), nil
}

func (s *saleService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]dto.SaleResponse, error) {
	sales, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(sales), nil
}

func (s *saleService) ListByArtisan(ctx context.Context, artisanID uuid.UUID) ([]dto.SaleResponse, error) {
	sales, err := s.repo.ListByArtisan(ctx, artisanID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(sales), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// authorizeSaleAccess allows the owning artisan or an admin.
func authorizeSaleAccess(actor model.Actor, sale *model.Sale) error {
	if actor.IsAdmin() || sale.ArtisanID == actor.ID {
		return nil
	}
	return apierror.Forbidden("not authorized to manage this sale")
}

const priceCachePrefix = "price:"

// invalidatePriceCache drops the cached public price response — best effort.
func (s *saleService) invalidatePriceCache(ctx context.Context, productID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, priceCachePrefix+productID.String()).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("price cache invalidation failed")
	}
}

func (s *saleService) toResponse(sale *model.Sale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:                 sale.ID.String(),
		ProductID:          sale.ProductID.String(),
		ArtisanID:          sale.ArtisanID.String(),
		DiscountPercentage: sale.DiscountPercentage,
		OriginalPrice:      sale.OriginalPrice,
		DiscountAmount:     sale.DiscountAmount,
		SalePrice:          sale.SalePrice,
		StartDate:          sale.StartDate,
		EndDate:            sale.EndDate,
		IsActive:           sale.IsActive,
		IsCurrentlyActive:  pricing.IsCurrentlyActive(sale, s.now()),
		MaxQuantity:        sale.MaxQuantity,
		SoldQuantity:       sale.SoldQuantity,
		Description:        sale.Description,
		CreatedAt:          sale.CreatedAt,
	}
}

func (s *saleService) toResponses(sales []model.Sale) []dto.SaleResponse {
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, *s.toResponse(&sales[i]))
	}
	return out
}
