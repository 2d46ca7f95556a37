package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olatunbossun/craftcart/internal/apierror"
	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/model"
	"github.com/olatunbossun/craftcart/internal/pricing"
	"github.com/olatunbossun/craftcart/internal/repository"
)

var decimalHundred = decimal.NewFromInt(100)

const featuredLimit = 8

// ProductService defines the business logic contract for product listings.
// Sale fields on responses are read-only here: the display path never
// mutates them.
type ProductService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	ListFeatured(ctx context.Context, limit int) ([]dto.ProductResponse, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type productService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{repo: repo, categoryRepo: categoryRepo}
}

func (s *productService) Create(ctx context.Context, actor model.Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if actor.Role != model.RoleArtisan {
		return nil, apierror.Forbidden("only artisans can create products")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apierror.NewValidation("category_id", "must be a valid id")
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, apierror.NotFound("category")
	}
	if req.Price.IsNegative() {
		return nil, apierror.NewValidation("price", "must not be negative")
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Images:      req.Images,
		CategoryID:  categoryID,
		ArtisanID:   actor.ID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("product")
	}
	return toProductResponse(product), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *toProductResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) ListFeatured(ctx context.Context, limit int) ([]dto.ProductResponse, error) {
	if limit < 1 || limit > 50 {
		limit = featuredLimit
	}
	products, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *toProductResponse(&products[i]))
	}
	return items, nil
}

func (s *productService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("product")
	}
	if !actor.IsAdmin() && product.ArtisanID != actor.ID {
		return nil, apierror.Forbidden("not authorized to update this product")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apierror.NewValidation("price", "must not be negative")
		}
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apierror.NewValidation("category_id", "must be a valid id")
		}
		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			return nil, apierror.NotFound("category")
		}
		product.CategoryID = categoryID
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func (s *productService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("product")
	}
	if !actor.IsAdmin() && product.ArtisanID != actor.ID {
		return apierror.Forbidden("not authorized to delete this product")
	}
	return s.repo.Delete(ctx, id)
}

func toProductResponse(p *model.Product) *dto.ProductResponse {
	var currentSaleID *string
	if p.CurrentSaleID != nil {
		id := p.CurrentSaleID.String()
		currentSaleID = &id
	}
	return &dto.ProductResponse{
		ID:                 p.ID.String(),
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		Quantity:           p.Quantity,
		Images:             p.Images,
		CategoryID:         p.CategoryID.String(),
		ArtisanID:          p.ArtisanID.String(),
		IsOnSale:           p.IsOnSale,
		SalePrice:          p.SalePrice,
		DiscountPercentage: p.DiscountPercentage,
		CurrentSaleID:      currentSaleID,
		EffectivePrice:     pricing.EffectivePrice(p),
		DiscountAmount:     pricing.DiscountAmount(p),
	}
}
