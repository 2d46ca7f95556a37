package service

// Tests for the sale lifecycle: discount computation and denormalization on
// create, overlap rejection, ownership checks, recompute-on-update semantics
// and the explicit activate/deactivate/delete transitions.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/olatunbossun/craftcart/internal/apierror"
	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/model"
	"github.com/olatunbossun/craftcart/internal/repository"
)

// ── In-memory SaleRepository stub ────────────────────────────────────────────

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) put(s *model.Sale) {
	cloned := *s
	r.sales[s.ID] = &cloned
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.put(s)
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *s
	return &cloned, nil
}

func (r *stubSaleRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSaleRepo) ListActiveAt(_ context.Context, now time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.IsActive && !now.Before(s.StartDate) && !now.After(s.EndDate) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.ProductID == productID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) ListByArtisan(_ context.Context, artisanID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.ArtisanID == artisanID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) FindOverlappingTx(_ *gorm.DB, productID uuid.UUID, start, end time.Time) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.ProductID == productID && s.IsActive &&
			!s.StartDate.After(end) && !s.EndDate.Before(start) {
			cloned := *s
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) UpdateTx(_ *gorm.DB, s *model.Sale) error {
	if _, ok := r.sales[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.put(s)
	return nil
}

func (r *stubSaleRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.sales, id)
	return nil
}

func (r *stubSaleRepo) IncrementSoldTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.SoldQuantity += delta
	return nil
}

func (r *stubSaleRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.IsActive && s.EndDate.Before(now) {
			out = append(out, *s)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── In-memory ProductRepository stub ─────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) put(p *model.Product) {
	cloned := *p
	r.products[p.ID] = &cloned
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.put(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListFeatured(_ context.Context, limit int) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.put(p)
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) ApplySaleTx(_ *gorm.DB, id uuid.UUID, saleID uuid.UUID, salePrice, discountPct decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsOnSale = true
	p.CurrentSaleID = &saleID
	p.SalePrice = &salePrice
	p.DiscountPercentage = &discountPct
	return nil
}

func (r *stubProductRepo) UpdateSalePricingTx(_ *gorm.DB, id uuid.UUID, salePrice, discountPct decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.SalePrice = &salePrice
	p.DiscountPercentage = &discountPct
	return nil
}

func (r *stubProductRepo) ClearSaleTx(_ *gorm.DB, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsOnSale = false
	p.CurrentSaleID = nil
	p.SalePrice = nil
	p.DiscountPercentage = nil
	return nil
}

func (r *stubProductRepo) AdjustQuantityTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Quantity += delta
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Fixtures ─────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSaleService(saleRepo *stubSaleRepo, productRepo *stubProductRepo) *saleService {
	svc := NewSaleService(saleRepo, productRepo, nil).(*saleService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func seedProduct(t *testing.T, repo *stubProductRepo, artisanID uuid.UUID, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:         uuid.New(),
		Name:       "Hand-thrown vase",
		Price:      decimal.RequireFromString(price),
		Quantity:   10,
		CategoryID: uuid.New(),
		ArtisanID:  artisanID,
	}
	repo.put(p)
	return p
}

func validCreateReq(productID uuid.UUID, pct string) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		ProductID:          productID.String(),
		DiscountPercentage: decimal.RequireFromString(pct),
		StartDate:          testNow.Add(1 * time.Hour),
		EndDate:            testNow.Add(72 * time.Hour),
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreateSale_ComputesDiscountAndDenormalizes(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	resp, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	assert.Equal(t, "100", resp.OriginalPrice.String())
	assert.Equal(t, "25", resp.DiscountAmount.String())
	assert.Equal(t, "75", resp.SalePrice.String())
	assert.True(t, resp.IsActive)
	// Window opens an hour from now, so the sale is not in force yet.
	assert.False(t, resp.IsCurrentlyActive)

	stored := productRepo.products[product.ID]
	assert.True(t, stored.IsOnSale)
	require.NotNil(t, stored.SalePrice)
	assert.Equal(t, "75", stored.SalePrice.String())
	require.NotNil(t, stored.CurrentSaleID)
	assert.Equal(t, resp.ID, stored.CurrentSaleID.String())
}

func TestCreateSale_FullDiscountNeverNegative(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "49.99")

	svc := newTestSaleService(saleRepo, productRepo)
	resp, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "100"))
	require.NoError(t, err)
	assert.Equal(t, "0", resp.SalePrice.String())
}

func TestCreateSale_RejectsOverlappingWindow(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	_, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "10"))
	require.NoError(t, err)

	// Second window shares a single boundary instant with the first — still overlaps.
	req := validCreateReq(product.ID, "20")
	req.StartDate = testNow.Add(72 * time.Hour)
	req.EndDate = testNow.Add(96 * time.Hour)
	_, err = svc.Create(context.Background(), artisan, req)

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields["start_date"], "already has an active sale")
}

func TestCreateSale_AllowsDisjointWindows(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	_, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "10"))
	require.NoError(t, err)

	req := validCreateReq(product.ID, "20")
	req.StartDate = testNow.Add(73 * time.Hour)
	req.EndDate = testNow.Add(96 * time.Hour)
	_, err = svc.Create(context.Background(), artisan, req)
	require.NoError(t, err)
}

func TestCreateSale_RejectsInvalidPercentage(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")
	svc := newTestSaleService(saleRepo, productRepo)

	for _, pct := range []string{"101", "-1", "150.5"} {
		_, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, pct))
		var ve *apierror.ValidationError
		require.ErrorAs(t, err, &ve, "pct %s should be rejected", pct)
		assert.Contains(t, ve.Fields, "discount_percentage")
	}
}

func TestCreateSale_RejectsBadDates(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")
	svc := newTestSaleService(saleRepo, productRepo)

	// End before start
	req := validCreateReq(product.ID, "10")
	req.StartDate = testNow.Add(48 * time.Hour)
	req.EndDate = testNow.Add(24 * time.Hour)
	_, err := svc.Create(context.Background(), artisan, req)
	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "end_date")

	// Start in the past
	req = validCreateReq(product.ID, "10")
	req.StartDate = testNow.Add(-1 * time.Hour)
	_, err = svc.Create(context.Background(), artisan, req)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "start_date")
}

func TestCreateSale_RequiresOwnership(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	owner := uuid.New()
	product := seedProduct(t, productRepo, owner, "100.00")

	otherArtisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	svc := newTestSaleService(saleRepo, productRepo)
	_, err := svc.Create(context.Background(), otherArtisan, validCreateReq(product.ID, "10"))
	assert.ErrorIs(t, err, apierror.ErrForbidden)
}

func TestCreateSale_BuyerForbidden(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	product := seedProduct(t, productRepo, buyer.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	_, err := svc.Create(context.Background(), buyer, validCreateReq(product.ID, "10"))
	assert.ErrorIs(t, err, apierror.ErrForbidden)
}

func TestCreateSale_MissingProduct(t *testing.T) {
	svc := newTestSaleService(newStubSaleRepo(), newStubProductRepo())
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	_, err := svc.Create(context.Background(), artisan, validCreateReq(uuid.New(), "10"))
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestUpdateSale_RecomputesFromFrozenOriginalPrice(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	created, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	// The product's live price moves after the sale was created. The update
	// must recompute against the 100.00 snapshot, not the new 200.00.
	livePrice := decimal.RequireFromString("200.00")
	stored := productRepo.products[product.ID]
	stored.Price = livePrice

	newPct := decimal.RequireFromString("50")
	saleID := uuid.MustParse(created.ID)
	updated, err := svc.Update(context.Background(), artisan, saleID, dto.UpdateSaleRequest{
		DiscountPercentage: &newPct,
	})
	require.NoError(t, err)

	assert.Equal(t, "100", updated.OriginalPrice.String())
	assert.Equal(t, "50", updated.DiscountAmount.String())
	assert.Equal(t, "50", updated.SalePrice.String())

	// Denormalized pricing follows the recomputation.
	require.NotNil(t, stored.SalePrice)
	assert.Equal(t, "50", stored.SalePrice.String())
}

func TestUpdateSale_UnchangedDiscountLeavesPricing(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	created, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	desc := "spring clearance"
	saleID := uuid.MustParse(created.ID)
	updated, err := svc.Update(context.Background(), artisan, saleID, dto.UpdateSaleRequest{
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "75", updated.SalePrice.String())
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)
}

func TestUpdateSale_NonOwnerForbidden(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	created, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	stranger := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	saleID := uuid.MustParse(created.ID)
	_, err = svc.Update(context.Background(), stranger, saleID, dto.UpdateSaleRequest{})
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	// An admin may manage anyone's sale.
	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	_, err = svc.Update(context.Background(), admin, saleID, dto.UpdateSaleRequest{})
	assert.NoError(t, err)
}

func TestUpdateSale_RejectsInvalidPercentage(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	created, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	bad := decimal.RequireFromString("120")
	saleID := uuid.MustParse(created.ID)
	_, err = svc.Update(context.Background(), artisan, saleID, dto.UpdateSaleRequest{DiscountPercentage: &bad})
	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "discount_percentage")
}

// ── Activate / Deactivate / Delete ───────────────────────────────────────────

func TestDeactivateSale_ClearsProduct(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	created, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	saleID := uuid.MustParse(created.ID)
	resp, err := svc.Deactivate(context.Background(), artisan, saleID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.False(t, resp.IsCurrentlyActive)

	stored := productRepo.products[product.ID]
	assert.False(t, stored.IsOnSale)
	assert.Nil(t, stored.SalePrice)
	assert.Nil(t, stored.CurrentSaleID)
	assert.Nil(t, stored.DiscountPercentage)
}

func TestActivateSale_RestoresProductPricing(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	created, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	saleID := uuid.MustParse(created.ID)
	_, err = svc.Deactivate(context.Background(), artisan, saleID)
	require.NoError(t, err)

	resp, err := svc.Activate(context.Background(), artisan, saleID)
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	stored := productRepo.products[product.ID]
	assert.True(t, stored.IsOnSale)
	require.NotNil(t, stored.SalePrice)
	assert.Equal(t, "75", stored.SalePrice.String())
}

func TestActivateSale_SkipsOverlapCheck(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	first, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	firstID := uuid.MustParse(first.ID)
	_, err = svc.Deactivate(context.Background(), artisan, firstID)
	require.NoError(t, err)

	// A second sale now occupies the same window.
	_, err = svc.Create(context.Background(), artisan, validCreateReq(product.ID, "50"))
	require.NoError(t, err)

	// Reactivating the first succeeds regardless and wins the product's
	// denormalized slot.
	resp, err := svc.Activate(context.Background(), artisan, firstID)
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	stored := productRepo.products[product.ID]
	require.NotNil(t, stored.CurrentSaleID)
	assert.Equal(t, first.ID, stored.CurrentSaleID.String())
}

func TestDeleteSale_ClearsProductAndRemoves(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := newTestSaleService(saleRepo, productRepo)
	created, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "25"))
	require.NoError(t, err)

	saleID := uuid.MustParse(created.ID)
	require.NoError(t, svc.Delete(context.Background(), artisan, saleID))

	_, err = svc.Get(context.Background(), saleID)
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	stored := productRepo.products[product.ID]
	assert.False(t, stored.IsOnSale)
	assert.Nil(t, stored.CurrentSaleID)
}

func TestDeleteSale_NotFound(t *testing.T) {
	svc := newTestSaleService(newStubSaleRepo(), newStubProductRepo())
	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	err := svc.Delete(context.Background(), admin, uuid.New())
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func TestListActive_IgnoresQuantityCap(t *testing.T) {
	saleRepo := newStubSaleRepo()
	productRepo := newStubProductRepo()
	svc := newTestSaleService(saleRepo, productRepo)

	maxQty := 5
	sale := &model.Sale{
		ID:                 uuid.New(),
		ProductID:          uuid.New(),
		ArtisanID:          uuid.New(),
		DiscountPercentage: decimal.RequireFromString("20"),
		OriginalPrice:      decimal.RequireFromString("80.00"),
		DiscountAmount:     decimal.RequireFromString("16.00"),
		SalePrice:          decimal.RequireFromString("64.00"),
		StartDate:          testNow.Add(-24 * time.Hour),
		EndDate:            testNow.Add(24 * time.Hour),
		IsActive:           true,
		MaxQuantity:        &maxQty,
		SoldQuantity:       5, // cap exhausted
	}
	saleRepo.put(sale)

	// The exhausted sale still appears in the active listing, but its
	// derived flag reports it is no longer in force.
	resp, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.False(t, resp[0].IsCurrentlyActive)
}

func TestGetSale_ReportsCurrentlyActiveWithinWindow(t *testing.T) {
	saleRepo := newStubSaleRepo()
	svc := newTestSaleService(saleRepo, newStubProductRepo())

	sale := &model.Sale{
		ID:                 uuid.New(),
		ProductID:          uuid.New(),
		ArtisanID:          uuid.New(),
		DiscountPercentage: decimal.RequireFromString("10"),
		OriginalPrice:      decimal.RequireFromString("50.00"),
		DiscountAmount:     decimal.RequireFromString("5.00"),
		SalePrice:          decimal.RequireFromString("45.00"),
		StartDate:          testNow, // boundary instants are inclusive
		EndDate:            testNow.Add(24 * time.Hour),
		IsActive:           true,
	}
	saleRepo.put(sale)

	resp, err := svc.Get(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsCurrentlyActive)
}

// Guards the overlap error contract handlers depend on: anything except
// record-not-found from the overlap probe must abort the create.
func TestCreateSale_OverlapProbeFailurePropagates(t *testing.T) {
	saleRepo := &failingOverlapRepo{stubSaleRepo: newStubSaleRepo()}
	productRepo := newStubProductRepo()
	artisan := model.Actor{ID: uuid.New(), Role: model.RoleArtisan}
	product := seedProduct(t, productRepo, artisan.ID, "100.00")

	svc := NewSaleService(saleRepo, productRepo, nil).(*saleService)
	svc.now = func() time.Time { return testNow }

	_, err := svc.Create(context.Background(), artisan, validCreateReq(product.ID, "10"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Empty(t, saleRepo.sales)
}

type failingOverlapRepo struct {
	*stubSaleRepo
}

func (r *failingOverlapRepo) FindOverlappingTx(_ *gorm.DB, _ uuid.UUID, _, _ time.Time) (*model.Sale, error) {
	return nil, errors.New("connection reset")
}
