package service

// Checkout tests: effective price selection, sold-counter accounting against
// the sale's quantity cap, stock checks and access control.

import (
	"context"
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

// ── In-memory OrderRepository stub ───────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	cloned := *o
	r.orders[o.ID] = &cloned
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *o
	return &cloned, nil
}

func (r *stubOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubOrderRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── In-memory UserRepository stub ────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *u
	return &cloned, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Fixtures ─────────────────────────────────────────────────────────────────

type orderTestEnv struct {
	svc         *orderService
	orderRepo   *stubOrderRepo
	productRepo *stubProductRepo
	saleRepo    *stubSaleRepo
	userRepo    *stubUserRepo
}

func newOrderTestEnv() *orderTestEnv {
	env := &orderTestEnv{
		orderRepo:   newStubOrderRepo(),
		productRepo: newStubProductRepo(),
		saleRepo:    newStubSaleRepo(),
		userRepo:    newStubUserRepo(),
	}
	env.svc = NewOrderService(env.orderRepo, env.productRepo, env.saleRepo, env.userRepo, nil).(*orderService)
	env.svc.now = func() time.Time { return testNow }
	return env
}

// seedLiveSale attaches an in-force 25% sale to the product.
func seedLiveSale(env *orderTestEnv, product *model.Product, maxQty *int) *model.Sale {
	sale := &model.Sale{
		ID:                 uuid.New(),
		ProductID:          product.ID,
		ArtisanID:          product.ArtisanID,
		DiscountPercentage: decimal.RequireFromString("25"),
		OriginalPrice:      product.Price,
		DiscountAmount:     product.Price.Mul(decimal.RequireFromString("0.25")),
		SalePrice:          product.Price.Mul(decimal.RequireFromString("0.75")),
		StartDate:          testNow.Add(-24 * time.Hour),
		EndDate:            testNow.Add(24 * time.Hour),
		IsActive:           true,
		MaxQuantity:        maxQty,
	}
	env.saleRepo.put(sale)

	stored := env.productRepo.products[product.ID]
	stored.IsOnSale = true
	stored.CurrentSaleID = &sale.ID
	stored.SalePrice = &sale.SalePrice
	stored.DiscountPercentage = &sale.DiscountPercentage
	return sale
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreateOrder_ChargesEffectivePrice(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	product := seedProduct(t, env.productRepo, uuid.New(), "100.00")
	seedLiveSale(env, product, nil)

	resp, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: product.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, "150", resp.Total.String())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "75", resp.Items[0].PriceAtPurchase.String())
	assert.Equal(t, model.OrderPending, resp.Status)

	// Stock decremented, sold counter advanced.
	assert.Equal(t, 8, env.productRepo.products[product.ID].Quantity)
	assert.Equal(t, 2, env.saleRepo.sales[*env.productRepo.products[product.ID].CurrentSaleID].SoldQuantity)
}

// poolReadSaleRepo fails the pooled-connection lookup so only the tx-scoped
// read can resolve the sale.
type poolReadSaleRepo struct{ *stubSaleRepo }

func (r *poolReadSaleRepo) FindByID(context.Context, uuid.UUID) (*model.Sale, error) {
	return nil, gorm.ErrInvalidTransaction
}

func TestCreateOrder_ResolvesSaleInsideTransaction(t *testing.T) {
	env := newOrderTestEnv()
	env.svc.saleRepo = &poolReadSaleRepo{env.saleRepo}
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	product := seedProduct(t, env.productRepo, uuid.New(), "100.00")
	seedLiveSale(env, product, nil)

	resp, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	// The sale still applies: checkout reads it under the product row lock,
	// not over the pooled connection.
	assert.Equal(t, "75", resp.Total.String())
}

func TestCreateOrder_ListPriceWhenSaleExhausted(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	product := seedProduct(t, env.productRepo, uuid.New(), "100.00")

	maxQty := 3
	sale := seedLiveSale(env, product, &maxQty)
	env.saleRepo.sales[sale.ID].SoldQuantity = 3 // cap reached

	resp, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	// Cap exhausted: buyer pays list price and the counter stays put.
	assert.Equal(t, "100", resp.Total.String())
	assert.Equal(t, 3, env.saleRepo.sales[sale.ID].SoldQuantity)
}

func TestCreateOrder_ListPriceOutsideWindow(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	product := seedProduct(t, env.productRepo, uuid.New(), "100.00")

	sale := seedLiveSale(env, product, nil)
	// Window closed yesterday but the denormalized fields are still present
	// (the expiry sweep has not run yet).
	env.saleRepo.sales[sale.ID].EndDate = testNow.Add(-1 * time.Hour)

	resp, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "100", resp.Total.String())
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	product := seedProduct(t, env.productRepo, uuid.New(), "100.00")

	_, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: product.ID.String(), Quantity: 11}},
	})
	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "quantity")
	// Nothing persisted.
	assert.Empty(t, env.orderRepo.orders)
	assert.Equal(t, 10, env.productRepo.products[product.ID].Quantity)
}

func TestCreateOrder_MissingProduct(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	_, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestCreateOrder_MixedCart(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	onSale := seedProduct(t, env.productRepo, uuid.New(), "100.00")
	seedLiveSale(env, onSale, nil)
	regular := seedProduct(t, env.productRepo, uuid.New(), "40.00")

	resp, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{ProductID: onSale.ID.String(), Quantity: 1},
			{ProductID: regular.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)
	// 75 + 2*40
	assert.Equal(t, "155", resp.Total.String())
}

// ── Access control ───────────────────────────────────────────────────────────

func TestGetOrder_OwnerOnly(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	product := seedProduct(t, env.productRepo, uuid.New(), "10.00")

	created, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	_, err = env.svc.Get(context.Background(), buyer, orderID)
	assert.NoError(t, err)

	stranger := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	_, err = env.svc.Get(context.Background(), stranger, orderID)
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	_, err = env.svc.Get(context.Background(), admin, orderID)
	assert.NoError(t, err)
}

func TestListAllOrders_AdminOnly(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	_, err := env.svc.ListAll(context.Background(), buyer)
	assert.ErrorIs(t, err, apierror.ErrForbidden)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newOrderTestEnv()
	buyer := model.Actor{ID: uuid.New(), Role: model.RoleBuyer}
	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	product := seedProduct(t, env.productRepo, uuid.New(), "10.00")

	created, err := env.svc.Create(context.Background(), buyer, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	resp, err := env.svc.UpdateStatus(context.Background(), admin, orderID, model.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, resp.Status)

	_, err = env.svc.UpdateStatus(context.Background(), buyer, orderID, model.OrderPaid)
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	_, err = env.svc.UpdateStatus(context.Background(), admin, uuid.New(), model.OrderPaid)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}
