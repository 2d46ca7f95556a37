package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olatunbossun/craftcart/internal/apierror"
	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/model"
	"github.com/olatunbossun/craftcart/internal/pricing"
	"github.com/olatunbossun/craftcart/internal/repository"
	"github.com/olatunbossun/craftcart/internal/worker"
)

type OrderService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.OrderResponse, error)
	ListMine(ctx context.Context, actor model.Actor) ([]dto.OrderResponse, error)
	ListAll(ctx context.Context, actor model.Actor) ([]dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status string) (*dto.OrderResponse, error)
}

type orderService struct {
	repo        repository.OrderRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	userRepo    repository.UserRepository
	dispatcher  *worker.Dispatcher
	now         func() time.Time
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	userRepo repository.UserRepository,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		repo:        repo,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Checkout charges the effective price: the sale price when the product's
// sale is in force at this instant, otherwise the list price. The sold
// counter on the applied sale is incremented, which is what eventually
// engages a sale's quantity cap. All writes commit in one transaction.

func (s *orderService) Create(ctx context.Context, actor model.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	var order model.Order

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(req.Items))

		for _, item := range req.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return apierror.NewValidation("product_id", "must be a valid id")
			}
			product, err := s.productRepo.FindForUpdateTx(tx, productID)
			if err != nil {
				return apierror.NotFound("product")
			}
			if product.Quantity < item.Quantity {
				return apierror.NewValidation("quantity", "not enough stock for "+product.Name)
			}

			unitPrice := product.Price
			if product.IsOnSale && product.CurrentSaleID != nil {
				sale, err := s.saleRepo.FindByIDTx(tx, *product.CurrentSaleID)
				if err == nil && pricing.IsCurrentlyActive(sale, s.now()) {
					unitPrice = sale.SalePrice
					if err := s.saleRepo.IncrementSoldTx(tx, sale.ID, item.Quantity); err != nil {
						return err
					}
				}
			}

			if err := s.productRepo.AdjustQuantityTx(tx, productID, -item.Quantity); err != nil {
				return err
			}

			items = append(items, model.OrderItem{
				ProductID:       productID,
				Quantity:        item.Quantity,
				PriceAtPurchase: unitPrice,
			})
			total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		order = model.Order{
			BuyerID: actor.ID,
			Total:   total,
			Status:  model.OrderPending,
			Items:   items,
		}
		return s.repo.CreateTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Receipt generation and email are async, best-effort.
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{OrderID: order.ID.String()}
		if buyer, err := s.userRepo.FindByID(ctx, actor.ID); err == nil {
			payload.BuyerEmail = buyer.Email
		}
		if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to enqueue receipt job")
		}
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("buyer_id", actor.ID.String()).
		Str("total", order.Total.String()).
		Msg("order created")
	return toOrderResponse(&order), nil
}

func (s *orderService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("order")
	}
	if !actor.IsAdmin() && order.BuyerID != actor.ID {
		return nil, apierror.Forbidden("not authorized to view this order")
	}
	return toOrderResponse(order), nil
}

func (s *orderService) ListMine(ctx context.Context, actor model.Actor) ([]dto.OrderResponse, error) {
	orders, err := s.repo.ListByBuyer(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

func (s *orderService) ListAll(ctx context.Context, actor model.Actor) ([]dto.OrderResponse, error) {
	if !actor.IsAdmin() {
		return nil, apierror.Forbidden("only admins can list all orders")
	}
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

func (s *orderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	if !actor.IsAdmin() {
		return nil, apierror.Forbidden("only admins can update order status")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, apierror.NotFound("order")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("order")
	}
	return toOrderResponse(order), nil
}

func toOrderResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.OrderItemResponse{
			ProductID:       item.ProductID.String(),
			ProductName:     name,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}
	return &dto.OrderResponse{
		ID:        o.ID.String(),
		BuyerID:   o.BuyerID.String(),
		Items:     items,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *toOrderResponse(&orders[i]))
	}
	return out
}
