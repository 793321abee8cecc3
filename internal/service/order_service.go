package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"bowtique/internal/domain"
	"bowtique/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLine is one requested cart entry. ClaimedUnitPrice is what the client
// believes the item costs; it is never used for money math, only the catalog
// price is.
type OrderLine struct {
	SKU              string
	Quantity         int
	ClaimedUnitPrice float64
}

// PlaceOrderRequest carries everything needed to place an order. UserID is
// set for registered customers and nil for guests; contact fields are
// required either way. ExpectedTotal, when set, is checked against the
// server-computed total.
type PlaceOrderRequest struct {
	UserID          *uuid.UUID
	CustomerEmail   string
	CustomerName    string
	ShippingAddress string
	BillingAddress  string
	Phone           *string
	Notes           *string
	ExpectedTotal   *float64
	Items           []OrderLine
}

// OrderService places orders and manages their status lifecycle.
type OrderService interface {
	PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error)
}

type orderService struct {
	txm         repository.TxManager
	catalogRepo repository.CatalogRepository
	orderRepo   repository.OrderRepository
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	txm repository.TxManager,
	catalogRepo repository.CatalogRepository,
	orderRepo repository.OrderRepository,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		txm:         txm,
		catalogRepo: catalogRepo,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// PlaceOrder validates the cart against the catalog, recomputes the total
// from catalog prices, decrements stock and persists the order with its
// items — all inside one transaction. On any failure nothing is written:
// earlier stock decrements of the same attempt roll back with the rest.
//
// The per-item stock reads are advisory; the conditional decrement is the
// authoritative check, so two concurrent orders over the same SKU cannot
// both succeed when combined demand exceeds stock.
func (s *orderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	var order *domain.Order

	err := s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		catalog := s.catalogRepo.WithTx(tx)

		now := time.Now()
		orderID := uuid.New()
		items := make([]domain.OrderItem, 0, len(req.Items))
		var totalCents int64

		for _, line := range req.Items {
			product, err := catalog.FindBySKU(ctx, line.SKU)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return domain.NewProductNotFound(line.SKU)
				}
				return &domain.StorageError{Op: "look up product", Err: err}
			}

			if product.Quantity < line.Quantity {
				return &domain.InsufficientStockError{
					SKU:       line.SKU,
					Requested: line.Quantity,
					Available: product.Quantity,
				}
			}

			totalCents += domain.Cents(product.Price) * int64(line.Quantity)
			items = append(items, domain.OrderItem{
				ID:          uuid.New(),
				OrderID:     orderID,
				ProductSKU:  line.SKU,
				Quantity:    line.Quantity,
				PriceAtTime: product.Price,
				CreatedAt:   now,
			})
		}

		total := domain.FromCents(totalCents)
		if req.ExpectedTotal != nil {
			if math.Abs(*req.ExpectedTotal-total) > domain.TotalTolerance {
				return &domain.TotalMismatchError{
					Claimed:  *req.ExpectedTotal,
					Computed: total,
				}
			}
		}

		for _, line := range req.Items {
			if err := catalog.DecrementStock(ctx, line.SKU, line.Quantity); err != nil {
				var insufficient *domain.InsufficientStockError
				if errors.As(err, &insufficient) {
					return insufficient
				}
				if errors.Is(err, repository.ErrProductNotFound) {
					return domain.NewProductNotFound(line.SKU)
				}
				return &domain.StorageError{Op: "decrement stock", Err: err}
			}
		}

		order = &domain.Order{
			ID:              orderID,
			UserID:          req.UserID,
			CustomerEmail:   req.CustomerEmail,
			CustomerName:    req.CustomerName,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			Phone:           req.Phone,
			Notes:           req.Notes,
			TotalAmount:     total,
			Status:          domain.OrderStatusPending,
			PaymentStatus:   domain.PaymentStatusPending,
			Items:           items,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return &domain.StorageError{Op: "create order", Err: err}
		}
		if err := s.orderRepo.CreateItems(ctx, tx, order.Items); err != nil {
			return &domain.StorageError{Op: "create order items", Err: err}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Int("item_count", len(order.Items)),
		zap.Float64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetOrder retrieves an order with its items.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domain.NewOrderNotFound(id.String())
		}
		return nil, &domain.StorageError{Op: "find order", Err: err}
	}
	return order, nil
}

// ListOrdersForUser retrieves a registered customer's orders, newest first.
func (s *orderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &domain.StorageError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// UpdateOrderStatus sets the fulfilment status and returns the updated
// order. The new status must be a known value, but any known value may
// replace any other; prior-state legality is deliberately not enforced so
// staff can correct mishandled orders.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: "unknown order status"}
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domain.NewOrderNotFound(id.String())
		}
		return nil, &domain.StorageError{Op: "update order status", Err: err}
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)

	return s.GetOrder(ctx, id)
}

// UpdatePaymentStatus sets the payment status and returns the updated order.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "payment_status", Message: "unknown payment status"}
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domain.NewOrderNotFound(id.String())
		}
		return nil, &domain.StorageError{Op: "update payment status", Err: err}
	}

	s.logger.Info("Payment status updated",
		zap.String("order_id", id.String()),
		zap.String("payment_status", string(status)),
	)

	return s.GetOrder(ctx, id)
}

func validatePlaceOrder(req *PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return &domain.ValidationError{Field: "items", Message: "order must contain at least one item"}
	}
	for _, line := range req.Items {
		if strings.TrimSpace(line.SKU) == "" {
			return &domain.ValidationError{Field: "items", Message: "item SKU must not be empty"}
		}
		if line.Quantity <= 0 {
			return &domain.ValidationError{Field: "items", Message: "item quantity must be positive"}
		}
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return &domain.ValidationError{Field: "customer_email", Message: "customer email is required"}
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return &domain.ValidationError{Field: "customer_name", Message: "customer name is required"}
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return &domain.ValidationError{Field: "shipping_address", Message: "shipping address is required"}
	}
	if strings.TrimSpace(req.BillingAddress) == "" {
		return &domain.ValidationError{Field: "billing_address", Message: "billing address is required"}
	}
	return nil
}
