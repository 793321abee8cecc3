package transport

import (
	"errors"
	"net/http"

	"bowtique/internal/domain"
	"bowtique/internal/middleware"
	"bowtique/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest represents one cart line in the order payload. Price is
// the client's claimed unit price, kept for display only; the server total
// comes from the catalog.
type OrderItemRequest struct {
	SKU      string  `json:"sku" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// PlaceOrderRequest represents the order placement payload.
type PlaceOrderRequest struct {
	UserID          *string            `json:"user_id,omitempty" validate:"omitempty,uuid"`
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerName    string             `json:"customer_name" validate:"required"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	BillingAddress  string             `json:"billing_address" validate:"required"`
	Phone           *string            `json:"phone,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	ExpectedTotal   *float64           `json:"expected_total,omitempty" validate:"omitempty,gte=0"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateStatusRequest represents a status transition payload. Exactly one of
// the two fields should be set.
type UpdateStatusRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
}

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. The optional rate limiter
// guards order placement, the only write-heavy endpoint.
func (h *OrderHandler) RegisterRoutes(r chi.Router, placeOrderLimiter func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		if placeOrderLimiter != nil {
			r.With(placeOrderLimiter).Post("/", h.PlaceOrder)
		} else {
			r.Post("/", h.PlaceOrder)
		}
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
	r.Get("/api/users/{userID}/orders", h.ListUserOrders)
}

// PlaceOrder handles order placement.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order placement validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svcReq := &service.PlaceOrderRequest{
		CustomerEmail:   req.CustomerEmail,
		CustomerName:    req.CustomerName,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Phone:           req.Phone,
		Notes:           req.Notes,
		ExpectedTotal:   req.ExpectedTotal,
	}
	if req.UserID != nil {
		userID, err := uuid.Parse(*req.UserID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
			return
		}
		svcReq.UserID = &userID
	}
	for _, item := range req.Items {
		svcReq.Items = append(svcReq.Items, service.OrderLine{
			SKU:              item.SKU,
			Quantity:         item.Quantity,
			ClaimedUnitPrice: item.Price,
		})
	}

	order, err := h.orderService.PlaceOrder(r.Context(), svcReq)
	if err != nil {
		h.respondOrderError(w, err, "Order placement failed")
		return
	}

	h.logger.Info("Order created", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// GetOrder handles order retrieval by ID.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, err, "Failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListUserOrders handles listing a registered customer's orders.
func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	orders, err := h.orderService.ListOrdersForUser(r.Context(), userID)
	if err != nil {
		h.respondOrderError(w, err, "Failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles status transitions on either the fulfilment or the
// payment axis.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == nil && req.PaymentStatus == nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "status or payment_status is required")
		return
	}

	var order *domain.Order
	if req.Status != nil {
		order, err = h.orderService.UpdateOrderStatus(r.Context(), id, domain.OrderStatus(*req.Status))
	} else {
		order, err = h.orderService.UpdatePaymentStatus(r.Context(), id, domain.PaymentStatus(*req.PaymentStatus))
	}
	if err != nil {
		h.respondOrderError(w, err, "Failed to update order status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// respondOrderError maps domain errors onto HTTP status codes.
func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error, logMsg string) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		stockErr      *domain.InsufficientStockError
		mismatchErr   *domain.TotalMismatchError
		storageErr    *domain.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		middleware.RespondWithError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &stockErr):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, stockErr.Error(), map[string]interface{}{
			"sku":       stockErr.SKU,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &mismatchErr):
		middleware.RespondWithErrorDetails(w, http.StatusUnprocessableEntity, mismatchErr.Error(), map[string]interface{}{
			"claimed_total":  mismatchErr.Claimed,
			"computed_total": mismatchErr.Computed,
		})
	case errors.As(err, &storageErr):
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
