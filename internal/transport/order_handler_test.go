package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bowtique/internal/domain"
	"bowtique/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stubOrderService lets each test script the service responses.
type stubOrderService struct {
	placeOrder          func(ctx context.Context, req *service.PlaceOrderRequest) (*domain.Order, error)
	getOrder            func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	listOrdersForUser   func(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	updateOrderStatus   func(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	updatePaymentStatus func(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, req *service.PlaceOrderRequest) (*domain.Order, error) {
	return s.placeOrder(ctx, req)
}

func (s *stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.getOrder(ctx, id)
}

func (s *stubOrderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.listOrdersForUser(ctx, userID)
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	return s.updateOrderStatus(ctx, id, status)
}

func (s *stubOrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error) {
	return s.updatePaymentStatus(ctx, id, status)
}

func newOrderRouter(svc service.OrderService) chi.Router {
	r := chi.NewRouter()
	handler := NewOrderHandler(svc, zap.NewNop())
	handler.RegisterRoutes(r, nil)
	return r
}

func sampleOrder() *domain.Order {
	now := time.Now().UTC()
	id := uuid.New()
	return &domain.Order{
		ID:              id,
		CustomerEmail:   "jo@example.com",
		CustomerName:    "Jo Customer",
		ShippingAddress: "1 Main St, Bowtown",
		BillingAddress:  "1 Main St, Bowtown",
		TotalAmount:     10.00,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Items: []domain.OrderItem{
			{ID: uuid.New(), OrderID: id, ProductSKU: "RIB-1", Quantity: 2, PriceAtTime: 5.00, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func placeOrderBody() []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"customer_email":   "jo@example.com",
		"customer_name":    "Jo Customer",
		"shipping_address": "1 Main St, Bowtown",
		"billing_address":  "1 Main St, Bowtown",
		"expected_total":   10.00,
		"items": []map[string]interface{}{
			{"sku": "RIB-1", "quantity": 2, "price": 5.00},
		},
	})
	return body
}

func TestPlaceOrderHandler_Created(t *testing.T) {
	order := sampleOrder()
	var captured *service.PlaceOrderRequest
	router := newOrderRouter(&stubOrderService{
		placeOrder: func(ctx context.Context, req *service.PlaceOrderRequest) (*domain.Order, error) {
			captured = req
			return order, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(placeOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured == nil || len(captured.Items) != 1 {
		t.Fatalf("service request not forwarded: %+v", captured)
	}
	if captured.Items[0].SKU != "RIB-1" || captured.Items[0].Quantity != 2 {
		t.Errorf("cart line mangled: %+v", captured.Items[0])
	}
	if captured.ExpectedTotal == nil || *captured.ExpectedTotal != 10.00 {
		t.Errorf("expected total not forwarded")
	}

	var got domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if got.ID != order.ID {
		t.Errorf("expected order %s in response, got %s", order.ID, got.ID)
	}
}

func TestPlaceOrderHandler_EmptyItems(t *testing.T) {
	router := newOrderRouter(&stubOrderService{
		placeOrder: func(ctx context.Context, req *service.PlaceOrderRequest) (*domain.Order, error) {
			t.Fatal("service must not be called for an invalid payload")
			return nil, nil
		},
	})

	body, _ := json.Marshal(map[string]interface{}{
		"customer_email":   "jo@example.com",
		"customer_name":    "Jo Customer",
		"shipping_address": "1 Main St, Bowtown",
		"billing_address":  "1 Main St, Bowtown",
		"items":            []map[string]interface{}{},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPlaceOrderHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        &domain.ValidationError{Field: "items", Message: "order must contain at least one item"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown product",
			err:        domain.NewProductNotFound("ZZZ-9"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "insufficient stock",
			err:        &domain.InsufficientStockError{SKU: "RIB-1", Requested: 3, Available: 2},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "total mismatch",
			err:        &domain.TotalMismatchError{Claimed: 9.99, Computed: 10.00},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "storage failure",
			err:        &domain.StorageError{Op: "create order", Err: errors.New("connection reset")},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newOrderRouter(&stubOrderService{
				placeOrder: func(ctx context.Context, req *service.PlaceOrderRequest) (*domain.Order, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(placeOrderBody()))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPlaceOrderHandler_StockDetailsInBody(t *testing.T) {
	router := newOrderRouter(&stubOrderService{
		placeOrder: func(ctx context.Context, req *service.PlaceOrderRequest) (*domain.Order, error) {
			return nil, &domain.InsufficientStockError{SKU: "RIB-1", Requested: 3, Available: 2}
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(placeOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp struct {
		Error struct {
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Error.Details["sku"] != "RIB-1" {
		t.Errorf("expected sku detail, got %v", resp.Error.Details)
	}
	if resp.Error.Details["available"] != float64(2) {
		t.Errorf("expected available detail 2, got %v", resp.Error.Details["available"])
	}
}

func TestGetOrderHandler(t *testing.T) {
	order := sampleOrder()
	router := newOrderRouter(&stubOrderService{
		getOrder: func(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
			if id != order.ID {
				return nil, domain.NewOrderNotFound(id.String())
			}
			return order, nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown order, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed ID, got %d", rec.Code)
	}
}

func TestListUserOrdersHandler(t *testing.T) {
	userID := uuid.New()
	router := newOrderRouter(&stubOrderService{
		listOrdersForUser: func(ctx context.Context, id uuid.UUID) ([]*domain.Order, error) {
			if id != userID {
				return []*domain.Order{}, nil
			}
			return []*domain.Order{sampleOrder()}, nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/orders", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var orders []domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(orders))
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	order := sampleOrder()
	order.Status = domain.OrderStatusShipped

	var gotStatus domain.OrderStatus
	var gotPayment domain.PaymentStatus
	router := newOrderRouter(&stubOrderService{
		updateOrderStatus: func(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
			gotStatus = status
			return order, nil
		},
		updatePaymentStatus: func(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error) {
			gotPayment = status
			return order, nil
		},
	})

	body := []byte(`{"status":"shipped"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+order.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotStatus != domain.OrderStatusShipped {
		t.Errorf("expected shipped forwarded, got %q", gotStatus)
	}

	body = []byte(`{"payment_status":"completed"}`)
	req = httptest.NewRequest(http.MethodPatch, "/api/orders/"+order.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPayment != domain.PaymentStatusCompleted {
		t.Errorf("expected completed forwarded, got %q", gotPayment)
	}
}

func TestUpdateStatusHandler_NeitherFieldSet(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+uuid.NewString()+"/status", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateStatusHandler_UnknownStatus(t *testing.T) {
	router := newOrderRouter(&stubOrderService{
		updateOrderStatus: func(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
			return nil, &domain.ValidationError{Field: "status", Message: "unknown order status"}
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+uuid.NewString()+"/status", bytes.NewReader([]byte(`{"status":"misplaced"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
