package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks fulfilment progress of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether the value is a known fulfilment status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks the payment axis independently of fulfilment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Valid reports whether the value is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded:
		return true
	}
	return false
}

// Order is the persisted order aggregate. It is created exactly once,
// together with all of its items, by the order transaction; status updates
// are the only later mutations. TotalAmount is always the server-computed
// sum of PriceAtTime * Quantity over Items.
type Order struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	UserID          *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	CustomerEmail   string        `json:"customer_email" db:"customer_email"`
	CustomerName    string        `json:"customer_name" db:"customer_name"`
	ShippingAddress string        `json:"shipping_address" db:"shipping_address"`
	BillingAddress  string        `json:"billing_address" db:"billing_address"`
	Phone           *string       `json:"phone,omitempty" db:"phone"`
	Notes           *string       `json:"notes,omitempty" db:"notes"`
	TotalAmount     float64       `json:"total_amount" db:"total_amount"`
	Status          OrderStatus   `json:"status" db:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentIntentID *string       `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	Items           []OrderItem   `json:"items"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of an order. PriceAtTime is the catalog unit price
// captured when the order was placed and never changes afterwards, no matter
// what happens to the catalog price.
type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"order_id" db:"order_id"`
	ProductSKU  string    `json:"product_sku" db:"product_sku"`
	Quantity    int       `json:"quantity" db:"quantity"`
	PriceAtTime float64   `json:"price_at_time" db:"price_at_time"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
