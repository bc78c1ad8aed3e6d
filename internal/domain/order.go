package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

type DeliveryStatus string

const (
	DeliveryStatusProcessing     DeliveryStatus = "Processing"
	DeliveryStatusShipped        DeliveryStatus = "Shipped"
	DeliveryStatusOutForDelivery DeliveryStatus = "Out for Delivery"
	DeliveryStatusDelivered      DeliveryStatus = "Delivered"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodCOD  PaymentMethod = "COD"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodCOD
}

type Order struct {
	ID             int64           `json:"-"`
	OrderID        string          `json:"order_id"`
	SessionID      string          `json:"-"` // provider checkout session id, idempotency key
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CustomerEmail  string          `json:"customer_email"`
	BuyerName      string          `json:"buyer_name"`
	Phone          string          `json:"phone"`
	AddressLine    string          `json:"address_line"`
	City           string          `json:"city"`
	State          string          `json:"state"`
	PostalCode     string          `json:"postal_code"`
	Country        string          `json:"country"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Status         PaymentStatus   `json:"status"`
	DeliveryStatus DeliveryStatus  `json:"delivery_status"`
	IsReceived     bool            `json:"is_received"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderItem is a snapshot of a cart line at order-creation time; the unit
// price is decoupled from later product price changes.
type OrderItem struct {
	ID          int64           `json:"-"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// NewOrderID generates a human-readable order identifier. Generation happens
// here, at construction time, not as a persistence hook.
func NewOrderID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("ORD-%s", strings.ToUpper(raw[:10]))
}
