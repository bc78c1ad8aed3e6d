package payment

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
	ErrMalformedEvent   = errors.New("malformed webhook event payload")
)

// Session is the provider's view of one checkout attempt. AmountTotal is in
// minor units (paise for INR, cents for USD).
type Session struct {
	ID            string
	URL           string
	CustomerEmail string
	Currency      string
	AmountTotal   int64
	Metadata      SessionMetadata
}

// SessionMetadata carries the buyer and delivery fields attached to the
// session at creation time. Absent keys decode to empty strings.
type SessionMetadata struct {
	CartCode      string
	BuyerName     string
	Phone         string
	AddressLine   string
	City          string
	State         string
	PostalCode    string
	Country       string
	PaymentMethod string
}

func MetadataFromMap(m map[string]string) SessionMetadata {
	return SessionMetadata{
		CartCode:      m["cart_code"],
		BuyerName:     m["buyer_name"],
		Phone:         m["phone"],
		AddressLine:   m["address_line"],
		City:          m["city"],
		State:         m["state"],
		PostalCode:    m["postal_code"],
		Country:       m["country"],
		PaymentMethod: m["payment_method"],
	}
}

func (m SessionMetadata) ToMap() map[string]string {
	return map[string]string{
		"cart_code":      m.CartCode,
		"buyer_name":     m.BuyerName,
		"phone":          m.Phone,
		"address_line":   m.AddressLine,
		"city":           m.City,
		"state":          m.State,
		"postal_code":    m.PostalCode,
		"country":        m.Country,
		"payment_method": m.PaymentMethod,
	}
}

const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Event is a verified webhook event. Session is populated only for the
// checkout event types above.
type Event struct {
	Type    string
	Session *Session
}

// LineItem is one entry of a checkout session under creation. UnitAmount is
// in minor units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CreateSessionInput struct {
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	Metadata      SessionMetadata
}

type Gateway interface {
	CreateSession(ctx context.Context, in *CreateSessionInput) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
}
