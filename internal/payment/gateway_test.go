package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v79"
)

func TestMetadataFromMap_AbsentKeys(t *testing.T) {
	md := MetadataFromMap(map[string]string{"cart_code": "cart-abc"})
	assert.Equal(t, "cart-abc", md.CartCode)
	assert.Empty(t, md.BuyerName)
	assert.Empty(t, md.PaymentMethod)
}

func TestMetadataFromMap_NilMap(t *testing.T) {
	md := MetadataFromMap(nil)
	assert.Empty(t, md.CartCode)
}

func TestFromStripeSession_EmailFallback(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:          "cs_test_123",
		AmountTotal: 127800,
		Currency:    stripe.CurrencyINR,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
		},
		Metadata: map[string]string{"cart_code": "cart-abc"},
	}

	got := fromStripeSession(sess)
	assert.Equal(t, "buyer@example.com", got.CustomerEmail)
	assert.Equal(t, "inr", got.Currency)
	assert.Equal(t, int64(127800), got.AmountTotal)
	assert.Equal(t, "cart-abc", got.Metadata.CartCode)
}

func TestFromStripeSession_ExplicitEmailWins(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:            "cs_test_123",
		CustomerEmail: "explicit@example.com",
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "details@example.com",
		},
	}

	got := fromStripeSession(sess)
	assert.Equal(t, "explicit@example.com", got.CustomerEmail)
}
