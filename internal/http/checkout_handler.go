package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/madstore/madstore-api/internal/domain"
	"github.com/madstore/madstore-api/internal/payment"
	"github.com/madstore/madstore-api/internal/service"
)

// CheckoutFinalizer is the slice of the checkout service these handlers use.
type CheckoutFinalizer interface {
	CreateCheckoutSession(ctx context.Context, cartCode string, data service.OrderData) (*payment.Session, error)
	FinalizeCheckout(ctx context.Context, sessionID string) (*domain.Order, bool, error)
	PlaceOrder(ctx context.Context, cartCode string, data service.OrderData) (*domain.Order, error)
}

type CheckoutHandler struct {
	svc     CheckoutFinalizer
	timeout time.Duration
}

func NewCheckoutHandler(svc CheckoutFinalizer, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		svc:     svc,
		timeout: timeout,
	}
}

type CreateSessionRequestDTO struct {
	CartCode      string `json:"cart_code"`
	Email         string `json:"email"`
	BuyerName     string `json:"buyer_name"`
	Phone         string `json:"phone"`
	AddressLine   string `json:"address_line"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	PaymentMethod string `json:"payment_method"`
}

func (d CreateSessionRequestDTO) orderData() service.OrderData {
	return service.OrderData{
		Email:         d.Email,
		BuyerName:     d.BuyerName,
		Phone:         d.Phone,
		AddressLine:   d.AddressLine,
		City:          d.City,
		State:         d.State,
		PostalCode:    d.PostalCode,
		Country:       d.Country,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
	}
}

type CheckoutSessionResponseDTO struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type FinalizeRequestDTO struct {
	SessionID string `json:"session_id"`
}

type OrderResponseDTO struct {
	Order   *domain.Order `json:"order"`
	Message string        `json:"message"`
}

// POST /api/v1/checkout/session
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CartCode == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_code", "cart_code is required")
		return
	}

	// COD skips the hosted payment page entirely.
	if domain.PaymentMethod(req.PaymentMethod) == domain.PaymentMethodCOD {
		order, err := h.svc.PlaceOrder(ctx, req.CartCode, req.orderData())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, OrderResponseDTO{
			Order:   order,
			Message: "Order placed successfully.",
		})
		return
	}

	sess, err := h.svc.CreateCheckoutSession(ctx, req.CartCode, req.orderData())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutSessionResponseDTO{
		SessionID: sess.ID,
		URL:       sess.URL,
	})
}

// POST /api/v1/checkout/finalize
func (h *CheckoutHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req FinalizeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, replayed, err := h.svc.FinalizeCheckout(ctx, req.SessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := "Order finalized."
	if replayed {
		message = "Order already finalized."
	}
	respondJSON(w, http.StatusOK, OrderResponseDTO{
		Order:   order,
		Message: message,
	})
}

// POST /api/v1/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CartCode == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_code", "cart_code is required")
		return
	}

	order, err := h.svc.PlaceOrder(ctx, req.CartCode, req.orderData())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, OrderResponseDTO{
		Order:   order,
		Message: "Order placed successfully.",
	})
}
