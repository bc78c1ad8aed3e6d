package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madstore/madstore-api/internal/domain"
)

type CartManager interface {
	GetCart(ctx context.Context, code string) (*domain.Cart, error)
	AddItem(ctx context.Context, code string, productID int64) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error
}

type CartHandler struct {
	svc     CartManager
	timeout time.Duration
}

func NewCartHandler(svc CartManager, timeout time.Duration) *CartHandler {
	return &CartHandler{
		svc:     svc,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	CartCode  string `json:"cart_code"`
	ProductID int64  `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartStatResponseDTO struct {
	NumOfItems int `json:"num_of_items"`
}

// GET /api/v1/cart/{cart_code}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := chi.URLParam(r, "cart_code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_code", "cart_code is required")
		return
	}

	cart, err := h.svc.GetCart(ctx, code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// GET /api/v1/cart/{cart_code}/stat
func (h *CartHandler) GetCartStat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := chi.URLParam(r, "cart_code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_code", "cart_code is required")
		return
	}

	cart, err := h.svc.GetCart(ctx, code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	total := 0
	for _, item := range cart.Items {
		total += item.Quantity
	}
	respondJSON(w, http.StatusOK, CartStatResponseDTO{NumOfItems: total})
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.CartCode == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_code", "cart_code is required")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	cart, err := h.svc.AddItem(ctx, req.CartCode, req.ProductID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

// PUT /api/v1/cart/items/{item_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.svc.UpdateItemQuantity(ctx, itemID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Quantity updated."})
}

// DELETE /api/v1/cart/items/{item_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveItem(ctx, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed."})
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	itemIDStr := chi.URLParam(r, "item_id")
	itemID, err := strconv.ParseInt(itemIDStr, 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return 0, false
	}
	return itemID, true
}
