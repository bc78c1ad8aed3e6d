package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/madstore/madstore-api/internal/domain"
)

func (r *Repository) GetCartByCode(ctx context.Context, code string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, created_at, updated_at FROM carts WHERE code = $1`, code).Scan(
		&cart.ID, &cart.Code, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart by code: %w", err)
	}

	items, err := r.loadCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

// GetOrCreateCart fetches the cart for a code, creating an empty one on
// first reference.
func (r *Repository) GetOrCreateCart(ctx context.Context, code string) (*domain.Cart, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO carts (code) VALUES ($1) ON CONFLICT (code) DO NOTHING`, code)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return r.GetCartByCode(ctx, code)
}

// AddCartItem inserts a line for the product or bumps its quantity when the
// product is already in the cart.
func (r *Repository) AddCartItem(ctx context.Context, code string, productID int64) (*domain.Cart, error) {
	cart, err := r.GetOrCreateCart(ctx, code)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = quantity + 1 WHERE cart_id = $1 AND product_id = $2`,
		cart.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("bump cart item quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, 1)`,
			cart.ID, productID)
		if err != nil {
			return nil, fmt.Errorf("insert cart item: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("touch cart: %w", err)
	}

	return r.GetCartByCode(ctx, code)
}

// UpdateCartItemQuantity sets the quantity for a line and reports the code
// of the owning cart so callers can invalidate its cache entry.
func (r *Repository) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) (string, error) {
	var code string
	err := r.db.QueryRowContext(ctx,
		`UPDATE cart_items ci SET quantity = $1
		 FROM carts c
		 WHERE ci.id = $2 AND c.id = ci.cart_id
		 RETURNING c.code`, quantity, itemID).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCartItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("update cart item quantity: %w", err)
	}
	return code, nil
}

func (r *Repository) RemoveCartItem(ctx context.Context, itemID int64) (string, error) {
	var code string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM cart_items ci
		 USING carts c
		 WHERE ci.id = $1 AND c.id = ci.cart_id
		 RETURNING c.code`, itemID).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCartItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete cart item: %w", err)
	}
	return code, nil
}

// DeleteCart removes the cart; its lines go with it via the cascade.
func (r *Repository) DeleteCart(ctx context.Context, tx *sql.Tx, cartID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// loadCartItems reads lines in insertion order with the current product
// price joined in; the price is never stored on the line.
func (r *Repository) loadCartItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}
