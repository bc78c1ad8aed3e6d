package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/madstore/madstore-api/internal/domain"
)

// CreateOrder inserts the order row and its line snapshots inside the given
// transaction. A unique violation on the checkout session id means another
// invocation for the same session won the race; that surfaces as
// ErrDuplicateSession so the caller can return the winning order instead.
func (r *Repository) CreateOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	sessionID := sql.NullString{String: order.SessionID, Valid: order.SessionID != ""}

	query := `INSERT INTO orders
	          (order_id, checkout_session_id, subtotal, delivery_charge, amount, currency,
	           customer_email, buyer_name, phone, address_line, city, state, postal_code,
	           country, payment_method, status, delivery_status, is_received, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	          RETURNING id`

	err := tx.QueryRowContext(ctx, query,
		order.OrderID,
		sessionID,
		order.Subtotal,
		order.DeliveryCharge,
		order.Amount,
		order.Currency,
		order.CustomerEmail,
		order.BuyerName,
		order.Phone,
		order.AddressLine,
		order.City,
		order.State,
		order.PostalCode,
		order.Country,
		order.PaymentMethod,
		order.Status,
		order.DeliveryStatus,
		order.IsReceived,
		order.CreatedAt,
	).Scan(&order.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "orders_checkout_session_id_key" {
			return ErrDuplicateSession
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (r *Repository) UpdateOrderAmount(ctx context.Context, tx *sql.Tx, id int64, currency string, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET currency = $1, amount = $2 WHERE id = $3`, currency, amount, id)
	if err != nil {
		return fmt.Errorf("update order amount: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return r.getOrder(ctx, `checkout_session_id = $1`, sessionID)
}

func (r *Repository) GetOrderByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getOrder(ctx, `order_id = $1`, orderID)
}

func (r *Repository) ListOrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, orderSelect+` WHERE customer_email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("query orders by email: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		if err := r.loadOrderItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) MarkOrderReceived(ctx context.Context, orderID string) (*domain.Order, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET is_received = TRUE, delivery_status = $1 WHERE order_id = $2`,
		domain.DeliveryStatusDelivered, orderID)
	if err != nil {
		return nil, fmt.Errorf("mark order received: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetOrderByOrderID(ctx, orderID)
}

const orderSelect = `SELECT id, order_id, checkout_session_id, subtotal, delivery_charge, amount,
       currency, customer_email, buyer_name, phone, address_line, city, state, postal_code,
       country, payment_method, status, delivery_status, is_received, created_at
       FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var sessionID sql.NullString
	err := row.Scan(
		&order.ID,
		&order.OrderID,
		&sessionID,
		&order.Subtotal,
		&order.DeliveryCharge,
		&order.Amount,
		&order.Currency,
		&order.CustomerEmail,
		&order.BuyerName,
		&order.Phone,
		&order.AddressLine,
		&order.City,
		&order.State,
		&order.PostalCode,
		&order.Country,
		&order.PaymentMethod,
		&order.Status,
		&order.DeliveryStatus,
		&order.IsReceived,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.SessionID = sessionID.String
	return &order, nil
}

func (r *Repository) getOrder(ctx context.Context, where string, arg any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	if err := r.loadOrderItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) loadOrderItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, product_name, quantity, unit_price
		 FROM order_items WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	order.Items = items
	return nil
}
