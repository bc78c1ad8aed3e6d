package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/madstore/madstore-api/internal/domain"
)

func (r *Repository) ListProducts(ctx context.Context, featuredOnly bool) ([]domain.Product, error) {
	query := `SELECT id, name, slug, description, price, featured, created_at
	          FROM products`
	if featuredOnly {
		query += ` WHERE featured = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT id, name, slug, description, price, featured, created_at
	          FROM products WHERE slug = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Featured, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by slug: %w", err)
	}
	return &p, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, name, slug, description, price, featured, created_at
	          FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Featured, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return &p, nil
}

func (r *Repository) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	q := `SELECT id, name, slug, description, price, featured, created_at
	      FROM products
	      WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
	      ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Featured, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}
