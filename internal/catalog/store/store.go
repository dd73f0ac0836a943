package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) StoreBySlug(ctx context.Context, slug string) (*catalog.Store, error) {
	query := `
		SELECT id, seller_id, name, slug, COALESCE(bio, ''), COALESCE(logo, ''), COALESCE(status, ''), created_at
		FROM stores
		WHERE slug = $1
	`

	var st catalog.Store

	var statusStr string

	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&st.ID, &st.SellerID, &st.Name, &st.Slug, &st.Bio, &st.Logo, &statusStr, &st.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrStoreNotFound
		}

		return nil, fmt.Errorf("getting store by slug: %w", err)
	}

	st.Status = catalog.StoreStatus(statusStr)

	return &st, nil
}

func (s *Store) PublishedProduct(ctx context.Context, id, storeID uuid.UUID) (*catalog.Product, error) {
	query := `
		SELECT id, store_id, name, COALESCE(description, ''), COALESCE(images, '[]'::jsonb),
			COALESCE(price, 0), COALESCE(currency, 'KES'), status, updated_at
		FROM products
		WHERE id = $1 AND store_id = $2 AND status = 'published'
	`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id, storeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ProductsByStore(ctx context.Context, storeID uuid.UUID) ([]*catalog.Product, error) {
	query := `
		SELECT id, store_id, name, COALESCE(description, ''), COALESCE(images, '[]'::jsonb),
			COALESCE(price, 0), COALESCE(currency, 'KES'), status, updated_at
		FROM products
		WHERE store_id = $1 AND status = 'published'
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

func (s *Store) ListStores(ctx context.Context, page, limit int) ([]*catalog.Store, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stores WHERE status = 'active'",
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting stores: %w", err)
	}

	query := `
		SELECT id, seller_id, name, slug, COALESCE(bio, ''), COALESCE(logo, ''), COALESCE(status, ''), created_at
		FROM stores
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing stores: %w", err)
	}
	defer rows.Close()

	var stores []*catalog.Store

	for rows.Next() {
		var st catalog.Store

		var statusStr string

		if err := rows.Scan(
			&st.ID, &st.SellerID, &st.Name, &st.Slug, &st.Bio, &st.Logo, &statusStr, &st.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning store: %w", err)
		}

		st.Status = catalog.StoreStatus(statusStr)
		stores = append(stores, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating stores: %w", err)
	}

	return stores, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*catalog.Product, error) {
	var p catalog.Product

	var images []byte

	if err := s.Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Description, &images,
		&p.Price, &p.Currency, &p.Status, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("decoding product images: %w", err)
		}
	}

	return &p, nil
}
