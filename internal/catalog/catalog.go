package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// The catalog is owned by the storefront; the payment core only reads it.

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrStoreInactive   = errors.New("store is not active")
	ErrProductNotFound = errors.New("product not found")
)

type StoreStatus string

const (
	StoreStatusActive StoreStatus = "active"
)

type Store struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	Name      string
	Slug      string
	Bio       string
	Logo      string
	Status    StoreStatus
	CreatedAt time.Time
}

// Active reports whether the store is publicly reachable. A missing status is
// treated as active for backwards compatibility with early seller rows.
func (s *Store) Active() bool {
	return s.Status == "" || s.Status == StoreStatusActive
}

type Product struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Name        string
	Description string
	Images      []string
	Price       int64 // minor units; 0 means unset
	Currency    string
	Status      string
	UpdatedAt   time.Time
}

//go:generate mockgen -source=catalog.go -destination=repository_mock.go -package=catalog
type Repository interface {
	StoreBySlug(ctx context.Context, slug string) (*Store, error)

	// PublishedProduct resolves a product only when it belongs to the store
	// and is in the published state.
	PublishedProduct(ctx context.Context, id, storeID uuid.UUID) (*Product, error)

	ProductsByStore(ctx context.Context, storeID uuid.UUID) ([]*Product, error)
	ListStores(ctx context.Context, page, limit int) ([]*Store, int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) StoreBySlug(ctx context.Context, slug string) (*Store, error) {
	return s.repo.StoreBySlug(ctx, slug)
}

// PublicStore resolves a store for the public storefront, enforcing the
// active check that checkout deliberately skips.
func (s *Service) PublicStore(ctx context.Context, slug string) (*Store, []*Product, error) {
	store, err := s.repo.StoreBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	if !store.Active() {
		return nil, nil, ErrStoreInactive
	}

	products, err := s.repo.ProductsByStore(ctx, store.ID)
	if err != nil {
		return nil, nil, err
	}

	return store, products, nil
}

func (s *Service) PublicProduct(ctx context.Context, slug string, productID uuid.UUID) (*Store, *Product, error) {
	store, err := s.repo.StoreBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	product, err := s.repo.PublishedProduct(ctx, productID, store.ID)
	if err != nil {
		return nil, nil, err
	}

	return store, product, nil
}

func (s *Service) PublishedProduct(ctx context.Context, id, storeID uuid.UUID) (*Product, error) {
	return s.repo.PublishedProduct(ctx, id, storeID)
}

func (s *Service) ListStores(ctx context.Context, page, limit int) ([]*Store, int, error) {
	if page < 1 {
		page = 1
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}

	return s.repo.ListStores(ctx, page, limit)
}
