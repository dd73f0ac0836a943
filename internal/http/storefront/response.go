package storefront

import (
	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/catalog"
)

type storeResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	Bio  string    `json:"bio,omitempty"`
	Logo string    `json:"logo,omitempty"`
}

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
}

type storeListResponse struct {
	Stores []storeResponse `json:"stores"`
	Total  int             `json:"total"`
}

type storeDetailResponse struct {
	Store    storeResponse     `json:"store"`
	Products []productResponse `json:"products"`
}

type productDetailResponse struct {
	Store   storeResponse   `json:"store"`
	Product productResponse `json:"product"`
}

type checkoutResponse struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	PaymentLink   string `json:"payment_link"`
}

func toStoreResponse(s *catalog.Store) storeResponse {
	return storeResponse{
		ID:   s.ID,
		Name: s.Name,
		Slug: s.Slug,
		Bio:  s.Bio,
		Logo: s.Logo,
	}
}

func toStoreResponses(stores []*catalog.Store) []storeResponse {
	out := make([]storeResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, toStoreResponse(s))
	}

	return out
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Images:      p.Images,
		Price:       p.Price,
		Currency:    p.Currency,
	}
}

func toProductResponses(products []*catalog.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}

	return out
}
