package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/catalog"
	"github.com/sokopay/sokopay/internal/fees"
	"github.com/sokopay/sokopay/internal/transaction"
)

var (
	ErrMissingBuyer = errors.New("buyer name and phone are required")
	// ErrPriceNotSet means the product exists but cannot be checked out.
	ErrPriceNotSet = errors.New("product price not set")
)

// PlatformConfig supplies the platform-level defaults applied at checkout.
// The fee percentage is read fresh on every checkout.
type PlatformConfig interface {
	PlatformFeePercent() float64
}

type CreateParams struct {
	StoreSlug       string
	ProductID       uuid.UUID
	BuyerName       string
	BuyerPhone      string
	BuyerEmail      string
	PaymentMethod   string
	DeliveryAddress string
}

// Result is the persisted transaction plus the payment link the buyer is
// sent to for evidence submission.
type Result struct {
	Transaction *transaction.Transaction
	PaymentLink string
}

// Service bridges the storefront catalog to the payment core: it turns a
// product into a pending transaction with the product fields snapshotted.
type Service struct {
	catalog catalog.Repository
	txRepo  transaction.Repository
	cfg     PlatformConfig
}

func NewService(catalogRepo catalog.Repository, txRepo transaction.Repository, cfg PlatformConfig) *Service {
	return &Service{catalog: catalogRepo, txRepo: txRepo, cfg: cfg}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Result, error) {
	if strings.TrimSpace(params.BuyerName) == "" || strings.TrimSpace(params.BuyerPhone) == "" {
		return nil, ErrMissingBuyer
	}

	store, err := s.catalog.StoreBySlug(ctx, params.StoreSlug)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.PublishedProduct(ctx, params.ProductID, store.ID)
	if err != nil {
		return nil, err
	}

	if product.Price <= 0 {
		return nil, ErrPriceNotSet
	}

	feePercent := s.cfg.PlatformFeePercent()
	fee, payout := fees.Compute(product.Price, feePercent)

	paymentMethod := params.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "MPESA"
	}

	productID := product.ID
	tx := &transaction.Transaction{
		ID:              transaction.NewID(),
		SellerID:        store.SellerID,
		ProductID:       &productID,
		ItemName:        product.Name,
		ItemDescription: product.Description,
		ItemImages:      slices.Clone(product.Images),
		Amount:          product.Price,
		Currency:        product.Currency,
		BuyerName:       params.BuyerName,
		BuyerPhone:      params.BuyerPhone,
		BuyerEmail:      params.BuyerEmail,
		BuyerAddress:    params.DeliveryAddress,
		PaymentMethod:   paymentMethod,
		PlatformFee:     fee,
		SellerPayout:    payout,
		FeePercent:      feePercent,
		Status:          transaction.StatusPending,
	}

	if err := s.txRepo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return &Result{
		Transaction: tx,
		PaymentLink: "/pay/" + tx.ID,
	}, nil
}
