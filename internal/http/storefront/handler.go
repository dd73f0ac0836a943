package storefront

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/catalog"
	"github.com/sokopay/sokopay/internal/checkout"
	"github.com/sokopay/sokopay/internal/http/respond"
	"github.com/sokopay/sokopay/internal/metrics"
)

type Handler struct {
	catalogSvc  *catalog.Service
	checkoutSvc *checkout.Service
}

func NewHandler(catalogSvc *catalog.Service, checkoutSvc *checkout.Service) *Handler {
	return &Handler{catalogSvc: catalogSvc, checkoutSvc: checkoutSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/stores", h.listStores)
	r.Get("/store/{storeSlug}", h.getStore)
	r.Get("/product/{storeSlug}/{productID}", h.getProduct)
	r.Post("/checkout/{storeSlug}/{productID}", h.checkout)
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	stores, total, err := h.catalogSvc.ListStores(r.Context(), page, limit)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, storeListResponse{
		Stores: toStoreResponses(stores),
		Total:  total,
	})
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "storeSlug")

	store, products, err := h.catalogSvc.PublicStore(r.Context(), slug)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, storeDetailResponse{
		Store:    toStoreResponse(store),
		Products: toProductResponses(products),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	store, product, err := h.catalogSvc.PublicProduct(r.Context(), chi.URLParam(r, "storeSlug"), productID)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, productDetailResponse{
		Store:   toStoreResponse(store),
		Product: toProductResponse(product),
	})
}

type checkoutRequest struct {
	BuyerName       string `json:"buyer_name"`
	BuyerPhone      string `json:"buyer_phone"`
	BuyerEmail      string `json:"buyer_email"`
	PaymentMethod   string `json:"payment_method"`
	DeliveryAddress string `json:"delivery_address"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkoutSvc.Create(r.Context(), checkout.CreateParams{
		StoreSlug:       chi.URLParam(r, "storeSlug"),
		ProductID:       productID,
		BuyerName:       req.BuyerName,
		BuyerPhone:      req.BuyerPhone,
		BuyerEmail:      req.BuyerEmail,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}

	metrics.CheckoutsCreated.Inc()

	respond.JSON(w, http.StatusCreated, checkoutResponse{
		TransactionID: result.Transaction.ID,
		Amount:        result.Transaction.Amount,
		Currency:      result.Transaction.Currency,
		PaymentLink:   result.PaymentLink,
	})
}
