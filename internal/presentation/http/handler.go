package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appcheckout "github.com/eshop-labs/checkout/internal/application/checkout"
	appshipping "github.com/eshop-labs/checkout/internal/application/shipping"
	domaincart "github.com/eshop-labs/checkout/internal/domain/cart"
	domaincatalog "github.com/eshop-labs/checkout/internal/domain/catalog"
	domainshipping "github.com/eshop-labs/checkout/internal/domain/shipping"
	"github.com/eshop-labs/checkout/internal/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	catalog     domaincatalog.Repository
	shipping    *appshipping.Service
	ids         appshipping.IDGenerator
	checkoutCfg appcheckout.OrderConfig
	met         *metrics.Metrics
	log         *zap.Logger
}

func NewHandler(
	catalog domaincatalog.Repository,
	shipping *appshipping.Service,
	ids appshipping.IDGenerator,
	checkoutCfg appcheckout.OrderConfig,
	met *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:     catalog,
		shipping:    shipping,
		ids:         ids,
		checkoutCfg: checkoutCfg,
		met:         met,
		log:         logger.With(zap.String("component", "http_server")),
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.log))
	r.Use(Tracing())
	r.Use(HTTPMetrics(h.met))

	r.Post("/products", h.handleCreateProduct)
	r.Post("/checkout", h.handleCheckout)
	r.Get("/shipping-types", h.handleShippingTypes)
	r.Get("/shipments/{id}/status", h.handleShipmentStatus)
	r.Post("/shipments/{id}/process", h.handleProcessShipment)
	r.Get("/health", h.handleHealth)

	return r
}

type createProductRequest struct {
	SKU   string `json:"sku"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := domaincatalog.NewProduct(req.SKU, price, req.Stock)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.catalog.Save(r.Context(), product); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"sku": product.SKU})
}

type checkoutItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	OrderID      string         `json:"order_id"`
	ShippingType string         `json:"shipping_type"`
	DueDate      time.Time      `json:"due_date"`
	Items        []checkoutItem `json:"items"`
}

type checkoutResponse struct {
	OrderID    string `json:"order_id"`
	ShipmentID string `json:"shipment_id"`
	Total      string `json:"total"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c := domaincart.New()
	for _, item := range req.Items {
		product, err := h.catalog.Get(r.Context(), item.SKU)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if err := c.Add(product, item.Quantity); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	total := c.Total()

	orderID := req.OrderID
	if orderID == "" {
		orderID = h.ids.NewID()
	}
	order := appcheckout.NewOrder(orderID, c, h.shipping, h.checkoutCfg, h.met)

	shipmentID, err := order.Place(r.Context(), req.ShippingType, req.DueDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:    orderID,
		ShipmentID: shipmentID,
		Total:      total.String(),
	})
}

func (h *Handler) handleShippingTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"shipping_types": h.shipping.AvailableTypes()})
}

type shipmentStatusResponse struct {
	ShipmentID string                `json:"shipment_id"`
	Status     domainshipping.Status `json:"status"`
}

func (h *Handler) handleShipmentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.shipping.CheckStatus(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipmentStatusResponse{ShipmentID: id, Status: status})
}

func (h *Handler) handleProcessShipment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.shipping.Process(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipmentStatusResponse{ShipmentID: id, Status: status})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainshipping.ErrNotFound),
		errors.Is(err, domaincatalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domaincart.ErrInvalidAmount),
		errors.Is(err, domaincatalog.ErrInvalidQuantity),
		errors.Is(err, domaincatalog.ErrInvalidPrice),
		errors.Is(err, domaincatalog.ErrInsufficientStock),
		errors.Is(err, domainshipping.ErrInvalidType),
		errors.Is(err, domainshipping.ErrInvalidDueDate):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
