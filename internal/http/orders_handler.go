package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/just-smsm/storefront/internal/order"
)

// OrderLedger is the slice of the ledger the HTTP surface exposes.
type OrderLedger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	ListAll(ctx context.Context) ([]*order.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*order.Order, error)
	ListWithDeliveryAssigned(ctx context.Context) ([]*order.Order, error)
	ListAwaitingDelivery(ctx context.Context) ([]*order.Order, error)
	Deliver(ctx context.Context, id uuid.UUID, deliveryMethodID int64) (*order.Order, error)
}

type OrdersHandler struct {
	ledger  OrderLedger
	timeout time.Duration
}

func NewOrdersHandler(ledger OrderLedger, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		ledger:  ledger,
		timeout: timeout,
	}
}

type OrderItemDTO struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	PictureURL  string  `json:"pictureUrl"`
	Subtotal    float64 `json:"subtotal"`
}

type AddressDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Details string `json:"details"`
}

type OrderResponseDTO struct {
	ID               string         `json:"id"`
	UserEmail        string         `json:"userEmail"`
	Status           string         `json:"status"`
	ShippingAddress  AddressDTO     `json:"shippingAddress"`
	DeliveryMethodID *int64         `json:"deliveryMethodId,omitempty"`
	PaymentIntentID  *string        `json:"paymentIntentId,omitempty"`
	ClientSecret     *string        `json:"clientSecret,omitempty"`
	Items            []OrderItemDTO `json:"items"`
	TotalPrice       float64        `json:"totalPrice"`
	CreatedAt        string         `json:"createdAt"`
}

type DeliverOrderRequestDTO struct {
	OrderID          string `json:"orderId"`
	DeliveryMethodID int64  `json:"deliveryMethodId"`
}

func convertOrder(o *order.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.UnitPrice,
			Quantity:    item.Quantity,
			PictureURL:  item.PictureURL,
			Subtotal:    item.Subtotal,
		})
	}

	return OrderResponseDTO{
		ID:        o.ID.String(),
		UserEmail: o.UserEmail,
		Status:    o.Status.String(),
		ShippingAddress: AddressDTO{
			Name:    o.ShippingAddress.Name,
			Phone:   o.ShippingAddress.Phone,
			City:    o.ShippingAddress.City,
			Details: o.ShippingAddress.Details,
		},
		DeliveryMethodID: o.DeliveryMethodID,
		PaymentIntentID:  o.PaymentIntentID,
		ClientSecret:     o.ClientSecret,
		Items:            items,
		TotalPrice:       o.TotalPrice,
		CreatedAt:        o.CreatedAt.Format(time.RFC3339),
	}
}

func convertOrders(orders []*order.Order) []OrderResponseDTO {
	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	return dtos
}

// GET /api/v1/order/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	found, err := h.ledger.GetByID(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(found))
}

// GET /api/v1/order/all
func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.ledger.ListAll(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(orders))
}

// GET /api/v1/order/my
func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := emailFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	orders, err := h.ledger.ListByEmail(ctx, email)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(orders))
}

// GET /api/v1/order/awaiting-delivery
func (h *OrdersHandler) ListAwaitingDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.ledger.ListAwaitingDelivery(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(orders))
}

// GET /api/v1/order/delivered
func (h *OrdersHandler) ListDelivered(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.ledger.ListWithDeliveryAssigned(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(orders))
}

// POST /api/v1/order/deliver
func (h *OrdersHandler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req DeliverOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "orderId must be a UUID")
		return
	}
	if req.DeliveryMethodID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_delivery_method", "deliveryMethodId must be positive")
		return
	}

	delivered, err := h.ledger.Deliver(ctx, id, req.DeliveryMethodID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(delivered))
}
