package handlers

import (
	"context"
	"net/http"
	"time"

	"ecommerce-storefront/services/storefront-api/internal/service"
	"ecommerce-storefront/shared/pkg/models"

	"github.com/rs/zerolog"
)

type OrdersService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
}

type OrdersHandler struct {
	base
	Svc OrdersService
}

func NewOrdersHandler(svc OrdersService, log zerolog.Logger, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{base: base{Log: log, Timeout: timeout}, Svc: svc}
}

type createOrderReq struct {
	Firstname   string            `json:"firstname"`
	Lastname    string            `json:"lastname"`
	Email       string            `json:"email"`
	Number      string            `json:"number"`
	Address     string            `json:"address"`
	Orders      []models.LineItem `json:"orders"`
	TotalAmount *models.Amount    `json:"totalAmount"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := decodeBody(r, w, &req); err != nil {
		h.fail(w, r, "create order", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	o, err := h.Svc.CreateOrder(ctx, service.CreateOrderInput{
		Firstname:   req.Firstname,
		Lastname:    req.Lastname,
		Email:       req.Email,
		PhoneNumber: req.Number,
		Address:     req.Address,
		Orders:      req.Orders,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		h.fail(w, r, "create order", err)
		return
	}
	h.Log.Info().Str("order_id", o.ID).Str("email", o.Email).Msg("order created")
	writeOK(w, o, "Order placed successfully")
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	orders, err := h.Svc.GetAllOrders(ctx)
	if err != nil {
		h.fail(w, r, "list orders", err)
		return
	}
	writeOK(w, orders, "Orders fetched successfully")
}
