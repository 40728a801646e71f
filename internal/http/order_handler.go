package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmdl25/kenility-challenge/internal/service"
)

type orderHandler struct {
	s   *Service
	svc service.OrderService
}

func newOrderHandler(s *Service, svc service.OrderService) *orderHandler {
	return &orderHandler{s: s, svc: svc}
}

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type createOrderRequest struct {
	ClientName  string             `json:"clientName" validate:"required,min=2"`
	ProductList []orderItemRequest `json:"productList" validate:"required,min=1,dive"`
}

type updateOrderRequest struct {
	ClientName  *string             `json:"clientName" validate:"omitempty,min=2"`
	ProductList *[]orderItemRequest `json:"productList" validate:"omitempty,min=1,dive"`
}

func toItemParams(items []orderItemRequest) []service.OrderItemParams {
	params := make([]service.OrderItemParams, len(items))
	for i, item := range items {
		params[i] = service.OrderItemParams{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return params
}

func (h *orderHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[createOrderRequest](r)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	if err := h.s.validate.Validate(req); err != nil {
		h.s.respondError(w, r, err)
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderParams{
		ClientName: req.ClientName,
		Items:      toItemParams(req.ProductList),
	})
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusCreated, order)
}

func (h *orderHandler) update(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[updateOrderRequest](r)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	if err := h.s.validate.Validate(req); err != nil {
		h.s.respondError(w, r, err)
		return
	}

	params := service.UpdateOrderParams{ClientName: req.ClientName}
	if req.ProductList != nil {
		items := toItemParams(*req.ProductList)
		params.Items = &items
	}

	order, err := h.svc.UpdateOrder(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusOK, order)
}

func (h *orderHandler) totalLastMonth(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.TotalForLastCalendarMonth(r.Context())
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusOK, total)
}

func (h *orderHandler) highestAmount(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.HighestAmountOrder(r.Context())
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusOK, order)
}
