package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/allforyou/ordertext/internal/domain/order"
)

type itemDTO struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (d itemDTO) domain() order.Item {
	return order.Item{Name: d.Name, Price: d.Price, Quantity: d.Quantity}
}

func itemFromDomain(it order.Item) itemDTO {
	return itemDTO{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
}

type orderDTO struct {
	Number       string    `json:"number"`
	Items        []itemDTO `json:"items"`
	Total        string    `json:"total"`
	DateCreated  time.Time `json:"dateCreated"`
	DateModified time.Time `json:"dateModified"`
}

func orderFromDomain(o *order.Order) orderDTO {
	items := make([]itemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemFromDomain(it)
	}
	return orderDTO{
		Number:       o.Number,
		Items:        items,
		Total:        o.Total().String(),
		DateCreated:  o.DateCreated,
		DateModified: o.DateModified,
	}
}

type saveOrderRequest struct {
	OrderNumber string    `json:"orderNumber"`
	Items       []itemDTO `json:"items"`
}

type saveOrderResponse struct {
	Message string   `json:"message"`
	Order   orderDTO `json:"order"`
}

func (h *Handler) saveOrder(w http.ResponseWriter, r *http.Request) {
	var req saveOrderRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "некоректне тіло запиту")
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = it.domain()
	}

	saved, err := h.orders.Save(r.Context(), req.OrderNumber, items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saveOrderResponse{
		Message: fmt.Sprintf("Замовлення №%s збережено успішно!", saved.Number),
		Order:   orderFromDomain(saved),
	})
}

type listOrdersResponse struct {
	Orders []orderDTO `json:"orders"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	all, err := h.orders.All(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	dtos := make([]orderDTO, 0, len(all))
	for _, o := range all {
		dtos = append(dtos, orderFromDomain(&o))
	}
	// Newest first, matching how the picker lists saved orders.
	sort.Slice(dtos, func(i, j int) bool {
		return dtos[i].DateModified.After(dtos[j].DateModified)
	})

	writeJSON(w, http.StatusOK, listOrdersResponse{Orders: dtos})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("number"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderFromDomain(o))
}

func (h *Handler) openOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	o, err := h.orders.Get(r.Context(), number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.mu.Lock()
	h.session.Open(number)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, orderFromDomain(o))
}

func (h *Handler) replaceItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.badRequest(w, "некоректний індекс товару")
		return
	}

	var req itemDTO
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "некоректне тіло запиту")
		return
	}

	updated, err := h.orders.ReplaceItem(r.Context(), r.PathValue("number"), index, req.domain())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderFromDomain(updated))
}
