package handler

import (
	"net/http"

	"github.com/allforyou/ordertext/internal/domain/template"
)

type sessionResponse struct {
	Number   string   `json:"number"`
	Editing  bool     `json:"editing"`
	Revealed []string `json:"revealed"`
}

func (h *Handler) sessionDTO() sessionResponse {
	resp := sessionResponse{
		Number:   h.session.Number,
		Editing:  h.session.Editing,
		Revealed: []string{},
	}
	for _, fs := range []template.FieldSet{template.FieldSetDeliveryTerms, template.FieldSetPromPayment} {
		if h.session.Revealed(fs) {
			resp.Revealed = append(resp.Revealed, string(fs))
		}
	}
	return resp
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := h.sessionDTO()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

type setEditModeRequest struct {
	Editing bool `json:"editing"`
}

func (h *Handler) setEditMode(w http.ResponseWriter, r *http.Request) {
	var req setEditModeRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "некоректне тіло запиту")
		return
	}

	h.mu.Lock()
	if h.session.Number == "" {
		h.mu.Unlock()
		h.badRequest(w, "Помилка: замовлення не вибрано")
		return
	}
	h.session.Editing = req.Editing
	resp := h.sessionDTO()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}
