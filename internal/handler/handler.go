// Package handler serves the browser UI's JSON API over the order service
// and template engine. It owns the single-user session: the currently open
// order, the edit-mode flag, and the reveal state of two-step templates.
package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/allforyou/ordertext/internal/domain/order"
	"github.com/allforyou/ordertext/internal/domain/template"
	"github.com/allforyou/ordertext/pkg/clipboard"
)

// Handler implements the HTTP API.
type Handler struct {
	orders *order.Service
	engine *template.Engine
	clip   clipboard.Copier

	// The app is single-user by design: one session, guarded because the
	// HTTP server may still run handlers concurrently.
	mu      sync.Mutex
	session *template.Session
}

// New constructs a Handler. clip may be nil to disable server-side copying.
func New(orders *order.Service, engine *template.Engine, clip clipboard.Copier) *Handler {
	return &Handler{
		orders:  orders,
		engine:  engine,
		clip:    clip,
		session: template.NewSession(),
	}
}

// Routes mounts all API endpoints on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", h.saveOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{number}", h.getOrder)
	mux.HandleFunc("POST /api/orders/{number}/open", h.openOrder)
	mux.HandleFunc("PUT /api/orders/{number}/items/{index}", h.replaceItem)
	mux.HandleFunc("GET /api/session", h.getSession)
	mux.HandleFunc("POST /api/session/edit", h.setEditMode)
	mux.HandleFunc("POST /api/render", h.render)
	return mux
}

// --- Shared response plumbing ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type messageResponse struct {
	Message string `json:"message"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeError maps domain errors onto HTTP responses. Validation failures and
// missing orders are expected outcomes; anything else is logged and hidden
// behind a 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse{
			Field:   vErr.Field,
			Message: vErr.Message,
		})
		return
	}

	if errors.Is(err, order.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Замовлення не знайдено"})
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "внутрішня помилка"})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, messageResponse{Message: message})
}
