package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/allforyou/ordertext/internal/domain/template"
)

type deliveryTermDTO struct {
	Custom bool   `json:"custom"`
	Value  string `json:"value"`
}

type promDTO struct {
	URL            string `json:"url"`
	NewOrderNumber string `json:"newOrderNumber"`
}

type checkDTO struct {
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Name        string `json:"name"`
	PaymentType string `json:"paymentType"`
}

type renderRequest struct {
	Kind         string                     `json:"kind"`
	DeliveryTerm *deliveryTermDTO           `json:"deliveryTerm,omitempty"`
	Prom         *promDTO                   `json:"prom,omitempty"`
	Check        *checkDTO                  `json:"check,omitempty"`
	PriorPrices  map[string]decimal.Decimal `json:"priorPrices,omitempty"`
}

type renderResponse struct {
	Text       string `json:"text,omitempty"`
	Copied     bool   `json:"copied"`
	NeedsInput string `json:"needsInput,omitempty"`
}

// buildParams maps the wire request onto the params type of its kind.
// Absent auxiliary sections stay nil so the reveal protocol can see them.
func buildParams(req renderRequest) (template.Params, bool) {
	switch template.Kind(req.Kind) {
	case template.KindAvailabilityRequest:
		return template.AvailabilityRequest{}, true
	case template.KindAvailabilityConfirmation:
		return template.AvailabilityConfirmation{PriorPrices: req.PriorPrices}, true
	case template.KindOrderOnly:
		p := template.OrderOnly{PriorPrices: req.PriorPrices}
		if req.DeliveryTerm != nil {
			p.Term = &template.DeliveryTerm{
				Custom: req.DeliveryTerm.Custom,
				Value:  req.DeliveryTerm.Value,
			}
		}
		return p, true
	case template.KindUnavailable:
		return template.Unavailable{}, true
	case template.KindPaymentQuestion:
		return template.PaymentQuestion{}, true
	case template.KindPromPayment:
		p := template.PromPayment{}
		if req.Prom != nil {
			p.Details = &template.PromDetails{
				URL:            req.Prom.URL,
				NewOrderNumber: req.Prom.NewOrderNumber,
			}
		}
		return p, true
	case template.KindAdvancePayment:
		return template.AdvancePayment{}, true
	case template.KindCheckOrder:
		p := template.CheckOrder{}
		if req.Check != nil {
			p.Address = req.Check.Address
			p.Phone = req.Check.Phone
			p.Name = req.Check.Name
			p.PaymentType = template.PaymentType(req.Check.PaymentType)
		}
		return p, true
	default:
		return nil, false
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "некоректне тіло запиту")
		return
	}

	params, ok := buildParams(req)
	if !ok {
		h.badRequest(w, "невідомий тип повідомлення")
		return
	}

	h.mu.Lock()
	number := h.session.Number
	h.mu.Unlock()
	if number == "" {
		h.badRequest(w, "Помилка: замовлення не вибрано")
		return
	}

	o, err := h.orders.Get(r.Context(), number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.mu.Lock()
	res := h.session.Render(h.engine, o, params)
	h.mu.Unlock()

	switch {
	case res.Err != nil:
		h.writeError(w, r, res.Err)
	case res.NeedsInput != "":
		writeJSON(w, http.StatusOK, renderResponse{NeedsInput: string(res.NeedsInput)})
	default:
		copied := false
		if h.clip != nil {
			if err := h.clip.Copy(r.Context(), res.Text); err != nil {
				zctx.From(r.Context()).Warn("clipboard copy failed", zap.Error(err))
			} else {
				copied = true
			}
		}
		writeJSON(w, http.StatusOK, renderResponse{Text: res.Text, Copied: copied})
	}
}
