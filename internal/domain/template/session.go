package template

import "github.com/allforyou/ordertext/internal/domain/order"

// Session is the UI-owned current-order handle: which order is open, whether
// edit mode is on, and which two-step input sections have been revealed.
// The engine itself stays stateless; the session carries the whole
// reveal-then-render protocol.
type Session struct {
	Number   string
	Editing  bool
	revealed map[FieldSet]bool
}

// NewSession creates an empty session with no order open.
func NewSession() *Session {
	return &Session{revealed: make(map[FieldSet]bool)}
}

// Open switches the session to the given order and resets edit mode and all
// reveal state. Opening the same order again also resets, matching a fresh
// view of it.
func (s *Session) Open(number string) {
	s.Number = number
	s.Editing = false
	s.revealed = make(map[FieldSet]bool)
}

// Render runs the reveal-then-render protocol over the engine. The first
// call for a two-step kind whose input section is still hidden reveals the
// section and returns a silent NeedsInput, without rendering and without an
// error. Once revealed, the call is delegated to the engine, which turns
// missing auxiliary input into a ValidationError.
func (s *Session) Render(e *Engine, o *order.Order, p Params) Result {
	if fs, pending := pendingInput(p); pending && !s.revealed[fs] {
		s.revealed[fs] = true
		return Result{NeedsInput: fs}
	}
	return e.Render(o, p)
}

// Revealed reports whether the given input section is currently shown.
func (s *Session) Revealed(fs FieldSet) bool { return s.revealed[fs] }

// pendingInput reports the field set a two-step params value still lacks.
// Single-step kinds never have pending input.
func pendingInput(p Params) (FieldSet, bool) {
	switch p := p.(type) {
	case OrderOnly:
		if p.Term == nil {
			return FieldSetDeliveryTerms, true
		}
	case PromPayment:
		if p.Details == nil {
			return FieldSetPromPayment, true
		}
	}
	return "", false
}
