package template

import "github.com/shopspring/decimal"

// Kind identifies one of the fixed customer-message purposes.
type Kind string

const (
	KindAvailabilityRequest      Kind = "availability_request"
	KindAvailabilityConfirmation Kind = "availability_confirmation"
	KindOrderOnly                Kind = "order_only"
	KindUnavailable              Kind = "unavailable"
	KindPaymentQuestion          Kind = "payment_question"
	KindPromPayment              Kind = "prom_payment"
	KindAdvancePayment           Kind = "advance_payment"
	KindCheckOrder               Kind = "check_order"
)

// Params carries the auxiliary input of one template kind. The set of
// implementations is closed: each kind has exactly one params type, so a
// render call cannot pair a kind with another kind's parameters.
type Params interface {
	Kind() Kind
}

// AvailabilityRequest asks the warehouse about item availability.
type AvailabilityRequest struct{}

func (AvailabilityRequest) Kind() Kind { return KindAvailabilityRequest }

// AvailabilityConfirmation confirms availability back to the customer.
// PriorPrices optionally carries prices quoted earlier, keyed by item name;
// an item whose current price differs gets the new price spelled out instead
// of "актуальна".
type AvailabilityConfirmation struct {
	PriorPrices map[string]decimal.Decimal
}

func (AvailabilityConfirmation) Kind() Kind { return KindAvailabilityConfirmation }

// DefaultDeliveryTerm is substituted when a custom delivery term was chosen
// but left blank.
const DefaultDeliveryTerm = "7-10 робочих днів"

// DeliveryTerm is the chosen delivery window: one of the preset values, or
// free text when Custom is set.
type DeliveryTerm struct {
	Custom bool
	Value  string
}

// OrderOnly confirms an under-order purchase with delivery terms.
// A nil Term means the delivery-terms input has not been supplied yet.
type OrderOnly struct {
	Term        *DeliveryTerm
	PriorPrices map[string]decimal.Decimal
}

func (OrderOnly) Kind() Kind { return KindOrderOnly }

// Unavailable tells the customer the items cannot be sourced.
type Unavailable struct{}

func (Unavailable) Kind() Kind { return KindUnavailable }

// PaymentQuestion asks which of the two payment options the customer prefers.
type PaymentQuestion struct{}

func (PaymentQuestion) Kind() Kind { return KindPaymentQuestion }

// PromDetails identifies the replacement Prom order and its payment link.
type PromDetails struct {
	URL            string
	NewOrderNumber string
}

// PromPayment sends payment instructions for a freshly created Prom order.
// A nil Details means the Prom input has not been supplied yet.
type PromPayment struct {
	Details *PromDetails
}

func (PromPayment) Kind() Kind { return KindPromPayment }

// AdvancePayment sends the 7% advance payment requisites.
type AdvancePayment struct{}

func (AdvancePayment) Kind() Kind { return KindAdvancePayment }

// PaymentType selects the check-order breakdown.
type PaymentType string

const (
	PaymentAdvance PaymentType = "advance"
	PaymentProm    PaymentType = "prom"
)

// CheckOrder renders the printable buyer-facing check: totals, buyer contact
// details, and the payment-type-specific breakdown.
type CheckOrder struct {
	Address     string
	Phone       string
	Name        string
	PaymentType PaymentType
}

func (CheckOrder) Kind() Kind { return KindCheckOrder }
