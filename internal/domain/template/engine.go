package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/allforyou/ordertext/internal/domain/order"
)

// FieldSet names a group of inputs the UI must reveal before a two-step
// template can render.
type FieldSet string

const (
	FieldSetDeliveryTerms FieldSet = "delivery-terms"
	FieldSetPromPayment   FieldSet = "prom-payment"
)

// Result is the outcome of a render. Exactly one field is set: Text is ready
// to display and copy; NeedsInput silently tells the UI to reveal an input
// section; Err is a user-visible validation failure.
type Result struct {
	Text       string
	NeedsInput FieldSet
	Err        *order.ValidationError
}

func textResult(s string) Result { return Result{Text: s} }

func errResult(field, message string) Result {
	return Result{Err: order.NewValidationError(field, message)}
}

// advanceRate is the prepayment fraction applied to the order total.
var advanceRate = decimal.RequireFromString("0.07")

// Engine renders customer messages from an order and per-kind parameters.
// A render is a pure function of (order, clock, params); the two-step reveal
// flow lives in Session, never here.
type Engine struct {
	now func() time.Time
}

// New creates an Engine on the system clock.
func New() *Engine {
	return &Engine{now: time.Now}
}

// Render produces the message for the params' template kind. Missing or
// invalid auxiliary input yields a validation Result, never a partial text.
func (e *Engine) Render(o *order.Order, p Params) Result {
	if o == nil || len(o.Items) == 0 {
		return errResult("order", "Помилка: замовлення не вибрано")
	}

	switch p := p.(type) {
	case AvailabilityRequest:
		return textResult(e.availabilityRequest(o))
	case AvailabilityConfirmation:
		return textResult(e.availabilityConfirmation(o, p.PriorPrices))
	case OrderOnly:
		return e.orderOnly(o, p)
	case Unavailable:
		return textResult(e.unavailable(o))
	case PaymentQuestion:
		return textResult(e.paymentQuestion(o))
	case PromPayment:
		return e.promPayment(o, p)
	case AdvancePayment:
		return textResult(e.advancePayment(o))
	case CheckOrder:
		return e.checkOrder(o, p)
	default:
		return errResult("kind", "невідомий тип повідомлення")
	}
}

// --- Money and date helpers ---

// advanceOf rounds 7% of total to whole hryvnias, half away from zero.
// The remainder is always derived as total minus advance, never rounded on
// its own, so advance + remainder equals total exactly.
func advanceOf(total decimal.Decimal) decimal.Decimal {
	return total.Mul(advanceRate).Round(0)
}

func money(d decimal.Decimal) string { return d.String() }

// date formats the current date the way uk-UA locale does: dd.mm.yyyy.
func (e *Engine) date() string {
	return e.now().Format("02.01.2006")
}

// greeting picks the time-of-day word: 5–11h morning, 12–17h day, else evening.
func (e *Engine) greeting() string {
	switch h := e.now().Hour(); {
	case h >= 5 && h < 12:
		return "ранку"
	case h >= 12 && h < 18:
		return "дня"
	default:
		return "вечора"
	}
}

func itemNames(o *order.Order) string {
	names := make([]string, len(o.Items))
	for i, it := range o.Items {
		names[i] = it.Name
	}
	return strings.Join(names, ", ")
}

// numberedItems lists items as "1. Name N шт" lines.
func numberedItems(o *order.Order) string {
	lines := make([]string, len(o.Items))
	for i, it := range o.Items {
		lines[i] = fmt.Sprintf("%d. %s %d шт", i+1, it.Name, it.Quantity)
	}
	return strings.Join(lines, "\n")
}

// pricePhrase spells out the item's price when it differs from the one
// quoted earlier, and says "актуальна" otherwise.
func pricePhrase(it order.Item, prior map[string]decimal.Decimal) string {
	if prev, ok := prior[it.Name]; ok && !prev.Equal(it.Price) {
		return money(it.Price) + " грн"
	}
	return "актуальна"
}

// --- Templates ---

func (e *Engine) availabilityRequest(o *order.Order) string {
	return fmt.Sprintf(`Доброго дня!

Контактуємо щодо вашого замовлення № %s. Уточнюємо на складі наявність наступних позицій: %s. Як тільки отримаємо актуальну інформацію - одразу повідомимо в чаті. 😊

З повагою,
Команда All For You`, o.Number, itemNames(o))
}

func (e *Engine) availabilityConfirmation(o *order.Order, prior map[string]decimal.Decimal) string {
	phrases := make([]string, len(o.Items))
	for i, it := range o.Items {
		phrases[i] = fmt.Sprintf("вартість %s - %s", it.Name, pricePhrase(it, prior))
	}
	return fmt.Sprintf(`Доброго дня!

Отримали актуальну інформацію стосовно вашого запиту, %s, товар у наявності на складі. Підтверджуєте дане замовлення?`, strings.Join(phrases, ", "))
}

func (e *Engine) orderOnly(o *order.Order, p OrderOnly) Result {
	if p.Term == nil {
		return errResult("delivery-term", "Оберіть терміни доставки перед генерацією тексту")
	}

	term := strings.TrimSpace(p.Term.Value)
	switch {
	case p.Term.Custom && term == "":
		term = DefaultDeliveryTerm
	case term == "":
		return errResult("delivery-term", "Оберіть терміни доставки перед генерацією тексту")
	}

	phrases := make([]string, len(o.Items))
	for i, it := range o.Items {
		phrases[i] = fmt.Sprintf("%s - %s", it.Name, pricePhrase(it, p.PriorPrices))
	}

	return textResult(fmt.Sprintf(`Доброго дня!

Отримали актуальну інформацію стосовно вашого запиту, %s, товар у наявності. Підтверджуєте дане замовлення?, терміни доставки: під замовлення (%s). Бажаєте замовити?`, strings.Join(phrases, ", "), term))
}

func (e *Engine) unavailable(o *order.Order) string {
	return fmt.Sprintf(`Доброго дня!

Отримали актуальну інформацію стосовно вашого запиту, на жаль %s немає у наявності, під замовлення привезти товар також неможливо. Чи можемо пропонувати альтернативи?`, itemNames(o))
}

func (e *Engine) paymentQuestion(o *order.Order) string {
	advance := advanceOf(o.Total())
	return fmt.Sprintf(`Для товарів у статусі «Під замовлення» доступні два варіанти оплати:

1. Пром-Оплата (повна оплата через додаток Prom)
2. Оплата авансу у розмірі 7%% від вартості товару, залишок оплачується при отриманні, %s грн сума авансу для вашого замовлення

Як вам буде зручніше оплатити?`, money(advance))
}

func (e *Engine) promPayment(o *order.Order, p PromPayment) Result {
	d := p.Details
	if d == nil || strings.TrimSpace(d.URL) == "" {
		return errResult("prom-url", "Введіть URL для оплати")
	}
	if strings.TrimSpace(d.NewOrderNumber) == "" {
		return errResult("prom-new-order-number", "Введіть новий номер замовлення")
	}

	return textResult(fmt.Sprintf(`Доброго дня!

Створили нове замовлення №%s. Можете оплатити замовлення або в особистому кабінеті (замовлення №%s), або ж за посиланням: %s`,
		strings.TrimSpace(d.NewOrderNumber), o.Number, strings.TrimSpace(d.URL)))
}

func (e *Engine) advancePayment(o *order.Order) string {
	total := o.Total()
	advance := advanceOf(total)

	return fmt.Sprintf(`Ціна: %s грн

Оплата авансу за:
%s

До сплати %s грн

Отримувач: ФОП Бурий Роман Степанович
IBAN: UA043220010000026008330133525
ІПН/ЄДРПОУ: 3274904630
Акціонерне товариство: УНІВЕРСАЛ БАНК
МФО: 322001
ЄДРПОУ Банку: 21133352
Призначення: Оплата авансу за замовлення

Після оплати надішліть будь ласка квитанцію.

Дякуємо за замовлення!

Гарного вам %s 😊`, money(total), numberedItems(o), money(advance), e.greeting())
}

func (e *Engine) checkOrder(o *order.Order, p CheckOrder) Result {
	address := strings.TrimSpace(p.Address)
	phone := strings.TrimSpace(p.Phone)
	name := strings.TrimSpace(p.Name)
	if address == "" || phone == "" || name == "" {
		return errResult("buyer", "Заповніть всі поля форми")
	}

	total := o.Total()

	switch p.PaymentType {
	case PaymentAdvance:
		advance := advanceOf(total)
		remainder := total.Sub(advance)
		return textResult(fmt.Sprintf(`Під замовлення (%s)

Ціна : %s грн

%s

післяплата: %s грн
аванс: %s грн (ФОП)
загальна: %s грн

%s
%s
%s`, e.date(), money(total), numberedItems(o), money(remainder), money(advance), money(total), address, phone, name))

	case PaymentProm:
		return textResult(fmt.Sprintf(`Під замовлення (%s)

Ціна : %s грн

%s

післяплата: 0 грн
аванс: 0 грн
загальна: %s грн (пром-оплата)

%s
%s
%s`, e.date(), money(total), numberedItems(o), money(total), address, phone, name))

	default:
		return errResult("payment-type", "Оберіть тип оплати")
	}
}
