package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allforyou/ordertext/internal/domain/order"
	"github.com/allforyou/ordertext/internal/domain/template"
	"github.com/allforyou/ordertext/internal/storage/memory"
)

type fakeCopier struct {
	copied []string
	err    error
}

func (f *fakeCopier) Copy(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeCopier) {
	t.Helper()
	clip := &fakeCopier{}
	h := New(order.NewService(memory.New()), template.New(), clip)
	return h, clip
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func saveOrder(t *testing.T, mux *http.ServeMux, number string, items []map[string]any) {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/orders", map[string]any{
		"orderNumber": number,
		"items":       items,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSaveOrder(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/orders", map[string]any{
		"orderNumber": "1001",
		"items": []map[string]any{
			{"name": "Стіл", "price": "2500", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp saveOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Замовлення №1001 збережено успішно!", resp.Message)
	assert.Equal(t, "1001", resp.Order.Number)
	assert.Equal(t, "2500", resp.Order.Total)
}

func TestSaveOrderValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	t.Run("empty number", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/orders", map[string]any{
			"orderNumber": "  ",
			"items":       []map[string]any{{"name": "Стіл", "price": "100", "quantity": 1}},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp fieldErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "orderNumber", resp.Field)
		assert.Equal(t, "Введіть номер замовлення", resp.Message)
	})

	t.Run("no valid items", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/orders", map[string]any{
			"orderNumber": "1001",
			"items":       []map[string]any{{"name": "", "price": "0", "quantity": 0}},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp fieldErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "items", resp.Field)
	})
}

func TestGetOrderNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/orders/9999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Замовлення не знайдено", resp.Message)
}

func TestListOrders(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	saveOrder(t, mux, "1001", []map[string]any{{"name": "Стіл", "price": "2500", "quantity": 1}})
	saveOrder(t, mux, "1002", []map[string]any{{"name": "Стілець", "price": "800", "quantity": 4}})

	rec := doJSON(t, mux, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listOrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 2)
}

func TestReplaceItem(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	saveOrder(t, mux, "1001", []map[string]any{{"name": "Стіл", "price": "2500", "quantity": 1}})

	rec := doJSON(t, mux, http.MethodPut, "/api/orders/1001/items/0", map[string]any{
		"name": "Стіл дубовий", "price": "3000", "quantity": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp orderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Стіл дубовий", resp.Items[0].Name)
	assert.Equal(t, "3000", resp.Total)

	t.Run("bad index", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPut, "/api/orders/1001/items/5", map[string]any{
			"name": "Шафа", "price": "100", "quantity": 1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("invalid item", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPut, "/api/orders/1001/items/0", map[string]any{
			"name": "", "price": "0", "quantity": 0,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp fieldErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Некоректні дані. Перевірте назву, ціну та кількість.", resp.Message)
	})
}

func TestRenderWithoutOpenOrder(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{"kind": "advance_payment"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Помилка: замовлення не вибрано", resp.Message)
}

func TestRenderSingleStep(t *testing.T) {
	h, clip := newTestHandler(t)
	mux := h.Routes()

	saveOrder(t, mux, "1001", []map[string]any{{"name": "Стіл", "price": "2500", "quantity": 1}})
	rec := doJSON(t, mux, http.MethodPost, "/api/orders/1001/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{"kind": "availability_request"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp renderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.NeedsInput)
	assert.True(t, resp.Copied)
	assert.Contains(t, resp.Text, "замовлення № 1001")
	require.Len(t, clip.copied, 1)
	assert.Equal(t, resp.Text, clip.copied[0])

	rec = doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{"kind": "advance_payment"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Copied)
	assert.Contains(t, resp.Text, "Оплата авансу за")
	assert.Contains(t, resp.Text, "До сплати 175 грн")
	require.Len(t, clip.copied, 2)
	assert.Equal(t, resp.Text, clip.copied[1])
}

func TestRenderTwoStepReveal(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	saveOrder(t, mux, "1001", []map[string]any{{"name": "Стіл", "price": "2500", "quantity": 1}})
	rec := doJSON(t, mux, http.MethodPost, "/api/orders/1001/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// First call without the delivery term reveals the input section.
	rec = doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{"kind": "order_only"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp renderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "delivery-terms", resp.NeedsInput)
	assert.Empty(t, resp.Text)

	// Second call still without a term is a user-visible error.
	rec = doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{"kind": "order_only"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var fieldResp fieldErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fieldResp))
	assert.Equal(t, "delivery-term", fieldResp.Field)

	// With the term supplied the text renders.
	rec = doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{
		"kind":         "order_only",
		"deliveryTerm": map[string]any{"custom": false, "value": "до 30 робочих днів"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Text, "до 30 робочих днів")
}

func TestRenderClipboardFailure(t *testing.T) {
	h, clip := newTestHandler(t)
	clip.err = assert.AnError
	mux := h.Routes()

	saveOrder(t, mux, "1001", []map[string]any{{"name": "Стіл", "price": "2500", "quantity": 1}})
	rec := doJSON(t, mux, http.MethodPost, "/api/orders/1001/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{"kind": "availability_request"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp renderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Copied)
	assert.NotEmpty(t, resp.Text)
}

func TestOpenResetsSession(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	saveOrder(t, mux, "1001", []map[string]any{{"name": "Стіл", "price": "2500", "quantity": 1}})

	rec := doJSON(t, mux, http.MethodPost, "/api/orders/1001/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/render", map[string]any{"kind": "order_only"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/session/edit", map[string]any{"editing": true})
	require.Equal(t, http.StatusOK, rec.Code)

	// Re-opening drops edit mode and reveal state.
	rec = doJSON(t, mux, http.MethodPost, "/api/orders/1001/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1001", resp.Number)
	assert.False(t, resp.Editing)
	assert.Empty(t, resp.Revealed)
}

func TestOpenMissingOrder(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/orders/404/open", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Замовлення не знайдено"))
}
