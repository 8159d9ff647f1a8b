package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/piercelens/storefront/internal/model"
)

// --- モック ---

// mockCollector はメトリクス記録の呼び出しを記録するmetrics.MetricsCollector実装。
type mockCollector struct {
	cartMutations []string
	authSuccess   int
	authFailures  []string
	ordersTotals  []float64
	httpStatuses  []int
}

func (m *mockCollector) RecordCartMutation(op string)        { m.cartMutations = append(m.cartMutations, op) }
func (m *mockCollector) RecordAuthSuccess()                  { m.authSuccess++ }
func (m *mockCollector) RecordAuthFailure(code string)       { m.authFailures = append(m.authFailures, code) }
func (m *mockCollector) RecordOrderSubmitted(total float64)  { m.ordersTotals = append(m.ordersTotals, total) }
func (m *mockCollector) RecordHTTPStatus(statusCode int)     { m.httpStatuses = append(m.httpStatuses, statusCode) }

type mockCartService struct {
	getCartFn        func() model.Cart
	addItemFn        func(item model.CartItem) string
	removeItemFn     func(id string)
	updateQuantityFn func(id string, quantity int)
	clearFn          func()
}

func (m *mockCartService) GetCart() model.Cart {
	if m.getCartFn != nil {
		return m.getCartFn()
	}
	return model.Cart{}
}
func (m *mockCartService) AddItem(item model.CartItem) string {
	if m.addItemFn != nil {
		return m.addItemFn(item)
	}
	return "generated-id"
}
func (m *mockCartService) RemoveItem(id string) {
	if m.removeItemFn != nil {
		m.removeItemFn(id)
	}
}
func (m *mockCartService) UpdateQuantity(id string, quantity int) {
	if m.updateQuantityFn != nil {
		m.updateQuantityFn(id, quantity)
	}
}
func (m *mockCartService) Clear() {
	if m.clearFn != nil {
		m.clearFn()
	}
}
func (m *mockCartService) ItemCount() int { return m.GetCart().Count() }
func (m *mockCartService) Total() float64 { return m.GetCart().Total() }

// cartTestRouter はカートハンドラーのルートだけを構成したルーターを返す。
func cartTestRouter(service CartServiceInterface, collector *mockCollector) http.Handler {
	h := NewCartHandler(service, collector)
	r := chi.NewRouter()
	r.Get("/api/cart", h.GetCart)
	r.Delete("/api/cart", h.Clear)
	r.Post("/api/cart/items", h.AddItem)
	r.Put("/api/cart/items/{id}", h.UpdateQuantity)
	r.Delete("/api/cart/items/{id}", h.RemoveItem)
	return r
}

// --- テスト ---

// TestCartHandler_GetCart はカートの内容と再計算済みの件数・合計が返ることを検証する。
func TestCartHandler_GetCart(t *testing.T) {
	service := &mockCartService{
		getCartFn: func() model.Cart {
			return model.Cart{Items: []model.CartItem{
				{ID: "1", Name: "ボディ", Price: 100, Quantity: 2},
				{ID: "2", Name: "レンズ", Price: 50, Quantity: 1},
			}}
		},
	}

	rec := httptest.NewRecorder()
	cartTestRouter(service, &mockCollector{}).ServeHTTP(rec, httptest.NewRequest("GET", "/api/cart", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 3 {
		t.Errorf("count = %d, want 3", body.Count)
	}
	if body.Total != 250 {
		t.Errorf("total = %f, want 250", body.Total)
	}
}

// TestCartHandler_GetCartEmpty は空のカートでitemsがnullではなく空配列になる
// ことを検証する。
func TestCartHandler_GetCartEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	cartTestRouter(&mockCartService{}, &mockCollector{}).ServeHTTP(rec, httptest.NewRequest("GET", "/api/cart", nil))

	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("body = %s, want empty items array", rec.Body.String())
	}
}

// TestCartHandler_AddItem は201と採番済みIDが返り、メトリクスが記録される
// ことを検証する。
func TestCartHandler_AddItem(t *testing.T) {
	var added model.CartItem
	service := &mockCartService{
		addItemFn: func(item model.CartItem) string {
			added = item
			return "new-id"
		},
	}
	collector := &mockCollector{}

	body := `{"name":"PL-85mm","price":100,"quantity":2}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/cart/items", strings.NewReader(body))
	cartTestRouter(service, collector).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if added.Name != "PL-85mm" || added.Quantity != 2 {
		t.Errorf("added = %+v", added)
	}
	if !strings.Contains(rec.Body.String(), `"id":"new-id"`) {
		t.Errorf("body = %s, want assigned id", rec.Body.String())
	}
	if len(collector.cartMutations) != 1 || collector.cartMutations[0] != "add" {
		t.Errorf("mutations = %v, want [add]", collector.cartMutations)
	}
}

// TestCartHandler_AddItemInvalidBody は解釈できないボディが400で拒否される
// ことを検証する。
func TestCartHandler_AddItemInvalidBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/cart/items", strings.NewReader("{broken"))
	cartTestRouter(&mockCartService{}, &mockCollector{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestCartHandler_UpdateQuantity はURLのIDとボディの数量がサービスへ渡る
// ことを検証する。
func TestCartHandler_UpdateQuantity(t *testing.T) {
	var gotID string
	var gotQty int
	service := &mockCartService{
		updateQuantityFn: func(id string, quantity int) {
			gotID = id
			gotQty = quantity
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/cart/items/abc-123", strings.NewReader(`{"quantity":0}`))
	cartTestRouter(service, &mockCollector{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != "abc-123" || gotQty != 0 {
		t.Errorf("id = %q, quantity = %d", gotID, gotQty)
	}
}

// TestCartHandler_RemoveItem は指定IDの削除が委譲されることを検証する。
func TestCartHandler_RemoveItem(t *testing.T) {
	var gotID string
	service := &mockCartService{
		removeItemFn: func(id string) { gotID = id },
	}
	collector := &mockCollector{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/cart/items/abc-123", nil)
	cartTestRouter(service, collector).ServeHTTP(rec, req)

	if gotID != "abc-123" {
		t.Errorf("id = %q", gotID)
	}
	if len(collector.cartMutations) != 1 || collector.cartMutations[0] != "remove" {
		t.Errorf("mutations = %v, want [remove]", collector.cartMutations)
	}
}

// TestCartHandler_Clear はカートが空にされることを検証する。
func TestCartHandler_Clear(t *testing.T) {
	cleared := false
	service := &mockCartService{clearFn: func() { cleared = true }}

	rec := httptest.NewRecorder()
	cartTestRouter(service, &mockCollector{}).ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/cart", nil))

	if !cleared {
		t.Error("Clear not delegated to service")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
