package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/piercelens/storefront/internal/metrics"
	"github.com/piercelens/storefront/internal/middleware"
	"github.com/piercelens/storefront/internal/model"
)

// CartServiceInterface はカートハンドラーが必要とするサービスインターフェース。
type CartServiceInterface interface {
	GetCart() model.Cart
	AddItem(item model.CartItem) string
	RemoveItem(id string)
	UpdateQuantity(id string, quantity int)
	Clear()
	ItemCount() int
	Total() float64
}

// CartHandler はカート操作のHTTPハンドラー。
type CartHandler struct {
	service   CartServiceInterface
	collector metrics.MetricsCollector
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface, collector metrics.MetricsCollector) *CartHandler {
	return &CartHandler{
		service:   service,
		collector: collector,
	}
}

// cartResponse はカートの取得レスポンス。合計と総数量を毎回再計算して添える。
type cartResponse struct {
	Items []model.CartItem `json:"items"`
	Count int              `json:"count"`
	Total float64          `json:"total"`
}

func (h *CartHandler) cartBody() cartResponse {
	c := h.service.GetCart()
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return cartResponse{
		Items: c.Items,
		Count: c.Count(),
		Total: c.Total(),
	}
}

// GetCart は現在のカートを返す。
// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.cartBody())
}

// AddItem は明細をカートに追加する。
// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item model.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     "INVALID_BODY",
			Message:  "リクエストボディを解釈できません。",
			Category: "validation",
			Action:   "明細をJSONで送信してください。",
		})
		return
	}

	id := h.service.AddItem(item)
	h.collector.RecordCartMutation("add")

	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"id":   id,
		"cart": h.cartBody(),
	})
}

// RemoveItem は指定IDの明細を削除する。
// DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.service.RemoveItem(id)
	h.collector.RecordCartMutation("remove")
	writeJSONResponse(w, http.StatusOK, h.cartBody())
}

// updateQuantityRequest は数量変更のリクエストボディ。
type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity は指定IDの明細の数量を変更する。0以下は削除と等価。
// PUT /api/cart/items/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     "INVALID_BODY",
			Message:  "リクエストボディを解釈できません。",
			Category: "validation",
			Action:   "quantityをJSONで送信してください。",
		})
		return
	}

	h.service.UpdateQuantity(id, req.Quantity)
	h.collector.RecordCartMutation("update")
	writeJSONResponse(w, http.StatusOK, h.cartBody())
}

// Clear はカートを空にする。
// DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear()
	h.collector.RecordCartMutation("clear")
	writeJSONResponse(w, http.StatusOK, h.cartBody())
}
