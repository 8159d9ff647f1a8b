package handler

import (
	"context"
	"net/http"

	"github.com/piercelens/storefront/internal/middleware"
	"github.com/piercelens/storefront/internal/order"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	BuildDraft(c order.Customer) (*order.Draft, error)
	Submit(ctx context.Context, d *order.Draft) (*order.Result, error)
}

// OrderHandler はチェックアウトのHTTPハンドラー。
type OrderHandler struct {
	service   OrderServiceInterface
	collector OrderMetricsCollector
}

// OrderMetricsCollector は注文関連のメトリクス記録インターフェース。
type OrderMetricsCollector interface {
	RecordOrderSubmitted(total float64)
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface, collector OrderMetricsCollector) *OrderHandler {
	return &OrderHandler{service: service, collector: collector}
}

// checkoutRequest はチェックアウトのリクエストボディ。
type checkoutRequest struct {
	Customer order.Customer `json:"customer"`
}

// Checkout はカート内容から注文を組み立ててデモ決済に送信する。
// POST /api/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft, err := h.service.BuildDraft(req.Customer)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.Submit(r.Context(), draft)
	if err != nil {
		if r.Context().Err() != nil {
			// クライアント切断。応答は届かないがステータスだけ返す。
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}
		middleware.WriteInternalServerError(w)
		return
	}

	h.collector.RecordOrderSubmitted(draft.Total)
	writeJSONResponse(w, http.StatusOK, result)
}
