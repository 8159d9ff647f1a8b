package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestCollector_RegistersAndCounts は各メトリクスが登録され、記録が
// スクレイプ出力に反映されることを検証する。
func TestCollector_RegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCartMutation("add")
	c.RecordCartMutation("add")
	c.RecordAuthSuccess()
	c.RecordAuthFailure("BAD_CREDENTIAL")
	c.RecordOrderSubmitted(250)
	c.RecordHTTPStatus(404)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler(reg).ServeHTTP(rec, req)

	body := rec.Body.String()
	wantLines := []string{
		`storefront_cart_mutations_total{op="add"} 2`,
		`storefront_auth_success_total 1`,
		`storefront_auth_failure_total{code="BAD_CREDENTIAL"} 1`,
		`storefront_orders_total 1`,
		`storefront_http_status_total{status_code="404"} 1`,
	}
	for _, want := range wantLines {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}

// TestCollector_OrderAmountHistogram は注文金額がヒストグラムに観測される
// ことを検証する。
func TestCollector_OrderAmountHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOrderSubmitted(100)
	c.RecordOrderSubmitted(5000)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "storefront_order_amount_count 2") {
		t.Error("histogram count missing from scrape output")
	}
}
