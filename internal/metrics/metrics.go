// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー層から利用する。
type MetricsCollector interface {
	RecordCartMutation(op string)
	RecordAuthSuccess()
	RecordAuthFailure(code string)
	RecordOrderSubmitted(total float64)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	cartMutations  *prometheus.CounterVec
	authSuccess    prometheus.Counter
	authFailure    *prometheus.CounterVec
	ordersTotal    prometheus.Counter
	orderAmount    prometheus.Histogram
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "カート変更操作の種類別合計数",
		}, []string{"op"}),
		authSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_auth_success_total",
			Help: "認証成功の合計数",
		}),
		authFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_auth_failure_total",
			Help: "認証失敗のエラーコード別合計数",
		}, []string{"code"}),
		ordersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_total",
			Help: "確定された注文の合計数",
		}),
		orderAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_amount",
			Help:    "確定された注文の金額分布",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.cartMutations,
		c.authSuccess,
		c.authFailure,
		c.ordersTotal,
		c.orderAmount,
		c.httpStatus,
	)

	return c
}

// RecordCartMutation はカート変更操作を記録する。opはadd/remove/update/clear。
func (c *Collector) RecordCartMutation(op string) {
	c.cartMutations.WithLabelValues(op).Inc()
}

// RecordAuthSuccess は認証成功を記録する。
func (c *Collector) RecordAuthSuccess() {
	c.authSuccess.Inc()
}

// RecordAuthFailure は認証失敗をエラーコード別に記録する。
func (c *Collector) RecordAuthFailure(code string) {
	c.authFailure.WithLabelValues(code).Inc()
}

// RecordOrderSubmitted は注文確定を記録する。
func (c *Collector) RecordOrderSubmitted(total float64) {
	c.ordersTotal.Inc()
	c.orderAmount.Observe(total)
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
