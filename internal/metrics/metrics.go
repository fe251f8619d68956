// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordLoginSuccess()
	RecordLoginFailure(code string)
	RecordItemCreated()
	RecordItemUpdated()
	RecordItemDeleted()
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess    prometheus.Counter
	loginFail       *prometheus.CounterVec
	itemCreated     prometheus.Counter
	itemUpdated     prometheus.Counter
	itemDeleted     prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_login_fail_total",
			Help: "エラーコード別のログイン失敗数",
		}, []string{"code"}),
		itemCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_item_created_total",
			Help: "作成されたアイテムの合計数",
		}),
		itemUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_item_updated_total",
			Help: "更新されたアイテムの合計数",
		}),
		itemDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_item_deleted_total",
			Help: "削除されたアイテムの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.itemCreated,
		c.itemUpdated,
		c.itemDeleted,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗をエラーコード別に記録する。
func (c *Collector) RecordLoginFailure(code string) {
	c.loginFail.WithLabelValues(code).Inc()
}

// RecordItemCreated はアイテム作成を記録する。
func (c *Collector) RecordItemCreated() {
	c.itemCreated.Inc()
}

// RecordItemUpdated はアイテム更新を記録する。
func (c *Collector) RecordItemUpdated() {
	c.itemUpdated.Inc()
}

// RecordItemDeleted はアイテム削除を記録する。
func (c *Collector) RecordItemDeleted() {
	c.itemDeleted.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
