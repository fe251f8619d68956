package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestRecordLoginSuccess_IncrementsCounter はログイン成功カウンタが増加することを検証する。
func TestRecordLoginSuccess_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordLoginSuccess()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "catalog_login_success_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 2 {
				t.Errorf("login_success_total = %v, want 2", val)
			}
		}
	}
	if !found {
		t.Error("catalog_login_success_total metric not found")
	}
}

// TestRecordLoginFailure_IncrementsCounterWithLabel はログイン失敗カウンタがエラーコード別に増加することを検証する。
func TestRecordLoginFailure_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginFailure("STATE_MISMATCH")
	c.RecordLoginFailure("STATE_MISMATCH")
	c.RecordLoginFailure("AUDIENCE_MISMATCH")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "catalog_login_fail_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "STATE_MISMATCH":
					if val != 2 {
						t.Errorf("login_fail_total{code=STATE_MISMATCH} = %v, want 2", val)
					}
				case "AUDIENCE_MISMATCH":
					if val != 1 {
						t.Errorf("login_fail_total{code=AUDIENCE_MISMATCH} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("catalog_login_fail_total metric not found")
	}
}

// TestRecordItemCounters_Increment はアイテム操作カウンタが増加することを検証する。
func TestRecordItemCounters_Increment(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordItemCreated()
	c.RecordItemCreated()
	c.RecordItemUpdated()
	c.RecordItemDeleted()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	wants := map[string]float64{
		"catalog_item_created_total": 2,
		"catalog_item_updated_total": 1,
		"catalog_item_deleted_total": 1,
	}
	for _, mf := range metrics {
		want, ok := wants[mf.GetName()]
		if !ok {
			continue
		}
		delete(wants, mf.GetName())
		val := mf.GetMetric()[0].GetCounter().GetValue()
		if val != want {
			t.Errorf("%s = %v, want %v", mf.GetName(), val, want)
		}
	}
	for name := range wants {
		t.Errorf("%s metric not found", name)
	}
}

// TestRecordRequestDuration_ObservesHistogram はリクエスト処理時間のヒストグラムに値が記録されることを検証する。
func TestRecordRequestDuration_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestDuration(100 * time.Millisecond)
	c.RecordRequestDuration(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "catalog_request_duration_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("catalog_request_duration_seconds metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordLoginFailure("EXCHANGE_FAILED")
	c.RecordItemCreated()
	c.RecordHTTPStatus(200)
	c.RecordRequestDuration(500 * time.Millisecond)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"catalog_login_success_total",
		"catalog_login_fail_total",
		"catalog_item_created_total",
		"catalog_http_status_total",
		"catalog_request_duration_seconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}
