package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New("shopdesk_test")

	m.CheckoutFinished("success")
	m.CheckoutFinished("success")
	m.StockMoved("decrease", 3)
	m.Compensated("ok")
	m.ObservePayment("cod", "success", 10*time.Millisecond)
	m.ObserveRequest("checkout", http.StatusOK, 5*time.Millisecond)
	m.NotificationSent("failed")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Checkouts.WithLabelValues("success")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.StockMovements.WithLabelValues("decrease")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Compensations.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("checkout", "OK")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Notifications.WithLabelValues("failed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.CheckoutFinished("success")
		m.StockMoved("increase", 1)
		m.Compensated("failed")
		m.ObservePayment("stripe", "error", time.Second)
		m.ObserveRequest("orders", http.StatusNotFound, time.Millisecond)
		m.NotificationSent("sent")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("shopdesk_handler")
	m.CheckoutFinished("declined")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `shopdesk_handler_checkouts_total{outcome="declined"} 1`)
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(time.Millisecond)
	assert.Greater(t, timer.Duration(), time.Duration(0))
}
