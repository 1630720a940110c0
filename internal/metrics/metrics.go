package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// チェックアウトの結果をresultラベルで数える。
// result: completed / empty_cart / insufficient_stock / conflict / payment_failed / error
type CheckoutMetrics struct {
	Attempts *prometheus.CounterVec
	Duration prometheus.Histogram
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	factory := promauto.With(reg)

	return &CheckoutMetrics{
		Attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "store",
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Number of checkout attempts by result.",
		}, []string{"result"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "store",
			Subsystem: "checkout",
			Name:      "duration_seconds",
			Help:      "Checkout latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// /metrics用
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
