package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AlertsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinsentry_alerts_triggered_total",
		Help: "Number of alert firing events committed by the alert store.",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinsentry_notifications_sent_total",
		Help: "Number of notifications delivered, by channel.",
	}, []string{"channel"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinsentry_notifications_failed_total",
		Help: "Number of notification delivery failures, by channel.",
	}, []string{"channel"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinsentry_fetch_errors_total",
		Help: "Number of data-source fetch failures, by source.",
	}, []string{"source"})
)

// StartServer exposes /metrics on addr in a background goroutine.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
}
