// Package metrics exposes Prometheus instrumentation for tool invocations
// and an optional HTTP listener for scraping. The stdio transport carries
// the protocol itself, so the listener is off unless an address is
// configured.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// ToolCalls counts tool invocations by tool name and outcome status
	// ("success" or "error").
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "word_mcp_tool_calls_total",
		Help: "Total tool invocations by tool and outcome.",
	}, []string{"tool", "status"})

	// ToolErrors counts failed invocations by tool name and error type.
	ToolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "word_mcp_tool_errors_total",
		Help: "Failed tool invocations by tool and classified error type.",
	}, []string{"tool", "error_type"})

	// ToolDuration observes wall-clock invocation latency per tool.
	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "word_mcp_tool_duration_seconds",
		Help:    "Tool invocation latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})
)

// ObserveCall records one completed invocation. errorType is "" on success.
func ObserveCall(tool string, start time.Time, errorType string) {
	ToolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	if errorType == "" {
		ToolCalls.WithLabelValues(tool, "success").Inc()
		return
	}
	ToolCalls.WithLabelValues(tool, "error").Inc()
	ToolErrors.WithLabelValues(tool, errorType).Inc()
}

// Serve starts the scrape endpoint on addr, exposing /metrics and /healthz.
// It returns the server so the caller can shut it down; errors after startup
// are logged, not fatal.
func Serve(addr string, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics listener started")
	return srv
}

// Shutdown stops the scrape endpoint, waiting up to the context deadline.
func Shutdown(ctx context.Context, srv *http.Server) {
	if srv == nil {
		return
	}
	_ = srv.Shutdown(ctx)
}
