package validation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/LuiccianDev/mcp-word-office/internal/metrics"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// WithLogging logs one line per invocation with a generated invocation ID,
// the tool name, duration, and outcome.
func WithLogging(log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id := uuid.NewString()
			start := time.Now()

			log.Debug().
				Str("invocation_id", id).
				Str("tool", req.Params.Name).
				Msg("tool invocation started")

			res, err := next(ctx, req)

			evt := log.Info()
			if err != nil || (res != nil && res.IsError) {
				evt = log.Warn()
			}
			evt.
				Str("invocation_id", id).
				Str("tool", req.Params.Name).
				Dur("duration", time.Since(start)).
				Bool("is_error", err != nil || (res != nil && res.IsError)).
				Msg("tool invocation finished")

			return res, err
		}
	}
}

// WithRecovery converts a handler panic into a structured error envelope so
// a single bad invocation cannot take down the stdio session.
func WithRecovery(log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("tool", req.Params.Name).
						Interface("panic", r).
						Msg("tool handler panicked")
					res = worderr.Handle(worderr.Processing("internal error: %v", r), "", req.Params.Name).MCP()
					err = nil
				}
			}()
			return next(ctx, req)
		}
	}
}

// WithMetrics records call counts, error types, and latency per tool.
func WithMetrics() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			res, err := next(ctx, req)
			metrics.ObserveCall(req.Params.Name, start, outcomeErrorType(res, err))
			return res, err
		}
	}
}

// outcomeErrorType extracts the classified error type from an envelope
// result, or "" for success.
func outcomeErrorType(res *mcp.CallToolResult, err error) string {
	if err != nil {
		return "protocol"
	}
	if res == nil || !res.IsError {
		return ""
	}
	for _, c := range res.Content {
		tc, ok := c.(mcp.TextContent)
		if !ok {
			continue
		}
		var envelope struct {
			ErrorType string `json:"error_type"`
		}
		if json.Unmarshal([]byte(tc.Text), &envelope) == nil && envelope.ErrorType != "" {
			return envelope.ErrorType
		}
	}
	return string(worderr.KindUnknown)
}

// WithRateLimit blocks until the shared token bucket admits the invocation.
// A nil limiter disables limiting.
func WithRateLimit(l *rate.Limiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if l != nil {
				if err := l.Wait(ctx); err != nil {
					return worderr.Handle(err, "", req.Params.Name).MCP(), nil
				}
			}
			return next(ctx, req)
		}
	}
}
