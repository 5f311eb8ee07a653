// Package middleware holds the connect interceptors shared by the services.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/fooddept/fdbms/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// and records its latency. Client errors (a connect code other than
// Internal or Unknown) are logged at Warn, everything else that fails at
// Error.
func LoggingInterceptor(logger *slog.Logger, m *metrics.Metrics) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			elapsed := time.Since(start)
			duration := elapsed.Milliseconds()
			if err == nil {
				m.ObserveRPC(procedure, "ok", elapsed)
				logger.Info("RPC ok",
					"procedure", procedure,
					"duration_ms", duration,
				)
				return resp, nil
			}

			code := connect.CodeOf(err)
			m.ObserveRPC(procedure, code.String(), elapsed)

			var connectErr *connect.Error
			if errors.As(err, &connectErr) && code != connect.CodeInternal && code != connect.CodeUnknown {
				logger.Warn("RPC error",
					"procedure", procedure,
					"code", code,
					"error", connectErr.Message(),
					"duration_ms", duration,
				)
			} else {
				logger.Error("RPC error",
					"procedure", procedure,
					"code", code,
					"error", err,
					"duration_ms", duration,
				)
			}
			return resp, err
		}
	}
}
