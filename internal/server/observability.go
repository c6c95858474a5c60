package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tripwise/internal/pkg/observability/metrics"
	"tripwise/internal/pkg/observability/tracer"
)

// ObservabilityShutdownFunc is the function type returned by InitObservability
type ObservabilityShutdownFunc func(context.Context) error

// InitObservability initializes OpenTelemetry and application metrics
func InitObservability(serviceName, metricsAddr, otlpEndpoint string, logger *zap.Logger) (ObservabilityShutdownFunc, error) {
	otelShutdown, err := tracer.InitOtelProviders(serviceName, metricsAddr, otlpEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics.InitAppMetrics()
	logger.Info("Observability initialized", zap.String("metrics_endpoint", metricsAddr+"/metrics"))

	return otelShutdown, nil
}
