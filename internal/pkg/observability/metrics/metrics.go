package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	AuthRequestsTotal         metric.Int64Counter
	ItinerariesGeneratedTotal metric.Int64Counter
	GenerationDurationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("tripwise")
		var err error
		m := &AppMetrics{}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of authentication requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.ItinerariesGeneratedTotal, err = meter.Int64Counter(
			"itineraries_generated_total",
			metric.WithDescription("Total number of itineraries produced by the generation pipeline"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itineraries_generated_total: %v", err)
		}

		m.GenerationDurationSeconds, err = meter.Float64Histogram(
			"generation_duration_seconds",
			metric.WithDescription("Duration of generation backend calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generation_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, initializing it
// against the current global MeterProvider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
