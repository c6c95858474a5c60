package itinerary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tripwise/internal/app/models"
	"tripwise/internal/pkg/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary operations.
type Service interface {
	CreateItinerary(ctx context.Context, userID uuid.UUID, prefs models.TravelPreferences) (*models.Itinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID) ([]*models.Itinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*models.Itinerary, error)
	DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error
}

type ServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	generator Generator
	cache     *cache.Cache
}

func NewServiceImpl(repo Repository, generator Generator, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		generator: generator,
		cache:     cache.New(5*time.Minute, 10*time.Minute),
	}
}

// CreateItinerary runs the generation pipeline: preferences are rendered into
// a prompt, the generation backend is called once, and the reply is parsed
// into structured content. Malformed output is recovered locally with the
// deterministic fallback itinerary; a failed generation call aborts the
// operation and nothing is persisted.
func (s *ServiceImpl) CreateItinerary(ctx context.Context, userID uuid.UUID, prefs models.TravelPreferences) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("trip.destination", prefs.Destination),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "CreateItinerary"), zap.String("userID", userID.String()))

	if err := validatePreferences(prefs); err != nil {
		span.SetStatus(codes.Error, "Invalid preferences")
		return nil, err
	}

	days := PlannedDays(prefs.StartDate, prefs.EndDate)
	prompt := BuildItineraryPrompt(prefs, days)
	span.SetAttributes(attribute.Int("trip.days", days))

	genStart := time.Now()
	raw, err := s.generator.GenerateItineraryText(ctx, prompt)
	metrics.Get().GenerationDurationSeconds.Record(ctx, time.Since(genStart).Seconds(),
		metric.WithAttributes(attribute.Bool("error", err != nil)))
	if err != nil {
		l.Error("Generation backend call failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, err
	}

	content, parseErr := ParseGeneratedItinerary(raw)
	if parseErr != nil {
		l.Warn("Could not parse generated itinerary, using fallback",
			zap.Error(parseErr),
			zap.Int("raw_length", len(raw)))
		span.AddEvent("fallback_itinerary_substituted")
		content = FallbackItinerary(prefs, days)
	}

	record := &models.Itinerary{
		UserID:         userID,
		Destination:    prefs.Destination,
		StartDate:      prefs.StartDate,
		EndDate:        prefs.EndDate,
		Budget:         prefs.Budget,
		NumTravelers:   prefs.NumTravelers,
		Interests:      prefs.Interests,
		AdditionalInfo: prefs.AdditionalInfo,
		Content:        *content,
	}

	if _, err := s.repo.CreateItinerary(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Persistence failed")
		return nil, err
	}

	s.cache.Set(cacheKey(record.ID), record, cache.DefaultExpiration)
	metrics.Get().ItinerariesGeneratedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("fallback", parseErr != nil)))

	l.Info("Itinerary created",
		zap.String("itineraryID", record.ID.String()),
		zap.Int("days", len(record.Content.Days)),
		zap.Bool("fallback", parseErr != nil))
	span.SetStatus(codes.Ok, "Itinerary created")
	return record, nil
}

// ListItineraries returns the caller's itineraries, newest first.
func (s *ServiceImpl) ListItineraries(ctx context.Context, userID uuid.UUID) ([]*models.Itinerary, error) {
	records, err := s.repo.GetItinerariesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	return records, nil
}

// GetItinerary fetches one record, read-through cached. Ownership is checked
// again on cache hits so one user can never read another's cached record.
func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*models.Itinerary, error) {
	if cached, found := s.cache.Get(cacheKey(itineraryID)); found {
		record := cached.(*models.Itinerary)
		if record.UserID != userID {
			return nil, fmt.Errorf("itinerary %s: %w", itineraryID, models.ErrNotFound)
		}
		return record, nil
	}

	record, err := s.repo.GetItinerary(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey(itineraryID), record, cache.DefaultExpiration)
	return record, nil
}

func (s *ServiceImpl) DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error {
	if err := s.repo.DeleteItinerary(ctx, userID, itineraryID); err != nil {
		return err
	}
	s.cache.Delete(cacheKey(itineraryID))
	return nil
}

func cacheKey(id uuid.UUID) string {
	return "itinerary:" + id.String()
}

func validatePreferences(prefs models.TravelPreferences) error {
	if prefs.Destination == "" {
		return fmt.Errorf("destination is required: %w", models.ErrValidation)
	}
	if prefs.NumTravelers < 1 || prefs.NumTravelers > 20 {
		return fmt.Errorf("number of travelers must be between 1 and 20: %w", models.ErrValidation)
	}
	if len(prefs.Interests) == 0 {
		return fmt.Errorf("at least one interest is required: %w", models.ErrValidation)
	}
	if !models.ValidBudget(prefs.Budget) {
		return fmt.Errorf("budget must be one of budget, moderate, luxury: %w", models.ErrValidation)
	}
	return nil
}
