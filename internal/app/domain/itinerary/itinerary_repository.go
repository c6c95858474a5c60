package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tripwise/internal/app/models"
)

// PGXQuerier is the subset of pgxpool.Pool the repository needs. Tests supply
// a pgxmock pool through the same interface.
type PGXQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*PostgresRepository)(nil)

// Repository defines the persistence contract for itinerary records.
// Records are immutable once created; there is no update operation.
type Repository interface {
	CreateItinerary(ctx context.Context, record *models.Itinerary) (uuid.UUID, error)
	GetItinerariesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Itinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*models.Itinerary, error)
	DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error
}

type PostgresRepository struct {
	logger *zap.Logger
	db     PGXQuerier
}

func NewPostgresRepository(db PGXQuerier, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

const itineraryColumns = `id, user_id, destination, start_date, end_date, budget, num_travelers, interests, additional_info, content, created_at`

// CreateItinerary stores a new record under its owner and returns the
// generated identity.
func (r *PostgresRepository) CreateItinerary(ctx context.Context, record *models.Itinerary) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "CreateItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "itineraries"),
		attribute.String("db.user.id", record.UserID.String()),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "CreateItinerary"), zap.String("userID", record.UserID.String()))
	l.Debug("Storing generated itinerary", zap.String("destination", record.Destination))

	contentJSON, err := json.Marshal(record.Content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Content serialization failed")
		return uuid.Nil, fmt.Errorf("failed to serialize itinerary content: %w", err)
	}

	query := `
        INSERT INTO itineraries (user_id, destination, start_date, end_date, budget, num_travelers, interests, additional_info, content)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		record.UserID,
		record.Destination,
		record.StartDate,
		record.EndDate,
		record.Budget,
		record.NumTravelers,
		record.Interests,
		record.AdditionalInfo,
		contentJSON,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		l.Error("Failed to insert itinerary", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return uuid.Nil, fmt.Errorf("database error creating itinerary: %w", err)
	}

	l.Info("Itinerary stored", zap.String("itineraryID", record.ID.String()))
	span.SetAttributes(attribute.String("db.itinerary.id", record.ID.String()))
	span.SetStatus(codes.Ok, "Itinerary created")
	return record.ID, nil
}

// GetItinerariesByUser returns all records owned by userID, newest first.
func (r *PostgresRepository) GetItinerariesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetItinerariesByUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "itineraries"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "GetItinerariesByUser"), zap.String("userID", userID.String()))

	query, args, err := sq.Select(itineraryColumns).
		From("itineraries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build itinerary list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		l.Error("Failed to query itineraries", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching itineraries: %w", err)
	}
	defer rows.Close()

	var records []*models.Itinerary
	for rows.Next() {
		record, err := scanItinerary(rows)
		if err != nil {
			l.Error("Failed to scan itinerary row", zap.Error(err))
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning itinerary: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		l.Error("Error iterating itinerary rows", zap.Error(err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading itineraries: %w", err)
	}

	l.Debug("Fetched itineraries", zap.Int("count", len(records)))
	span.SetStatus(codes.Ok, "Itineraries fetched")
	return records, nil
}

// GetItinerary returns a single record. Records belonging to a different
// owner are indistinguishable from missing ones.
func (r *PostgresRepository) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "itineraries"),
		attribute.String("db.itinerary.id", itineraryID.String()),
	))
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM itineraries WHERE id = $1 AND user_id = $2`, itineraryColumns)

	row := r.db.QueryRow(ctx, query, itineraryID, userID)
	record, err := scanItinerary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Itinerary not found")
			return nil, fmt.Errorf("itinerary %s: %w", itineraryID, models.ErrNotFound)
		}
		r.logger.Error("Failed to fetch itinerary", zap.String("itineraryID", itineraryID.String()), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching itinerary: %w", err)
	}

	span.SetStatus(codes.Ok, "Itinerary fetched")
	return record, nil
}

// DeleteItinerary removes a record. Deleting an unknown or foreign id is an
// error, per the store's pass-through behavior.
func (r *PostgresRepository) DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "DeleteItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "itineraries"),
		attribute.String("db.itinerary.id", itineraryID.String()),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "DeleteItinerary"), zap.String("itineraryID", itineraryID.String()))

	query := `DELETE FROM itineraries WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, itineraryID, userID)
	if err != nil {
		l.Error("Failed to delete itinerary", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting itinerary: %w", err)
	}

	if tag.RowsAffected() == 0 {
		l.Warn("Attempted to delete non-existent itinerary")
		span.SetStatus(codes.Error, "Itinerary not found")
		return fmt.Errorf("itinerary %s: %w", itineraryID, models.ErrNotFound)
	}

	l.Info("Itinerary deleted")
	span.SetStatus(codes.Ok, "Itinerary deleted")
	return nil
}

func scanItinerary(row pgx.Row) (*models.Itinerary, error) {
	var record models.Itinerary
	var contentJSON []byte

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Destination,
		&record.StartDate,
		&record.EndDate,
		&record.Budget,
		&record.NumTravelers,
		&record.Interests,
		&record.AdditionalInfo,
		&contentJSON,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(contentJSON, &record.Content); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary content: %w", err)
	}
	return &record, nil
}
