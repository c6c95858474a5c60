package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// PGXQuerier is the subset of pgxpool.Pool the repository needs.
type PGXQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repo = (*PostgresRepo)(nil)

// Repo defines the contract for user and refresh-token persistence.
type Repo interface {
	// GetUserByEmail fetches user details needed for credential validation.
	GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error)
	// Register stores a new user with a HASHED password. Returns new user ID.
	Register(ctx context.Context, username, email, hashedPassword string) (string, error)

	// Refresh token handling.
	StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error)
	InvalidateRefreshToken(ctx context.Context, refreshToken string) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error
}

type PostgresRepo struct {
	logger *zap.Logger
	db     PGXQuerier
}

func NewPostgresRepo(db PGXQuerier, logger *zap.Logger) *PostgresRepo {
	return &PostgresRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresRepo) GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var user models.UserAuth
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user with email not found: %w", models.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &user, nil
}

func (r *PostgresRepo) GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID),
	))
	defer span.End()

	var user models.UserAuth
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &user, nil
}

func (r *PostgresRepo) Register(ctx context.Context, username, email, hashedPassword string) (string, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Register", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "Register"), zap.String("email", email))

	var userID string
	query := `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id`
	err := r.db.QueryRow(ctx, query, username, email, hashedPassword).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
			l.Warn("Attempted to register duplicate email")
			span.SetStatus(codes.Error, "Duplicate email")
			return "", fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
		l.Error("Failed to insert user", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return "", fmt.Errorf("database error registering user: %w", err)
	}

	l.Info("User registered", zap.String("userID", userID))
	span.SetStatus(codes.Ok, "User registered")
	return userID, nil
}

func (r *PostgresRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "StoreRefreshToken", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "refresh_tokens"),
	))
	defer span.End()

	query := `INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, token, userID, expiresAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return fmt.Errorf("database error storing refresh token: %w", err)
	}

	span.SetStatus(codes.Ok, "Refresh token stored")
	return nil
}

func (r *PostgresRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "ValidateRefreshToken", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "refresh_tokens"),
	))
	defer span.End()

	var userID string
	query := `
        SELECT user_id FROM refresh_tokens
        WHERE token = $1 AND NOT revoked AND expires_at > NOW()`
	err := r.db.QueryRow(ctx, query, refreshToken).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Token invalid or expired")
			return "", fmt.Errorf("refresh token invalid or expired: %w", models.ErrUnauthenticated)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return "", fmt.Errorf("database error validating refresh token: %w", err)
	}

	span.SetStatus(codes.Ok, "Refresh token valid")
	return userID, nil
}

func (r *PostgresRepo) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "InvalidateRefreshToken", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "refresh_tokens"),
	))
	defer span.End()

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`
	_, err := r.db.Exec(ctx, query, refreshToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error revoking refresh token: %w", err)
	}

	span.SetStatus(codes.Ok, "Refresh token revoked")
	return nil
}

func (r *PostgresRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "InvalidateAllUserRefreshTokens", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "refresh_tokens"),
		attribute.String("db.user.id", userID),
	))
	defer span.End()

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`
	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error revoking user tokens: %w", err)
	}

	span.SetStatus(codes.Ok, "User tokens revoked")
	return nil
}
