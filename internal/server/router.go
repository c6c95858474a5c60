package server

import (
	"context"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tripwise/internal/app/domain/auth"
	"tripwise/internal/app/domain/itinerary"
	"tripwise/internal/pkg/config"
	"tripwise/internal/pkg/middleware"
)

// SetupRouter configures and returns the Gin router with all middleware and
// routes wired to their services.
func SetupRouter(dbPool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.OTELGinMiddleware("tripwise"))

	generator, err := itinerary.NewGeminiGenerator(context.Background(), cfg.Gemini, logger)
	if err != nil {
		return nil, err
	}

	authRepo := auth.NewPostgresRepo(dbPool, logger)
	authService := auth.NewService(authRepo, cfg, logger)
	authHandlers := auth.NewHandlers(authService, logger)

	itineraryRepo := itinerary.NewPostgresRepository(dbPool, logger)
	itineraryService := itinerary.NewServiceImpl(itineraryRepo, generator, logger)
	itineraryHandlers := itinerary.NewHandlers(itineraryService, logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandlers.RegisterHandler)
		authRoutes.POST("/login", authHandlers.LoginHandler)
		authRoutes.POST("/refresh", authHandlers.RefreshHandler)
		authRoutes.POST("/logout", authHandlers.LogoutHandler)
	}

	itineraries := v1.Group("/itineraries")
	itineraries.Use(middleware.JWTAuthMiddleware(middleware.JWTConfig{
		SecretKey: cfg.JWT.SecretKey,
		Logger:    logger,
	}))
	{
		itineraries.POST("", itineraryHandlers.CreateItineraryHandler)
		itineraries.GET("", itineraryHandlers.ListItinerariesHandler)
		itineraries.GET("/:id", itineraryHandlers.GetItineraryHandler)
		itineraries.DELETE("/:id", itineraryHandlers.DeleteItineraryHandler)
	}

	return r, nil
}
