package itinerary

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripwise/internal/app/models"
	"tripwise/internal/pkg/middleware"
)

type CreateItineraryRequest struct {
	Destination    string   `json:"destination" binding:"required"`
	StartDate      string   `json:"start_date" binding:"required"`
	EndDate        string   `json:"end_date" binding:"required"`
	Budget         string   `json:"budget" binding:"required"`
	NumTravelers   int      `json:"num_travelers" binding:"required"`
	Interests      []string `json:"interests" binding:"required"`
	AdditionalInfo string   `json:"additional_info"`
}

type Handlers struct {
	service Service
	logger  *zap.Logger
}

func NewHandlers(service Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

// CreateItineraryHandler generates and persists an itinerary for the
// authenticated user. A generation backend failure maps to 502 and leaves no
// record behind.
func (h *Handlers) CreateItineraryHandler(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	prefs, err := req.toPreferences()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.CreateItinerary(c.Request.Context(), userID, prefs)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrGenerationFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate itinerary. Please try again."})
		default:
			h.logger.Error("Create itinerary failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		}
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListItinerariesHandler returns the caller's itineraries, newest first.
func (h *Handlers) ListItinerariesHandler(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	records, err := h.service.ListItineraries(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("List itineraries failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch itineraries"})
		return
	}

	if records == nil {
		records = []*models.Itinerary{}
	}
	c.JSON(http.StatusOK, gin.H{"itineraries": records})
}

func (h *Handlers) GetItineraryHandler(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid itinerary id"})
		return
	}

	record, err := h.service.GetItinerary(c.Request.Context(), userID, itineraryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
			return
		}
		h.logger.Error("Get itinerary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch itinerary"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handlers) DeleteItineraryHandler(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid itinerary id"})
		return
	}

	if err := h.service.DeleteItinerary(c.Request.Context(), userID, itineraryID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
			return
		}
		h.logger.Error("Delete itinerary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete itinerary"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (r CreateItineraryRequest) toPreferences() (models.TravelPreferences, error) {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return models.TravelPreferences{}, errors.New("start_date must be in YYYY-MM-DD format")
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return models.TravelPreferences{}, errors.New("end_date must be in YYYY-MM-DD format")
	}

	return models.TravelPreferences{
		Destination:    r.Destination,
		StartDate:      start,
		EndDate:        end,
		Budget:         r.Budget,
		NumTravelers:   r.NumTravelers,
		Interests:      r.Interests,
		AdditionalInfo: r.AdditionalInfo,
	}, nil
}
