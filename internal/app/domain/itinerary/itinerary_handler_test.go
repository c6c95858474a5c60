package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripwise/internal/app/models"
)

// MockService is a mock implementation of Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateItinerary(ctx context.Context, userID uuid.UUID, prefs models.TravelPreferences) (*models.Itinerary, error) {
	args := m.Called(ctx, userID, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Itinerary), args.Error(1)
}

func (m *MockService) ListItineraries(ctx context.Context, userID uuid.UUID) ([]*models.Itinerary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Itinerary), args.Error(1)
}

func (m *MockService) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*models.Itinerary, error) {
	args := m.Called(ctx, userID, itineraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Itinerary), args.Error(1)
}

func (m *MockService) DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error {
	args := m.Called(ctx, userID, itineraryID)
	return args.Error(0)
}

func setupTestRouter(service Service, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})

	h := NewHandlers(service, zap.NewNop())
	r.POST("/itineraries", h.CreateItineraryHandler)
	r.GET("/itineraries", h.ListItinerariesHandler)
	r.GET("/itineraries/:id", h.GetItineraryHandler)
	r.DELETE("/itineraries/:id", h.DeleteItineraryHandler)
	return r
}

func createRequestBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"destination":   "Lima",
		"start_date":    "2025-09-10",
		"end_date":      "2025-09-13",
		"budget":        "moderate",
		"num_travelers": 2,
		"interests":     []string{"food", "culture"},
	})
	require.NoError(t, err)
	return body
}

func TestCreateItineraryHandler(t *testing.T) {
	userID := uuid.New()
	mockService := new(MockService)
	router := setupTestRouter(mockService, userID)

	record := &models.Itinerary{ID: uuid.New(), UserID: userID, Destination: "Lima"}
	mockService.On("CreateItinerary", mock.Anything, userID, mock.AnythingOfType("models.TravelPreferences")).
		Return(record, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/itineraries", bytes.NewReader(createRequestBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateItineraryHandlerGenerationFailure(t *testing.T) {
	userID := uuid.New()
	mockService := new(MockService)
	router := setupTestRouter(mockService, userID)

	mockService.On("CreateItinerary", mock.Anything, userID, mock.Anything).
		Return(nil, models.ErrGenerationFailed).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/itineraries", bytes.NewReader(createRequestBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateItineraryHandlerBadDates(t *testing.T) {
	userID := uuid.New()
	mockService := new(MockService)
	router := setupTestRouter(mockService, userID)

	body, err := json.Marshal(map[string]any{
		"destination":   "Lima",
		"start_date":    "10/09/2025",
		"end_date":      "2025-09-13",
		"budget":        "moderate",
		"num_travelers": 2,
		"interests":     []string{"food"},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/itineraries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateItinerary")
}

func TestListItinerariesHandlerEmpty(t *testing.T) {
	userID := uuid.New()
	mockService := new(MockService)
	router := setupTestRouter(mockService, userID)

	mockService.On("ListItineraries", mock.Anything, userID).
		Return([]*models.Itinerary(nil), nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/itineraries", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Itineraries []*models.Itinerary `json:"itineraries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Itineraries)
	assert.Empty(t, resp.Itineraries)
}

func TestGetItineraryHandlerNotFound(t *testing.T) {
	userID := uuid.New()
	mockService := new(MockService)
	router := setupTestRouter(mockService, userID)

	itineraryID := uuid.New()
	mockService.On("GetItinerary", mock.Anything, userID, itineraryID).
		Return(nil, models.ErrNotFound).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/itineraries/"+itineraryID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetItineraryHandlerInvalidID(t *testing.T) {
	userID := uuid.New()
	mockService := new(MockService)
	router := setupTestRouter(mockService, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/itineraries/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetItinerary")
}

func TestDeleteItineraryHandler(t *testing.T) {
	userID := uuid.New()
	mockService := new(MockService)
	router := setupTestRouter(mockService, userID)

	itineraryID := uuid.New()
	mockService.On("DeleteItinerary", mock.Anything, userID, itineraryID).Return(nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/itineraries/"+itineraryID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

func TestHandlersRequireAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandlers(new(MockService), zap.NewNop())
	r.GET("/itineraries", h.ListItinerariesHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/itineraries", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
