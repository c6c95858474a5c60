package itinerary

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripwise/internal/app/models"
)

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateItineraryText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateItinerary(ctx context.Context, record *models.Itinerary) (uuid.UUID, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) GetItinerariesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Itinerary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Itinerary), args.Error(1)
}

func (m *MockRepository) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*models.Itinerary, error) {
	args := m.Called(ctx, userID, itineraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Itinerary), args.Error(1)
}

func (m *MockRepository) DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error {
	args := m.Called(ctx, userID, itineraryID)
	return args.Error(0)
}

func validPreferences() models.TravelPreferences {
	return models.TravelPreferences{
		Destination:  "Lima",
		StartDate:    date("2025-09-10"),
		EndDate:      date("2025-09-13"),
		Budget:       models.BudgetModerate,
		NumTravelers: 2,
		Interests:    []string{"food", "culture"},
	}
}

func newTestService(repo Repository, generator Generator) *ServiceImpl {
	return NewServiceImpl(repo, generator, zap.NewNop())
}

func TestCreateItineraryValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.TravelPreferences)
	}{
		{"Empty destination", func(p *models.TravelPreferences) { p.Destination = "" }},
		{"Zero travelers", func(p *models.TravelPreferences) { p.NumTravelers = 0 }},
		{"Too many travelers", func(p *models.TravelPreferences) { p.NumTravelers = 21 }},
		{"No interests", func(p *models.TravelPreferences) { p.Interests = nil }},
		{"Unknown budget", func(p *models.TravelPreferences) { p.Budget = "extravagant" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			mockGen := new(MockGenerator)
			service := newTestService(mockRepo, mockGen)

			prefs := validPreferences()
			tc.mutate(&prefs)

			_, err := service.CreateItinerary(context.Background(), uuid.New(), prefs)
			assert.ErrorIs(t, err, models.ErrValidation)
			mockGen.AssertNotCalled(t, "GenerateItineraryText")
			mockRepo.AssertNotCalled(t, "CreateItinerary")
		})
	}
}

func TestCreateItineraryGenerationFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen)

	mockGen.On("GenerateItineraryText", mock.Anything, mock.Anything).
		Return("", models.ErrGenerationFailed).Once()

	_, err := service.CreateItinerary(context.Background(), uuid.New(), validPreferences())
	assert.ErrorIs(t, err, models.ErrGenerationFailed)

	// A failed generation call must leave nothing behind
	mockRepo.AssertNotCalled(t, "CreateItinerary")
	mockGen.AssertExpectations(t)
}

func TestCreateItineraryUnparsableOutputUsesFallback(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen)

	mockGen.On("GenerateItineraryText", mock.Anything, mock.Anything).
		Return("I could not build the itinerary as JSON, sorry.", nil).Once()
	mockRepo.On("CreateItinerary", mock.Anything, mock.AnythingOfType("*models.Itinerary")).
		Run(func(args mock.Arguments) {
			record := args.Get(1).(*models.Itinerary)
			record.ID = uuid.New()
		}).
		Return(uuid.New(), nil).Once()

	record, err := service.CreateItinerary(context.Background(), uuid.New(), validPreferences())
	require.NoError(t, err)

	// Three planned days of five fixed activities each
	require.Len(t, record.Content.Days, 3)
	for _, day := range record.Content.Days {
		assert.Len(t, day.Activities, 5)
	}
	assert.Equal(t, "Your moderate trip to Lima", record.Content.Title)

	mockGen.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestCreateItinerarySuccess(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen)

	userID := uuid.New()
	generated := `{"title":"Lima Highlights","description":"Three days","days":[{"day":1,"activities":[{"time":"09:00 AM","activity":"Ceviche tasting","description":"Fresh ceviche","type":"food"}]}]}`

	mockGen.On("GenerateItineraryText", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return len(prompt) > 0
	})).Return(generated, nil).Once()
	mockRepo.On("CreateItinerary", mock.Anything, mock.AnythingOfType("*models.Itinerary")).
		Run(func(args mock.Arguments) {
			record := args.Get(1).(*models.Itinerary)
			record.ID = uuid.New()
		}).
		Return(uuid.New(), nil).Once()

	record, err := service.CreateItinerary(context.Background(), userID, validPreferences())
	require.NoError(t, err)

	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, "Lima Highlights", record.Content.Title)
	require.Len(t, record.Content.Days, 1)
	assert.Equal(t, models.ActivityTypeFood, record.Content.Days[0].Activities[0].Type)

	mockGen.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestCreateItineraryPersistenceFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen)

	mockGen.On("GenerateItineraryText", mock.Anything, mock.Anything).
		Return(`{"title":"T","description":"D","days":[]}`, nil).Once()
	mockRepo.On("CreateItinerary", mock.Anything, mock.Anything).
		Return(uuid.Nil, errors.New("connection refused")).Once()

	_, err := service.CreateItinerary(context.Background(), uuid.New(), validPreferences())
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestGetItineraryCacheOwnership(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen)

	owner := uuid.New()
	stranger := uuid.New()
	itineraryID := uuid.New()
	record := &models.Itinerary{ID: itineraryID, UserID: owner, Destination: "Lima"}

	mockRepo.On("GetItinerary", mock.Anything, owner, itineraryID).Return(record, nil).Once()

	// First fetch populates the cache
	got, err := service.GetItinerary(context.Background(), owner, itineraryID)
	require.NoError(t, err)
	assert.Equal(t, itineraryID, got.ID)

	// Second fetch by the owner hits the cache, no repo call
	got, err = service.GetItinerary(context.Background(), owner, itineraryID)
	require.NoError(t, err)
	assert.Equal(t, itineraryID, got.ID)

	// A different user must not be able to read the cached record
	_, err = service.GetItinerary(context.Background(), stranger, itineraryID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	mockRepo.AssertExpectations(t)
}

func TestGetItineraryNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockGenerator))

	userID := uuid.New()
	itineraryID := uuid.New()
	mockRepo.On("GetItinerary", mock.Anything, userID, itineraryID).
		Return(nil, models.ErrNotFound).Once()

	_, err := service.GetItinerary(context.Background(), userID, itineraryID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListItineraries(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockGenerator))

	userID := uuid.New()
	expected := []*models.Itinerary{
		{ID: uuid.New(), UserID: userID, Destination: "Lima"},
		{ID: uuid.New(), UserID: userID, Destination: "Porto"},
	}
	mockRepo.On("GetItinerariesByUser", mock.Anything, userID).Return(expected, nil).Once()

	records, err := service.ListItineraries(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDeleteItineraryEvictsCache(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockGenerator))

	userID := uuid.New()
	itineraryID := uuid.New()
	record := &models.Itinerary{ID: itineraryID, UserID: userID}

	mockRepo.On("GetItinerary", mock.Anything, userID, itineraryID).Return(record, nil).Twice()
	mockRepo.On("DeleteItinerary", mock.Anything, userID, itineraryID).Return(nil).Once()

	_, err := service.GetItinerary(context.Background(), userID, itineraryID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteItinerary(context.Background(), userID, itineraryID))

	// The next read misses the cache and goes back to the repository
	_, err = service.GetItinerary(context.Background(), userID, itineraryID)
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}
