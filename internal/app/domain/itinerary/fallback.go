package itinerary

import (
	"fmt"
	"strings"

	"tripwise/internal/app/models"
)

// FallbackItinerary builds the deterministic itinerary substituted when the
// generation backend's output cannot be parsed. It always yields exactly
// `days` days with five fixed activities each, so the pipeline produces a
// structurally valid itinerary no matter what the model returned.
func FallbackItinerary(prefs models.TravelPreferences, days int) *models.GeneratedItinerary {
	interestType := models.ActivityTypeAdventure
	if len(prefs.Interests) > 0 {
		interestType = prefs.Interests[0]
	}

	content := &models.GeneratedItinerary{
		Title: fmt.Sprintf("Your %s trip to %s", prefs.Budget, prefs.Destination),
		Description: fmt.Sprintf("A %d-day itinerary for %d traveler(s) focusing on %s.",
			days, prefs.NumTravelers, strings.Join(prefs.Interests, ", ")),
		Days: make([]models.Day, 0, days),
	}

	for i := 1; i <= days; i++ {
		content.Days = append(content.Days, models.Day{
			Day: i,
			Activities: []models.Activity{
				{
					Time:        "09:00",
					Activity:    "Breakfast",
					Title:       "Breakfast",
					Description: "Start your day with a local breakfast",
					Location:    "Local cafe",
					Type:        models.ActivityTypeFood,
				},
				{
					Time:        "11:00",
					Activity:    "Sightseeing",
					Title:       "Sightseeing",
					Description: "Visit popular attractions",
					Location:    "City center",
					Type:        models.ActivityTypeCulture,
				},
				{
					Time:        "14:00",
					Activity:    "Lunch",
					Title:       "Lunch",
					Description: "Enjoy local cuisine",
					Location:    "Restaurant district",
					Type:        models.ActivityTypeFood,
				},
				{
					Time:        "16:00",
					Activity:    "Activity",
					Title:       "Afternoon Activity",
					Description: "Engage in an activity based on your interests",
					Location:    "Various locations",
					Type:        interestType,
				},
				{
					Time:        "19:00",
					Activity:    "Dinner",
					Title:       "Dinner",
					Description: "Experience local nightlife and cuisine",
					Location:    "Downtown",
					Type:        models.ActivityTypeFood,
				},
			},
		})
	}

	return content
}
