package models

import (
	"time"

	"github.com/google/uuid"
)

// Budget tiers accepted in travel preferences.
const (
	BudgetLow      = "budget"
	BudgetModerate = "moderate"
	BudgetLuxury   = "luxury"
)

// Activity categories the generator is instructed to use. Anything else coming
// back from the model is degraded to ActivityTypeGeneral at the parse boundary.
const (
	ActivityTypeCulture    = "culture"
	ActivityTypeFood       = "food"
	ActivityTypeNature     = "nature"
	ActivityTypeShopping   = "shopping"
	ActivityTypeAdventure  = "adventure"
	ActivityTypeRelaxation = "relaxation"
	ActivityTypeNightlife  = "nightlife"
	ActivityTypeGeneral    = "general"
)

// InterestTags is the fixed set of interest categories a user can pick from.
var InterestTags = []string{
	"nature", "culture", "food", "adventure",
	"relaxation", "nightlife", "shopping", "family",
}

// TravelPreferences is the per-request generation input.
type TravelPreferences struct {
	Destination    string    `json:"destination"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Budget         string    `json:"budget"`
	NumTravelers   int       `json:"num_travelers"`
	Interests      []string  `json:"interests"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
}

// Activity is a single scheduled event within a day. Time is a display string,
// not a machine time.
type Activity struct {
	Time        string `json:"time"`
	Activity    string `json:"activity"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Type        string `json:"type,omitempty"`
}

type Day struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
}

// GeneratedItinerary is the structured content produced by the generation
// pipeline (AI output or the deterministic fallback). Immutable once stored.
type GeneratedItinerary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Days        []Day  `json:"days"`
}

// Itinerary is the persisted record, owned by exactly one user.
type Itinerary struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	Destination    string             `json:"destination"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	Budget         string             `json:"budget"`
	NumTravelers   int                `json:"num_travelers"`
	Interests      []string           `json:"interests"`
	AdditionalInfo string             `json:"additional_info,omitempty"`
	Content        GeneratedItinerary `json:"content"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ValidBudget reports whether b is one of the accepted budget tiers.
func ValidBudget(b string) bool {
	switch b {
	case BudgetLow, BudgetModerate, BudgetLuxury:
		return true
	}
	return false
}

// NormalizeActivityType maps a model-supplied category onto the known set,
// degrading unrecognized or missing values to the generic category.
func NormalizeActivityType(t string) string {
	switch t {
	case ActivityTypeCulture, ActivityTypeFood, ActivityTypeNature, ActivityTypeShopping,
		ActivityTypeAdventure, ActivityTypeRelaxation, ActivityTypeNightlife:
		return t
	}
	return ActivityTypeGeneral
}
