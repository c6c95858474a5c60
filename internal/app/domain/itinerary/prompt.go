package itinerary

import (
	"fmt"
	"strings"

	"tripwise/internal/app/models"
)

// BuildItineraryPrompt renders travel preferences into the instruction string
// sent to the generation backend. The JSON schema spelled out here is the only
// contract the model sees; the parser still treats the reply as untrusted.
func BuildItineraryPrompt(prefs models.TravelPreferences, days int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a detailed %d-day travel itinerary for a trip to %s.\n\n", days, prefs.Destination)
	fmt.Fprintf(&b, "Trip details:\n")
	fmt.Fprintf(&b, "- Destination: %s\n", prefs.Destination)
	fmt.Fprintf(&b, "- Duration: %d days (%s to %s)\n", days,
		prefs.StartDate.Format("2006-01-02"), prefs.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Budget: %s\n", prefs.Budget)
	fmt.Fprintf(&b, "- Number of travelers: %d\n", prefs.NumTravelers)
	fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(prefs.Interests, ", "))
	if prefs.AdditionalInfo != "" {
		fmt.Fprintf(&b, "- Additional information: %s\n", prefs.AdditionalInfo)
	}

	b.WriteString(`
Respond with a JSON object using exactly this structure:
{
  "title": "Trip title",
  "description": "Short trip summary",
  "days": [
    {
      "day": 1,
      "activities": [
        {
          "time": "09:00 AM",
          "activity": "Activity name",
          "title": "Activity title",
          "description": "What to do and why",
          "location": "Where it happens",
          "type": "culture"
        }
      ]
    }
  ]
}

Rules:
- "type" must be one of: culture, food, nature, shopping, adventure, relaxation, nightlife.
- Include 5-7 activities per day, covering breakfast, lunch and dinner.
- Output ONLY the JSON object. No markdown, no commentary, no text before or after it.
`)

	return b.String()
}
