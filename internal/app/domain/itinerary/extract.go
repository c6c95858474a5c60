package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"tripwise/internal/app/models"
)

// cleanJSONResponse removes markdown code fences the model sometimes wraps
// its JSON output in.
func cleanJSONResponse(response string) string {
	cleaned := strings.ReplaceAll(response, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ExtractJSONObject locates the first balanced {...} region in text and
// returns it. The scanner is string- and escape-aware, so prose containing
// stray braces before or after the object does not break extraction.
func ExtractJSONObject(text string) (string, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		if end, ok := scanBalanced(text, start); ok {
			return text[start : end+1], true
		}
	}
	return "", false
}

// scanBalanced walks text from an opening brace and returns the index of the
// matching closing brace.
func scanBalanced(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseGeneratedItinerary turns raw generated text into a validated
// GeneratedItinerary. It fails with models.ErrNoJSONFound when no balanced
// object is present and models.ErrInvalidItinerary when the object does not
// decode. The caller decides whether to substitute the fallback itinerary.
func ParseGeneratedItinerary(raw string) (*models.GeneratedItinerary, error) {
	cleaned := cleanJSONResponse(raw)

	object, found := ExtractJSONObject(cleaned)
	if !found {
		return nil, models.ErrNoJSONFound
	}

	var content models.GeneratedItinerary
	if err := json.Unmarshal([]byte(object), &content); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidItinerary, err)
	}

	normalizeItinerary(&content)
	return &content, nil
}

// normalizeItinerary applies boundary normalization once, so render sites can
// trust the structure: days are renumbered to a contiguous 1-based sequence
// and unknown activity types degrade to the generic category.
func normalizeItinerary(content *models.GeneratedItinerary) {
	for i := range content.Days {
		content.Days[i].Day = i + 1
		for j := range content.Days[i].Activities {
			a := &content.Days[i].Activities[j]
			a.Type = models.NormalizeActivityType(a.Type)
			if a.Title == "" {
				a.Title = a.Activity
			}
		}
	}
}
