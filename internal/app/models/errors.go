package models

import "errors"

// Domain specific errors shared across services and handlers.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")

	// Generation pipeline errors. ErrNoJSONFound and ErrInvalidItinerary are
	// recovered by substituting the deterministic fallback itinerary;
	// ErrGenerationFailed surfaces to the caller and nothing is persisted.
	ErrGenerationFailed = errors.New("itinerary generation failed")
	ErrNoJSONFound      = errors.New("no JSON object found in generated text")
	ErrInvalidItinerary = errors.New("generated text is not a valid itinerary")
)
