package faceid

import (
	"context"
	"errors"
)

// Provider is the provider-agnostic face identification interface used by
// the access-control workflow.
//
// Rules:
// - No provider SDK/HTTP calls outside faceid adapters.
// - Liveness and matching thresholds are the provider's business; callers
//   only consume an opaque token or a no-match outcome.
// - Never log image bytes or raw tokens.
type Provider interface {
	Name() string
	HealthCheck(ctx context.Context) error

	// Identify submits a captured image and returns the stable face token
	// of the enrolled person, or ErrNoMatch.
	Identify(ctx context.Context, image []byte) (Identification, error)
}

// Identification is the provider's answer for a recognized face.
type Identification struct {
	// FaceToken is opaque and stable per enrolled person.
	FaceToken string `json:"face_token"`

	// Similarity is the provider-reported confidence in [0,1].
	// Informational only; the accept/reject decision already happened
	// provider-side.
	Similarity float64 `json:"similarity"`
}

// ErrNoMatch means the provider found no enrolled face for the image.
var ErrNoMatch = errors.New("faceid: no match")
