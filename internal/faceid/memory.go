package faceid

import (
	"context"
	"sync"
)

// MemoryProvider is a deterministic fake for tests and local development.
// It maps exact image bytes to a face token; anything unknown is a no-match.
type MemoryProvider struct {
	mu    sync.Mutex
	faces map[string]Identification
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{faces: map[string]Identification{}}
}

func (p *MemoryProvider) Name() string { return "face-memory" }

func (p *MemoryProvider) HealthCheck(ctx context.Context) error { return nil }

// Enroll registers image bytes as matching the given token.
func (p *MemoryProvider) Enroll(image []byte, token string, similarity float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faces[string(image)] = Identification{FaceToken: token, Similarity: similarity}
}

func (p *MemoryProvider) Identify(ctx context.Context, image []byte) (Identification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.faces[string(image)]; ok {
		return id, nil
	}
	return Identification{}, ErrNoMatch
}
