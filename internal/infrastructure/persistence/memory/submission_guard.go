package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// SubmissionGuard is a process-local busy flag per key
type SubmissionGuard struct {
	mu    sync.Mutex
	held  map[string]hold
	now   func() time.Time
	token uint64
}

type hold struct {
	token     uint64
	expiresAt time.Time
}

// NewSubmissionGuard creates an empty guard
func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{
		held: make(map[string]hold),
		now:  time.Now,
	}
}

var _ outbound.SubmissionGuard = (*SubmissionGuard)(nil)

// Acquire marks key busy until release is called or ttl passes
func (g *SubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if current, ok := g.held[key]; ok && now.Before(current.expiresAt) {
		return nil, kitchen.ErrSubmissionInFlight
	}

	g.token++
	token := g.token
	g.held[key] = hold{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			// an expired hold may already belong to a newer holder
			if current, ok := g.held[key]; ok && current.token == token {
				delete(g.held, key)
			}
		})
	}, nil
}
