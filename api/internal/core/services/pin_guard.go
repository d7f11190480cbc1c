package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// pinFailureBurst wrong PINs are tolerated back to back; after that one
	// more attempt is earned every pinFailureRefill.
	pinFailureBurst  = 5
	pinFailureRefill = 3 * time.Minute
	pinGuardPruneAt  = 1024
)

// pinGuard throttles PIN guesses per user id, independent of the caller's IP.
type pinGuard struct {
	mu       sync.Mutex
	failures map[string]*rate.Limiter
}

func newPINGuard() *pinGuard {
	return &pinGuard{failures: make(map[string]*rate.Limiter)}
}

// Locked reports whether id has spent its failure budget.
func (g *pinGuard) Locked(id string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	lim, ok := g.failures[id]
	return ok && lim.TokensAt(now) < 1
}

func (g *pinGuard) Fail(id string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	lim, ok := g.failures[id]
	if !ok {
		if len(g.failures) >= pinGuardPruneAt {
			g.prune(now)
		}
		lim = rate.NewLimiter(rate.Every(pinFailureRefill), pinFailureBurst)
		g.failures[id] = lim
	}
	lim.AllowN(now, 1)
}

func (g *pinGuard) Reset(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, id)
}

// prune drops ids whose budget has fully refilled. Caller holds mu.
func (g *pinGuard) prune(now time.Time) {
	for id, lim := range g.failures {
		if lim.TokensAt(now) >= pinFailureBurst {
			delete(g.failures, id)
		}
	}
}
