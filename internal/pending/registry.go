// Package pending backstops the thinking indicators. Some engine phases
// never emit a "done" event, so every armed indicator gets a deadline that
// clears it if nothing else does.
package pending

import (
	"sync"
	"time"
)

// DefaultTimeout is how long an indicator may stay lit without an outcome
// event before the registry force-clears it.
const DefaultTimeout = 30 * time.Second

// Registry maps actor IDs to cancellable deadlines. On fire it hands the
// actor ID to the callback; the owner performs the (idempotent) removal.
type Registry struct {
	mu      sync.Mutex
	timeout time.Duration
	fire    func(actorID int)
	timers  map[int]*time.Timer
	gens    map[int]int
	stopped bool
}

func NewRegistry(timeout time.Duration, fire func(actorID int)) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry{
		timeout: timeout,
		fire:    fire,
		timers:  map[int]*time.Timer{},
		gens:    map[int]int{},
	}
}

// Arm schedules a fallback clear for the actor. Last arm wins: an existing
// timer for the same actor is cancelled first, never left racing.
func (r *Registry) Arm(actorID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if t, ok := r.timers[actorID]; ok {
		t.Stop()
	}
	r.gens[actorID]++
	gen := r.gens[actorID]
	r.timers[actorID] = time.AfterFunc(r.timeout, func() {
		r.fired(actorID, gen)
	})
}

// Disarm cancels the actor's timer without firing. Called whenever the
// reducer clears the actor organically. Unknown actors are a no-op.
func (r *Registry) Disarm(actorID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[actorID]; ok {
		t.Stop()
		delete(r.timers, actorID)
	}
}

// Stop cancels every outstanding timer. No fire callback runs after Stop
// returns, so a discarded snapshot is never mutated by a late deadline.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

func (r *Registry) fired(actorID, gen int) {
	r.mu.Lock()
	// A stale fire from a timer that lost a re-arm race is dropped.
	if r.stopped || r.gens[actorID] != gen {
		r.mu.Unlock()
		return
	}
	delete(r.timers, actorID)
	r.mu.Unlock()
	r.fire(actorID)
}
