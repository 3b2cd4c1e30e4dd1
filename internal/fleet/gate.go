package fleet

import (
	"context"
	"log"
	"sync"
	"time"
)

// Actuator issues the gate's open-then-auto-close command sequence. Each open
// bumps a generation counter; a deferred close only fires if no newer open
// happened in the meantime, so overlapping pulses resolve to last-open-wins
// instead of racing close writes.
type Actuator struct {
	mu    sync.Mutex
	gen   uint64
	store Store
	dwell time.Duration
}

// NewActuator creates an actuator with the given dwell time.
func NewActuator(store Store, dwell time.Duration) *Actuator {
	return &Actuator{store: store, dwell: dwell}
}

// Pulse opens the gate for the slot and schedules the auto-close after the
// dwell. The close is fire-and-forget. The generation only advances once the
// open write has landed: a failed open leaves the previous pulse's close
// live, so the gate never ends up open with no close scheduled.
func (a *Actuator) Pulse(ctx context.Context, slotIndex int) {
	if err := a.store.SetGate(ctx, true, slotIndex); err != nil {
		log.Printf("Error opening gate for slot %d: %v", slotIndex, err)
		return
	}

	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.mu.Unlock()

	time.AfterFunc(a.dwell, func() {
		a.mu.Lock()
		stale := gen != a.gen
		a.mu.Unlock()
		if stale {
			return
		}
		if err := a.store.SetGate(context.Background(), false, -1); err != nil {
			log.Printf("Error auto-closing gate: %v", err)
		}
	})
}
