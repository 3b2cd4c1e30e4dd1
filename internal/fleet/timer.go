package fleet

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Kaltroniz/Smart-Parking-System/internal/notification"
)

// TimerRegistry owns one cancellable countdown per booked slot. Creation and
// registration are a single step under the registry lock, so re-entrant feed
// updates can never race two timers onto the same index.
type TimerRegistry struct {
	mu     sync.Mutex
	timers map[int]*slotTimer

	table   *Table
	store   Store
	notices Notifier
	tick    time.Duration
}

type slotTimer struct {
	index     int
	remaining int
	stop      chan struct{}
	done      chan struct{}
}

// NewTimerRegistry creates a registry ticking at the given interval
// (one second in production; tests shorten it).
func NewTimerRegistry(table *Table, store Store, notices Notifier, tick time.Duration) *TimerRegistry {
	return &TimerRegistry{
		timers:  make(map[int]*slotTimer),
		table:   table,
		store:   store,
		notices: notices,
		tick:    tick,
	}
}

// Start begins a countdown for the slot unless one is already running.
// Returns true when a new timer was started.
func (r *TimerRegistry) Start(ctx context.Context, index, remaining int) bool {
	r.mu.Lock()
	if _, exists := r.timers[index]; exists {
		r.mu.Unlock()
		return false
	}
	t := &slotTimer{
		index:     index,
		remaining: remaining,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	r.timers[index] = t
	r.mu.Unlock()

	go r.run(ctx, t)
	return true
}

// Active reports whether a timer is running for the slot.
func (r *TimerRegistry) Active(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.timers[index]
	return exists
}

// Cancel stops the slot's timer without the expiry side effects. It returns
// only after the timer goroutine has exited, so a new timer for the same
// index cannot start before the old one is observably gone.
func (r *TimerRegistry) Cancel(index int) bool {
	r.mu.Lock()
	t, exists := r.timers[index]
	if !exists {
		r.mu.Unlock()
		return false
	}
	delete(r.timers, index)
	r.mu.Unlock()

	close(t.stop)
	<-t.done
	return true
}

// CancelAll stops every timer. Used on engine teardown.
func (r *TimerRegistry) CancelAll() {
	r.mu.Lock()
	stopped := make([]*slotTimer, 0, len(r.timers))
	for index, t := range r.timers {
		delete(r.timers, index)
		stopped = append(stopped, t)
	}
	r.mu.Unlock()

	for _, t := range stopped {
		close(t.stop)
		<-t.done
	}
}

func (r *TimerRegistry) run(ctx context.Context, t *slotTimer) {
	defer close(t.done)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	remaining := t.remaining
	for {
		select {
		case <-t.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining--
			if remaining > 0 {
				r.table.SetRemaining(t.index, remaining)
				continue
			}
			r.expire(ctx, t)
			return
		}
	}
}

// expire performs the zero-reached side effects. A timer that was cancelled
// concurrently is already deregistered and must not delete anything twice.
func (r *TimerRegistry) expire(ctx context.Context, t *slotTimer) {
	r.mu.Lock()
	if r.timers[t.index] != t {
		r.mu.Unlock()
		return
	}
	delete(r.timers, t.index)
	r.mu.Unlock()

	if err := r.store.DeleteBooking(ctx, t.index); err != nil {
		log.Printf("Error deleting expired booking for slot %d: %v", t.index, err)
	}
	r.table.ClearBooking(t.index)
	r.notices.Dispatch(notification.Notice{
		Kind:      notification.NoticeExpired,
		SlotIndex: t.index,
		Message:   fmt.Sprintf("Booking expired for slot %d", t.index+1),
	})
}
