package fleet

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Kaltroniz/Smart-Parking-System/internal/notification"
	"github.com/Kaltroniz/Smart-Parking-System/internal/rtdb"
)

// Engine reconciles the two store feeds into the slot table, drives the timer
// registry and issues compensating write-backs. It is the single consumer of
// both feeds: one goroutine applies snapshots in arrival order, which keeps
// the occupied-implies-no-booking invariant re-established synchronously
// inside every handler invocation.
type Engine struct {
	table   *Table
	timers  *TimerRegistry
	gate    *Actuator
	store   Store
	notices Notifier
	window  time.Duration

	slotFeed    <-chan rtdb.SlotSnapshot
	bookingFeed <-chan rtdb.BookingSnapshot
	feedErrs    <-chan error

	now func() time.Time
}

// NewEngine wires the reconciliation engine to its collaborators and feeds.
func NewEngine(
	table *Table,
	timers *TimerRegistry,
	gate *Actuator,
	store Store,
	notices Notifier,
	window time.Duration,
	slotFeed <-chan rtdb.SlotSnapshot,
	bookingFeed <-chan rtdb.BookingSnapshot,
	feedErrs <-chan error,
) *Engine {
	return &Engine{
		table:       table,
		timers:      timers,
		gate:        gate,
		store:       store,
		notices:     notices,
		window:      window,
		slotFeed:    slotFeed,
		bookingFeed: bookingFeed,
		feedErrs:    feedErrs,
		now:         time.Now,
	}
}

// Run consumes feed events until the context is cancelled, then cancels every
// outstanding timer.
func (e *Engine) Run(ctx context.Context) {
	log.Println("Reconciliation engine started.")
	defer e.timers.CancelAll()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reconciliation engine shutting down.")
			return
		case snap := <-e.slotFeed:
			e.ApplySlotSnapshot(ctx, snap)
		case snap := <-e.bookingFeed:
			e.ApplyBookingSnapshot(ctx, snap)
		case err := <-e.feedErrs:
			log.Printf("Store feed error: %v", err)
			e.notices.Dispatch(notification.Notice{
				Kind:      notification.NoticeStoreError,
				SlotIndex: -1,
				Message:   "Parking status feed is temporarily unavailable.",
			})
		}
	}
}

// ApplySlotSnapshot processes one full sensor-status update. Statuses are
// written for every reported index before any compensating write-back is
// issued, so a partially-applied snapshot can never be observed.
func (e *Engine) ApplySlotSnapshot(ctx context.Context, snap rtdb.SlotSnapshot) {
	indices := make([]int, 0, len(snap))
	for idx := range snap {
		if e.inRange(idx) {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	for _, idx := range indices {
		status := Status(snap[idx])
		if status != StatusAvailable && status != StatusOccupied {
			// Malformed or missing readings never produce a third state.
			status = StatusAvailable
		}
		e.table.SetStatus(idx, status)
	}

	for _, idx := range indices {
		slot := e.table.Get(idx)
		if slot.Status != StatusOccupied || slot.Booking == nil {
			continue
		}
		e.compensate(ctx, idx)
	}
}

// compensate handles sensor-confirmed occupancy contradicting a reservation:
// the driver parked without scanning, or the sensor caught up. The booking is
// purged everywhere and the gate pulses open.
func (e *Engine) compensate(ctx context.Context, idx int) {
	if err := e.store.DeleteBooking(ctx, idx); err != nil {
		log.Printf("Error deleting booking for occupied slot %d: %v", idx, err)
	}
	e.timers.Cancel(idx)
	e.table.ClearBooking(idx)
	e.gate.Pulse(ctx, idx)
	e.notices.Dispatch(notification.Notice{
		Kind:      notification.NoticeCompensated,
		SlotIndex: idx,
		Message:   fmt.Sprintf("Slot %d is now occupied; the reservation was released and the gate opened.", idx+1),
	})
}

// ApplyBookingSnapshot processes one full booking-record update.
func (e *Engine) ApplyBookingSnapshot(ctx context.Context, snap rtdb.BookingSnapshot) {
	indices := make([]int, 0, len(snap))
	for idx := range snap {
		if e.inRange(idx) {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	now := e.now()
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		rec := snap[idx]

		// Occupancy always wins: a record on a sensor-occupied slot is stale.
		if e.table.Get(idx).Status == StatusOccupied {
			if err := e.store.DeleteBooking(ctx, idx); err != nil {
				log.Printf("Error deleting stale booking for slot %d: %v", idx, err)
			}
			continue
		}

		if rec.UID == "" || rec.StartTime <= 0 {
			// Malformed record: drop it, keep processing the snapshot.
			continue
		}

		startedAt := time.UnixMilli(rec.StartTime)
		elapsed := int(now.Sub(startedAt).Seconds())
		remaining := int(e.window.Seconds()) - elapsed
		if remaining <= 0 {
			// Already expired upstream of us; no timer is ever started.
			if err := e.store.DeleteBooking(ctx, idx); err != nil {
				log.Printf("Error deleting expired booking for slot %d: %v", idx, err)
			}
			continue
		}

		seen[idx] = struct{}{}
		e.table.SetBooking(idx, &Booking{UID: rec.UID, StartedAt: startedAt}, remaining)
		e.timers.Start(ctx, idx, remaining)
	}

	// Bookings removed upstream (another client, administrative action, or
	// expiry we triggered above): drop the local trace so state never goes
	// stale after out-of-band deletions.
	for _, slot := range e.table.Snapshot() {
		if slot.Booking == nil {
			continue
		}
		if _, ok := seen[slot.Index]; ok {
			continue
		}
		e.timers.Cancel(slot.Index)
		e.table.ClearBooking(slot.Index)
	}
}

func (e *Engine) inRange(idx int) bool {
	return idx >= 0 && idx < e.table.Size()
}
