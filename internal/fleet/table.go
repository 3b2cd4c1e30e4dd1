package fleet

import (
	"sync"
	"time"
)

// Status is the reconciled sensor state of a slot.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
)

// Booking is a live reservation tracked for a slot.
type Booking struct {
	UID       string
	StartedAt time.Time
}

// Slot is one entry of the state table. Remaining is the countdown in whole
// seconds; it is derived state and only meaningful while Booking is set.
type Slot struct {
	Index     int
	Status    Status
	Booking   *Booking
	Remaining int
}

// Table is the in-memory authoritative view of the fleet, rebuilt from the
// two store feeds. Mutations come only from the reconciliation engine and
// from timer completion paths; everything else reads snapshots.
type Table struct {
	mu    sync.RWMutex
	slots []Slot
}

// NewTable creates a table for a fixed-size fleet, all slots available.
func NewTable(size int) *Table {
	slots := make([]Slot, size)
	for i := range slots {
		slots[i] = Slot{Index: i, Status: StatusAvailable}
	}
	return &Table{slots: slots}
}

// Size returns the fleet size.
func (t *Table) Size() int {
	return len(t.slots)
}

// SetStatus writes the sensor status for a slot.
func (t *Table) SetStatus(index int, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[index].Status = status
}

// SetBooking records a live booking and its remaining seconds for a slot.
func (t *Table) SetBooking(index int, b *Booking, remaining int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[index].Booking = b
	t.slots[index].Remaining = remaining
}

// ClearBooking removes the booking and remaining time for a slot.
func (t *Table) ClearBooking(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[index].Booking = nil
	t.slots[index].Remaining = 0
}

// SetRemaining publishes a new countdown value for a slot. A tick that races
// with booking removal is dropped rather than resurrecting cleared state.
func (t *Table) SetRemaining(index int, remaining int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.slots[index].Booking == nil {
		return
	}
	t.slots[index].Remaining = remaining
}

// Get returns a copy of one slot.
func (t *Table) Get(index int) Slot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.slots[index]
}

// Snapshot returns a copy of all slots in index order.
func (t *Table) Snapshot() []Slot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}
