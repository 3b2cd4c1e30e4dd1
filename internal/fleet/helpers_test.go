package fleet

import (
	"context"
	"errors"
	"sync"

	"github.com/Kaltroniz/Smart-Parking-System/internal/notification"
	"github.com/Kaltroniz/Smart-Parking-System/internal/rtdb"
)

// fakeStore is an in-memory Store that records every write. PutBooking
// enforces the one-record-per-slot constraint the real store guarantees via
// its primary key.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[int]rtdb.Booking
	deletes  []int
	gates    []gateWrite

	// open writes for this slot fail; -1 disables.
	failOpenSlot int
}

type gateWrite struct {
	open bool
	slot int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[int]rtdb.Booking), failOpenSlot: -1}
}

func (s *fakeStore) PutBooking(_ context.Context, index int, uid string, startTime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bookings[index]; exists {
		return rtdb.ErrBookingExists
	}
	s.bookings[index] = rtdb.Booking{UID: uid, StartTime: startTime}
	return nil
}

func (s *fakeStore) DeleteBooking(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings, index)
	s.deletes = append(s.deletes, index)
	return nil
}

func (s *fakeStore) Bookings(_ context.Context) (rtdb.BookingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(rtdb.BookingSnapshot, len(s.bookings))
	for idx, b := range s.bookings {
		snap[idx] = b
	}
	return snap, nil
}

func (s *fakeStore) SetGate(_ context.Context, open bool, slotIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open && slotIndex == s.failOpenSlot {
		return errors.New("gate write refused")
	}
	s.gates = append(s.gates, gateWrite{open: open, slot: slotIndex})
	return nil
}

func (s *fakeStore) deleteCount(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, idx := range s.deletes {
		if idx == index {
			n++
		}
	}
	return n
}

func (s *fakeStore) gateLog() []gateWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gateWrite, len(s.gates))
	copy(out, s.gates)
	return out
}

func (s *fakeStore) booking(index int) (rtdb.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[index]
	return b, ok
}

// fakeNotifier records dispatched notices.
type fakeNotifier struct {
	mu      sync.Mutex
	notices []notification.Notice
}

func (n *fakeNotifier) Dispatch(notice notification.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *fakeNotifier) all() []notification.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Notice, len(n.notices))
	copy(out, n.notices)
	return out
}

func (n *fakeNotifier) countKind(kind notification.NoticeKind) int {
	c := 0
	for _, notice := range n.all() {
		if notice.Kind == kind {
			c++
		}
	}
	return c
}

// occupiedWithBooking reports whether any slot violates the core invariant:
// sensor-confirmed occupancy coexisting with a live booking.
func occupiedWithBooking(t *Table) bool {
	for _, slot := range t.Snapshot() {
		if slot.Status == StatusOccupied && slot.Booking != nil {
			return true
		}
	}
	return false
}
