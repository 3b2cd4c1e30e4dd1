package fleet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Kaltroniz/Smart-Parking-System/internal/rtdb"
)

var (
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrUnknownSlot     = errors.New("slot index out of range")
	ErrSlotOccupied    = errors.New("slot is occupied")
	ErrSlotBooked      = errors.New("slot already has an active booking")
	ErrPaymentRequired = errors.New("payment confirmation required")
)

// ScanResult is the outcome the external scanner component reports.
type ScanResult string

const (
	ScanDecoded   ScanResult = "decoded"
	ScanCancelled ScanResult = "cancelled"
)

// ScanOutcome is the resolver's answer to a gate scan.
type ScanOutcome struct {
	// Status is one of "opened", "no_booking", "cancelled".
	Status    string `json:"status"`
	SlotIndex int    `json:"slotIndex"`
}

// BookingService validates reservation requests and resolves gate scans.
// It never starts timers: the engine is the single authoritative creation
// path, reacting to the new record through the booking feed.
type BookingService struct {
	table          *Table
	store          Store
	gate           *Actuator
	requirePayment bool
	now            func() time.Time
}

// NewBookingService creates the user-intent entry points of the core.
func NewBookingService(table *Table, store Store, gate *Actuator, requirePayment bool) *BookingService {
	return &BookingService{
		table:          table,
		store:          store,
		gate:           gate,
		requirePayment: requirePayment,
		now:            time.Now,
	}
}

// Request writes a new booking record for the user at the slot index.
// The store insert is conflict-guarded on the slot index, so of two racing
// requests for the same free slot exactly one succeeds; the loser gets
// ErrSlotBooked before its record ever reaches the feed.
func (s *BookingService) Request(ctx context.Context, uid string, index int, paymentRef string) error {
	if uid == "" {
		return ErrUnauthenticated
	}
	if index < 0 || index >= s.table.Size() {
		return ErrUnknownSlot
	}

	slot := s.table.Get(index)
	if slot.Status == StatusOccupied {
		return ErrSlotOccupied
	}
	if slot.Booking != nil {
		return ErrSlotBooked
	}
	if s.requirePayment && paymentRef == "" {
		return ErrPaymentRequired
	}

	err := s.store.PutBooking(ctx, index, uid, s.now().UnixMilli())
	if errors.Is(err, rtdb.ErrBookingExists) {
		return ErrSlotBooked
	}
	if err != nil {
		return fmt.Errorf("booking request failed: %w", err)
	}
	return nil
}

// ResolveGateScan handles a scan signal from the gate. On a decoded scan it
// takes a one-shot snapshot of all booking records, looks for one owned by
// the user and pulses the gate for that slot. A cancelled scan has no side
// effects. The lookup is a point-in-time read, not a subscription.
func (s *BookingService) ResolveGateScan(ctx context.Context, uid string, result ScanResult) (ScanOutcome, error) {
	if result == ScanCancelled {
		return ScanOutcome{Status: "cancelled", SlotIndex: -1}, nil
	}
	if uid == "" {
		return ScanOutcome{}, ErrUnauthenticated
	}

	records, err := s.store.Bookings(ctx)
	if err != nil {
		return ScanOutcome{}, fmt.Errorf("booking lookup failed: %w", err)
	}

	indices := make([]int, 0, len(records))
	for idx := range records {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		if records[idx].UID != uid {
			continue
		}
		s.gate.Pulse(ctx, idx)
		return ScanOutcome{Status: "opened", SlotIndex: idx}, nil
	}
	return ScanOutcome{Status: "no_booking", SlotIndex: -1}, nil
}
