package fleet

import (
	"context"

	"github.com/Kaltroniz/Smart-Parking-System/internal/notification"
	"github.com/Kaltroniz/Smart-Parking-System/internal/rtdb"
)

// Store is the slice of the real-time store client the fleet core writes to.
// All writes are fire-and-forget from the core's perspective: failures are
// logged, and the next feed snapshot reconverges state.
type Store interface {
	PutBooking(ctx context.Context, index int, uid string, startTime int64) error
	DeleteBooking(ctx context.Context, index int) error
	Bookings(ctx context.Context) (rtdb.BookingSnapshot, error)
	SetGate(ctx context.Context, open bool, slotIndex int) error
}

// Notifier delivers transient user-facing notices.
type Notifier interface {
	Dispatch(notice notification.Notice)
}
