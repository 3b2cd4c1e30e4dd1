package rtdb

// SlotSnapshot is a full snapshot of the sensor feed: slot index to the raw
// status string as the hardware bridge wrote it.
type SlotSnapshot map[int]string

// Booking is one reservation record as stored, start time in epoch millis.
type Booking struct {
	UID       string
	StartTime int64
}

// BookingSnapshot is a full snapshot of the booking feed keyed by slot index.
type BookingSnapshot map[int]Booking
