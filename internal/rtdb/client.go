package rtdb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kaltroniz/Smart-Parking-System/internal/model"
)

// ErrBookingExists is returned by PutBooking when the slot already holds a
// record. The store serializes concurrent booking attempts on the slot-index
// primary key, so exactly one of two racing writers sees success.
var ErrBookingExists = errors.New("rtdb: booking already exists for slot")

const gateRecordID = 1

// Client is the real-time store client. It layers push-style full-snapshot
// feeds on top of the shared database: every write through the client
// republishes a fresh snapshot of the affected path, and a poll ticker picks
// up out-of-band writes (the hardware bridge updates slot_statuses directly,
// and bookings may be deleted administratively).
//
// Each feed is a single-consumer channel carrying the latest snapshot; a
// pending snapshot that was never consumed is replaced, never queued.
type Client struct {
	db       *gorm.DB
	interval time.Duration

	pubMu     sync.Mutex
	slotCh    chan SlotSnapshot
	bookingCh chan BookingSnapshot
	errCh     chan error
}

// NewClient creates a store client polling at the given interval.
func NewClient(gormDB *gorm.DB, interval time.Duration) *Client {
	return &Client{
		db:        gormDB,
		interval:  interval,
		slotCh:    make(chan SlotSnapshot, 1),
		bookingCh: make(chan BookingSnapshot, 1),
		errCh:     make(chan error, 1),
	}
}

// SlotFeed returns the sensor-status feed channel.
func (c *Client) SlotFeed() <-chan SlotSnapshot { return c.slotCh }

// BookingFeed returns the booking-record feed channel.
func (c *Client) BookingFeed() <-chan BookingSnapshot { return c.bookingCh }

// Errors returns the feed-failure channel. Failures are non-fatal; the next
// successful poll republishes a full snapshot and state reconverges.
func (c *Client) Errors() <-chan error { return c.errCh }

// Run polls the store and publishes snapshots until the context is cancelled.
func (c *Client) Run(ctx context.Context) {
	log.Println("Starting store feed client...")

	c.pollOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Store feed client shutting down.")
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

func (c *Client) pollOnce(ctx context.Context) {
	if err := c.publishSlots(ctx); err != nil {
		log.Printf("Error reading slot statuses: %v", err)
		c.pushError(err)
	}
	if err := c.publishBookings(ctx); err != nil {
		log.Printf("Error reading booking records: %v", err)
		c.pushError(err)
	}
}

func (c *Client) publishSlots(ctx context.Context) error {
	var rows []model.SlotStatus
	if err := c.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("slot snapshot query failed: %w", err)
	}
	snap := make(SlotSnapshot, len(rows))
	for _, r := range rows {
		snap[r.SlotIndex] = r.Status
	}
	c.pushSlots(snap)
	return nil
}

func (c *Client) publishBookings(ctx context.Context) error {
	snap, err := c.Bookings(ctx)
	if err != nil {
		return err
	}
	c.pushBookings(snap)
	return nil
}

// Bookings performs a one-shot snapshot read of all booking records.
func (c *Client) Bookings(ctx context.Context) (BookingSnapshot, error) {
	var rows []model.BookingRecord
	if err := c.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("booking snapshot query failed: %w", err)
	}
	snap := make(BookingSnapshot, len(rows))
	for _, r := range rows {
		snap[r.SlotIndex] = Booking{UID: r.UID, StartTime: r.StartTime}
	}
	return snap, nil
}

// PutBooking writes a new booking record at the slot index. Returns
// ErrBookingExists when a record is already present.
func (c *Client) PutBooking(ctx context.Context, index int, uid string, startTime int64) error {
	rec := model.BookingRecord{SlotIndex: index, UID: uid, StartTime: startTime}
	res := c.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("booking write failed for slot %d: %w", index, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBookingExists
	}
	if err := c.publishBookings(ctx); err != nil {
		log.Printf("Warning: could not republish bookings after write: %v", err)
	}
	return nil
}

// DeleteBooking removes the booking record at the slot index, if any.
func (c *Client) DeleteBooking(ctx context.Context, index int) error {
	if err := c.db.WithContext(ctx).Delete(&model.BookingRecord{}, "slot_index = ?", index).Error; err != nil {
		return fmt.Errorf("booking delete failed for slot %d: %w", index, err)
	}
	if err := c.publishBookings(ctx); err != nil {
		log.Printf("Warning: could not republish bookings after delete: %v", err)
	}
	return nil
}

// SetGate writes the gate-control record.
func (c *Client) SetGate(ctx context.Context, open bool, slotIndex int) error {
	gate := model.GateState{ID: gateRecordID, Open: open, SlotIndex: slotIndex}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&gate).Error; err != nil {
		return fmt.Errorf("gate write failed: %w", err)
	}
	return nil
}

// ResetGate restores the closed, unset gate baseline. Called at process start.
func (c *Client) ResetGate(ctx context.Context) error {
	return c.SetGate(ctx, false, -1)
}

// SetSlotStatus overwrites one sensor status row. In production the hardware
// bridge writes these; the client exposes it for tooling and tests.
func (c *Client) SetSlotStatus(ctx context.Context, index int, status string) error {
	row := model.SlotStatus{SlotIndex: index, Status: status}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("slot status write failed for slot %d: %w", index, err)
	}
	if err := c.publishSlots(ctx); err != nil {
		log.Printf("Warning: could not republish slot statuses after write: %v", err)
	}
	return nil
}

func (c *Client) pushSlots(snap SlotSnapshot) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	select {
	case <-c.slotCh:
	default:
	}
	c.slotCh <- snap
}

func (c *Client) pushBookings(snap BookingSnapshot) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	select {
	case <-c.bookingCh:
	default:
	}
	c.bookingCh <- snap
}

func (c *Client) pushError(err error) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	select {
	case <-c.errCh:
	default:
	}
	c.errCh <- err
}
