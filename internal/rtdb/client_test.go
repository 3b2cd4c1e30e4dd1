package rtdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Kaltroniz/Smart-Parking-System/internal/db"
	"github.com/Kaltroniz/Smart-Parking-System/internal/model"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	dsn := fmt.Sprintf("file:rtdb_%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB, 6))
	return NewClient(testDB, 10*time.Millisecond)
}

func TestPutBookingRejectsSecondWriter(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.PutBooking(ctx, 2, "user-a", 1000))
	err := client.PutBooking(ctx, 2, "user-b", 2000)
	assert.ErrorIs(t, err, ErrBookingExists)

	snap, err := client.Bookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, Booking{UID: "user-a", StartTime: 1000}, snap[2])
}

func TestDeleteBookingRemovesRecord(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.PutBooking(ctx, 1, "user-a", 1000))
	require.NoError(t, client.DeleteBooking(ctx, 1))

	snap, err := client.Bookings(ctx)
	require.NoError(t, err)
	assert.NotContains(t, snap, 1)

	// Deleting an absent record is not an error.
	assert.NoError(t, client.DeleteBooking(ctx, 1))
}

func TestFeedsPublishSnapshots(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Run(ctx)

	select {
	case snap := <-client.SlotFeed():
		assert.Len(t, snap, 6, "seeded fleet covers every index")
		assert.Equal(t, "available", snap[0])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial slot snapshot")
	}

	require.NoError(t, client.SetSlotStatus(ctx, 2, "occupied"))
	require.Eventually(t, func() bool {
		select {
		case snap := <-client.SlotFeed():
			return snap[2] == "occupied"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, client.PutBooking(ctx, 4, "user-a", 1234))
	require.Eventually(t, func() bool {
		select {
		case snap := <-client.BookingFeed():
			return snap[4] == Booking{UID: "user-a", StartTime: 1234}
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSetAndResetGate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetGate(ctx, true, 3))
	var gate model.GateState
	require.NoError(t, client.db.First(&gate, gateRecordID).Error)
	assert.True(t, gate.Open)
	assert.Equal(t, 3, gate.SlotIndex)

	require.NoError(t, client.ResetGate(ctx))
	require.NoError(t, client.db.First(&gate, gateRecordID).Error)
	assert.False(t, gate.Open)
	assert.Equal(t, -1, gate.SlotIndex)
}

func TestPendingSnapshotIsReplacedNotQueued(t *testing.T) {
	client := newTestClient(t)

	client.pushSlots(SlotSnapshot{0: "available"})
	client.pushSlots(SlotSnapshot{0: "occupied"})

	snap := <-client.SlotFeed()
	assert.Equal(t, "occupied", snap[0], "consumer sees only the latest snapshot")

	select {
	case <-client.SlotFeed():
		t.Fatal("stale snapshot should have been dropped")
	default:
	}
}
