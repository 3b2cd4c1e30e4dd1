package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPulseOpensThenAutoCloses(t *testing.T) {
	store := newFakeStore()
	gate := NewActuator(store, 20*time.Millisecond)

	gate.Pulse(context.Background(), 3)

	log := store.gateLog()
	require.Len(t, log, 1)
	assert.Equal(t, gateWrite{open: true, slot: 3}, log[0])

	assert.Eventually(t, func() bool {
		log := store.gateLog()
		return len(log) == 2 && log[1] == gateWrite{open: false, slot: -1}
	}, time.Second, 5*time.Millisecond)
}

func TestFailedOpenLeavesPriorCloseLive(t *testing.T) {
	store := newFakeStore()
	store.failOpenSlot = 2
	gate := NewActuator(store, 50*time.Millisecond)

	gate.Pulse(context.Background(), 1)
	time.Sleep(20 * time.Millisecond)
	gate.Pulse(context.Background(), 2)

	// The second open never reached the store, so it must not invalidate the
	// first pulse's close: the gate still closes one dwell after the first open.
	assert.Eventually(t, func() bool {
		log := store.gateLog()
		return len(log) == 2 && log[1] == gateWrite{open: false, slot: -1}
	}, time.Second, 5*time.Millisecond)
}

func TestOverlappingPulsesCloseOnce(t *testing.T) {
	store := newFakeStore()
	gate := NewActuator(store, 50*time.Millisecond)

	gate.Pulse(context.Background(), 1)
	time.Sleep(20 * time.Millisecond)
	gate.Pulse(context.Background(), 2)

	// The first pulse's deferred close is stale and must not fire; only the
	// second pulse closes the gate, one dwell after its own open.
	time.Sleep(150 * time.Millisecond)

	log := store.gateLog()
	require.Len(t, log, 3)
	assert.Equal(t, gateWrite{open: true, slot: 1}, log[0])
	assert.Equal(t, gateWrite{open: true, slot: 2}, log[1])
	assert.Equal(t, gateWrite{open: false, slot: -1}, log[2])
}
