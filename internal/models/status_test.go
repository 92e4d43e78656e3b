package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{
		"pending", "accepted", "processing", "ready_for_pickup",
		"dispatched", "arrived", "completed", "cancelled",
	} {
		s, err := ParseStatus(raw)
		assert.NoError(t, err)
		assert.Equal(t, Status(raw), s)
	}

	_, err := ParseStatus("shipped")
	assert.Error(t, err)

	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusAccepted))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusAccepted, StatusProcessing))
	assert.True(t, CanTransition(StatusProcessing, StatusReadyForPickup))
	assert.True(t, CanTransition(StatusReadyForPickup, StatusDispatched))
	assert.True(t, CanTransition(StatusDispatched, StatusArrived))
	assert.True(t, CanTransition(StatusArrived, StatusCompleted))

	// no skipping ahead
	assert.False(t, CanTransition(StatusPending, StatusDispatched))
	assert.False(t, CanTransition(StatusAccepted, StatusCompleted))

	// no going back
	assert.False(t, CanTransition(StatusArrived, StatusPending))
	assert.False(t, CanTransition(StatusDispatched, StatusReadyForPickup))

	// dispatched goods cannot be cancelled
	assert.False(t, CanTransition(StatusDispatched, StatusCancelled))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	for _, s := range []Status{
		StatusPending, StatusAccepted, StatusProcessing,
		StatusReadyForPickup, StatusDispatched, StatusArrived,
	} {
		assert.False(t, s.IsTerminal(), "status %s should not be terminal", s)
	}

	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusAccepted))
}

func TestRequiredDetails(t *testing.T) {
	assert.True(t, RequiresDispatchDetails(StatusDispatched))
	assert.False(t, RequiresDispatchDetails(StatusAccepted))

	assert.True(t, RequiresReceivedBy(StatusCompleted))
	assert.False(t, RequiresReceivedBy(StatusArrived))
}
