package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotTotal(t *testing.T) {
	// 10 kg of beef at 500 per kg
	assert.Equal(t, 5000.0, snapshotTotal(500, 10))

	// fractional quantities round to cents
	assert.Equal(t, 162.5, snapshotTotal(650, 0.25))
	assert.Equal(t, 675.0, snapshotTotal(450, 1.5))
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, validateQuantity(0.1))
	assert.NoError(t, validateQuantity(10))
	assert.NoError(t, validateQuantity(50))

	for _, qty := range []float64{0, -1, -0.5, 0.05} {
		err := validateQuantity(qty)
		assert.Error(t, err, "quantity %v should be rejected", qty)
		assert.True(t, errors.Is(err, ErrValidation))
	}
}

func TestPlaceOrder(t *testing.T) {
	// Placement against live Postgres/Redis is covered by the store
	// integration tests; the pure pricing and quantity rules above are the
	// unit-testable surface.
	t.Skip("Integration test - requires database")
}
