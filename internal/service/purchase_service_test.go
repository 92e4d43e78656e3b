package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlacePurchaseRejectsCustomerBuyer(t *testing.T) {
	s := &PurchaseService{}

	_, err := s.PlacePurchase(context.Background(), "customer", 1, &PlacePurchaseRequest{
		MeatID:     1,
		QuantityKg: 10,
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestPlacePurchaseLifecycle(t *testing.T) {
	t.Skip("Integration test - requires database")
}
