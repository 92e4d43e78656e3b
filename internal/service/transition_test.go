package service

import (
	"errors"
	"testing"
	"time"

	"nyamalink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDispatch() *models.DispatchDetails {
	eta := time.Now().Add(48 * time.Hour)
	return &models.DispatchDetails{
		TrackingNumber:        "TRK-2041",
		Carrier:               "Wells Fargo Courier",
		EstimatedDeliveryDate: &eta,
	}
}

func TestValidateTransitionDetailsDispatch(t *testing.T) {
	err := validateTransitionDetails(models.StatusDispatched, nil, nil)
	assert.True(t, errors.Is(err, ErrValidation), "dispatching without details must fail")

	d := validDispatch()
	d.TrackingNumber = ""
	err = validateTransitionDetails(models.StatusDispatched, d, nil)
	assert.True(t, errors.Is(err, ErrValidation), "missing tracking number must fail")

	d = validDispatch()
	d.Carrier = ""
	err = validateTransitionDetails(models.StatusDispatched, d, nil)
	assert.True(t, errors.Is(err, ErrValidation), "missing carrier must fail")

	d = validDispatch()
	d.EstimatedDeliveryDate = nil
	err = validateTransitionDetails(models.StatusDispatched, d, nil)
	assert.True(t, errors.Is(err, ErrValidation), "missing estimated delivery date must fail")
}

func TestValidateTransitionDetailsStampsDispatchDate(t *testing.T) {
	d := validDispatch()
	require.Nil(t, d.DispatchDate)

	err := validateTransitionDetails(models.StatusDispatched, d, nil)
	require.NoError(t, err)
	require.NotNil(t, d.DispatchDate)
	assert.WithinDuration(t, time.Now(), *d.DispatchDate, time.Minute)
}

func TestValidateTransitionDetailsCompletion(t *testing.T) {
	err := validateTransitionDetails(models.StatusCompleted, nil, nil)
	assert.True(t, errors.Is(err, ErrValidation), "completing without a confirmation must fail")

	err = validateTransitionDetails(models.StatusCompleted, nil, &models.DeliveryConfirmation{})
	assert.True(t, errors.Is(err, ErrValidation), "missing received_by must fail")

	c := &models.DeliveryConfirmation{ReceivedBy: "Achieng O."}
	err = validateTransitionDetails(models.StatusCompleted, nil, c)
	require.NoError(t, err)
	require.NotNil(t, c.ReceivedDate)
	assert.WithinDuration(t, time.Now(), *c.ReceivedDate, time.Minute)
}

func TestValidateTransitionDetailsOtherTargets(t *testing.T) {
	for _, target := range []models.Status{
		models.StatusAccepted,
		models.StatusProcessing,
		models.StatusReadyForPickup,
		models.StatusArrived,
		models.StatusCancelled,
	} {
		assert.NoError(t, validateTransitionDetails(target, nil, nil),
			"target %s requires no sub-records", target)
	}
}
