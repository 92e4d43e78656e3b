package service

import (
	"fmt"
	"time"

	"nyamalink/internal/models"
)

// validateTransitionDetails checks the sub-records a target status requires
// and stamps the dates the client left out. Field presence is enforced here,
// not trusted to the caller: dispatching needs a tracking number, carrier and
// estimated delivery date; completing needs the receiver's name.
func validateTransitionDetails(target models.Status,
	dispatch *models.DispatchDetails, confirmation *models.DeliveryConfirmation) error {

	if models.RequiresDispatchDetails(target) {
		if dispatch == nil || dispatch.TrackingNumber == "" || dispatch.Carrier == "" || dispatch.EstimatedDeliveryDate == nil {
			return fmt.Errorf("%w: dispatch requires tracking_number, carrier and estimated_delivery_date", ErrValidation)
		}
		if dispatch.DispatchDate == nil {
			now := time.Now()
			dispatch.DispatchDate = &now
		}
	}

	if models.RequiresReceivedBy(target) {
		if confirmation == nil || confirmation.ReceivedBy == "" {
			return fmt.Errorf("%w: completion requires received_by on the confirmation", ErrValidation)
		}
		if confirmation.ReceivedDate == nil {
			now := time.Now()
			confirmation.ReceivedDate = &now
		}
	}

	return nil
}
