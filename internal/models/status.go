package models

import "fmt"

// Status is the delivery lifecycle state of an Order or Purchase.
type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusProcessing     Status = "processing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusDispatched     Status = "dispatched"
	StatusArrived        Status = "arrived"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:        {StatusAccepted: true, StatusCancelled: true},
	StatusAccepted:       {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing:     {StatusReadyForPickup: true, StatusCancelled: true},
	StatusReadyForPickup: {StatusDispatched: true, StatusCancelled: true},
	StatusDispatched:     {StatusArrived: true},
	StatusArrived:        {StatusCompleted: true},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

// ParseStatus validates a raw status string against the closed enum.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := validNext[s]; !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// CanTransition reports whether from → to is an allowed edge.
// completed and cancelled are terminal.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// RequiresDispatchDetails reports whether the target status needs tracking
// number, carrier and estimated delivery date supplied with the update.
func RequiresDispatchDetails(to Status) bool {
	return to == StatusDispatched
}

// RequiresReceivedBy reports whether the target status needs a
// received-by name with the update.
func RequiresReceivedBy(to Status) bool {
	return to == StatusCompleted
}
