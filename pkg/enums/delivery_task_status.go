package enums

import "fmt"

// DeliveryTaskStatus is the delivery task state machine:
// CREATED -> ASSIGNED -> PICKED_UP -> IN_TRANSIT -> {DELIVERED | FAILED}.
type DeliveryTaskStatus string

const (
	DeliveryTaskStatusCreated   DeliveryTaskStatus = "CREATED"
	DeliveryTaskStatusAssigned  DeliveryTaskStatus = "ASSIGNED"
	DeliveryTaskStatusPickedUp  DeliveryTaskStatus = "PICKED_UP"
	DeliveryTaskStatusInTransit DeliveryTaskStatus = "IN_TRANSIT"
	DeliveryTaskStatusDelivered DeliveryTaskStatus = "DELIVERED"
	DeliveryTaskStatusFailed    DeliveryTaskStatus = "FAILED"
)

var validDeliveryTaskStatuses = []DeliveryTaskStatus{
	DeliveryTaskStatusCreated,
	DeliveryTaskStatusAssigned,
	DeliveryTaskStatusPickedUp,
	DeliveryTaskStatusInTransit,
	DeliveryTaskStatusDelivered,
	DeliveryTaskStatusFailed,
}

// CourierSettableTaskStatuses is the subset a courier may set on their own task.
var CourierSettableTaskStatuses = []DeliveryTaskStatus{
	DeliveryTaskStatusAssigned,
	DeliveryTaskStatusPickedUp,
	DeliveryTaskStatusInTransit,
	DeliveryTaskStatusDelivered,
	DeliveryTaskStatusFailed,
}

// String implements fmt.Stringer.
func (s DeliveryTaskStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliveryTaskStatus.
func (s DeliveryTaskStatus) IsValid() bool {
	for _, candidate := range validDeliveryTaskStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the task can no longer transition.
func (s DeliveryTaskStatus) IsTerminal() bool {
	return s == DeliveryTaskStatusDelivered || s == DeliveryTaskStatusFailed
}

// CourierSettable reports whether a courier may move a task into this status.
func (s DeliveryTaskStatus) CourierSettable() bool {
	for _, candidate := range CourierSettableTaskStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDeliveryTaskStatus converts raw input into a DeliveryTaskStatus.
func ParseDeliveryTaskStatus(value string) (DeliveryTaskStatus, error) {
	for _, candidate := range validDeliveryTaskStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery task status %q", value)
}
