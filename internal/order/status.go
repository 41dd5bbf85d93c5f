package order

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Delivered and cancelled have no entry: they are terminal.
var orderStateTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

var knownStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

type IllegalStateTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalStateTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition: %s -> %s", e.From, e.To)
}

// ParseStatus maps a free-text value onto the closed set of statuses.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, slices.Contains(knownStatuses, s)
}

func (s Status) Terminal() bool {
	_, ok := orderStateTransitions[s]
	return !ok
}

func CanTransition(from, to Status) bool {
	return slices.Contains(orderStateTransitions[from], to)
}

// Transition moves o to target when the table allows it, stamps
// StatusUpdatedAt and returns the audit record. o is untouched on error.
func Transition(o *Order, target Status, actor string, now time.Time) (StatusChange, error) {
	if !CanTransition(o.Status, target) {
		return StatusChange{}, &IllegalStateTransitionError{From: o.Status, To: target}
	}

	change := StatusChange{
		OrderID:   o.ID,
		OldStatus: o.Status,
		NewStatus: target,
		Actor:     actor,
		ChangedAt: now,
	}

	o.Status = target
	o.StatusUpdatedAt = now

	return change, nil
}
