package booking

import "fmt"

type Status string

const (
	StatusPending           Status = "pending"
	StatusPreVisitScheduled Status = "pre_visit_scheduled"
	StatusPreVisitCompleted Status = "pre_visit_completed"
	StatusAssigned          Status = "assigned"
	StatusInProgress        Status = "in_progress"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPreVisitScheduled, StatusPreVisitCompleted,
		StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// allowedTransitions is the forward pipeline. Cancellation is handled separately
// because it is legal from every non-terminal state.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:           {StatusPreVisitScheduled: true},
	StatusPreVisitScheduled: {StatusPreVisitCompleted: true},
	StatusPreVisitCompleted: {StatusAssigned: true},
	StatusAssigned:          {StatusInProgress: true},
	StatusInProgress:        {StatusCompleted: true},
	StatusCompleted:         {},
	StatusCancelled:         {},
}

func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return !from.Terminal()
	}
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
