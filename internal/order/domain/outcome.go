package domain

import "fmt"

type OutcomeKind int

const (
	OutcomeCommitted OutcomeKind = iota + 1
	OutcomeInsufficientCapacity
	OutcomeTransientFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCommitted:
		return "committed"
	case OutcomeInsufficientCapacity:
		return "insufficient_capacity"
	case OutcomeTransientFailure:
		return "transient_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one reservation. Only the field matching Kind is set.
type Outcome struct {
	Kind           OutcomeKind
	OrderID        string
	FailingEntryID string
	Cause          error
}

func Committed(orderID string) Outcome {
	return Outcome{Kind: OutcomeCommitted, OrderID: orderID}
}

func InsufficientCapacity(entryID string) Outcome {
	return Outcome{Kind: OutcomeInsufficientCapacity, FailingEntryID: entryID}
}

func TransientFailure(cause error) Outcome {
	return Outcome{Kind: OutcomeTransientFailure, Cause: cause}
}

func (o Outcome) Committed() bool { return o.Kind == OutcomeCommitted }
