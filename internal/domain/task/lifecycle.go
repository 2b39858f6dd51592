package task

// transitions lists the edges of the task state machine. cancelled is
// reachable from every non-terminal state.
var transitions = map[Status][]Status{
	StatusCreated:          {StatusAssigned, StatusCancelled},
	StatusAssigned:         {StatusInProgress, StatusCancelled},
	StatusInProgress:       {StatusReview, StatusCancelled},
	StatusReview:           {StatusDone, StatusChangesRequested, StatusCancelled},
	StatusChangesRequested: {StatusInProgress, StatusAssigned, StatusCancelled},
	StatusDone:             {},
	StatusCancelled:        {},
}

// Terminal reports whether no transitions leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is an edge of the state machine.
// Writing the current status again is always permitted.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
