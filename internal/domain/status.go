package domain

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusCooking Status = "cooking"
	StatusDone    Status = "done"
)

// Transitions only move forward; done is terminal.
var validNext = map[Status]map[Status]bool{
	StatusWaiting: {StatusCooking: true},
	StatusCooking: {StatusDone: true},
	StatusDone:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}
