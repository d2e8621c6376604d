package statemachine

import (
	"fmt"
	"strings"

	"near-expiry-api/models"
)

// Transition defines a valid state change
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

// validTransitions is the authoritative state machine definition.
// Only the restaurant that owns an order drives it forward.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusPreparing},
	{From: models.StatusPending, To: models.StatusCancelled},
	{From: models.StatusPreparing, To: models.StatusReady},
	{From: models.StatusPreparing, To: models.StatusCancelled},
	{From: models.StatusReady, To: models.StatusCompleted},
	{From: models.StatusReady, To: models.StatusCancelled},
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition returns nil when from -> to is allowed. Self transitions
// are never allowed.
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("cannot transition from %s to %s, valid transitions: %s", from, to, DescribeValidFrom(from))
}

// DescribeValidFrom renders the allowed targets of status, or "none"
func DescribeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}

// TerminalStates lists the statuses an order never leaves
func TerminalStates() []models.OrderStatus {
	var out []models.OrderStatus
	for _, s := range models.AllStatuses {
		if IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}
