package domain

import (
	"fmt"
	"strings"
)

// Condition is the state of goods reported at return. It is recorded on the
// order and never blocks the return itself.
type Condition string

const (
	ConditionGood    Condition = "GOOD"
	ConditionDamaged Condition = "DAMAGED"
)

// ConditionSet is the configured enumeration of accepted return conditions.
type ConditionSet map[Condition]struct{}

func DefaultConditions() ConditionSet {
	return NewConditionSet(ConditionGood, ConditionDamaged)
}

func NewConditionSet(conditions ...Condition) ConditionSet {
	set := make(ConditionSet, len(conditions))
	for _, c := range conditions {
		set[c] = struct{}{}
	}
	return set
}

// Parse normalizes s and checks it against the set.
func (s ConditionSet) Parse(raw string) (Condition, error) {
	c := Condition(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := s[c]; !ok {
		return "", fmt.Errorf("condition[%s] is not accepted: %w", raw, ErrInvalidArgument)
	}
	return c, nil
}
