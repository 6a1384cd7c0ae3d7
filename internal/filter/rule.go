package filter

import (
	"fmt"
	"strings"

	"triagelens/domain/core"
	"triagelens/domain/table"
)

// Operator names a predicate applied to one cell
type Operator string

const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpGreater    Operator = "gt"
	OpLess       Operator = "lt"
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"
)

// Operators lists every supported operator in display order
var Operators = []Operator{
	OpContains, OpEquals, OpStartsWith, OpEndsWith,
	OpGreater, OpLess, OpEq, OpNeq,
	OpIsEmpty, OpIsNotEmpty,
}

// Known reports whether op is a supported operator
func (op Operator) Known() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// ParseOperator validates an operator name from user input
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	if !op.Known() {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownOperator, s)
	}
	return op, nil
}

// Rule is one declarative predicate: field operator value
type Rule struct {
	ID       core.RuleID `json:"id"`
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    table.Cell  `json:"value"`
}

// NewRule builds a rule with a fresh id. The value is classified like a
// sheet cell, so "5" compares numerically where the operator allows it.
func NewRule(field string, op Operator, value string) Rule {
	return Rule{
		ID:       core.NewRuleID(),
		Field:    field,
		Operator: op,
		Value:    table.Parse(value),
	}
}

// NewNumberRule builds a rule whose literal is a number
func NewNumberRule(field string, op Operator, value float64) Rule {
	return Rule{
		ID:       core.NewRuleID(),
		Field:    field,
		Operator: op,
		Value:    table.Number(value),
	}
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s %q", r.Field, r.Operator, r.Value.String())
}

// RuleUpdate carries a partial edit; nil fields are left unchanged
type RuleUpdate struct {
	Field    *string
	Operator *Operator
	Value    *table.Cell
}

// Set is an ordered list of rules combined with logical AND. Order only
// matters for display. Set values are never modified in place; every
// mutation returns a new Set.
type Set struct {
	rules []Rule
}

// NewSet builds a set from rules
func NewSet(rules ...Rule) Set {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return Set{rules: out}
}

// Len returns the number of rules
func (s Set) Len() int {
	return len(s.rules)
}

// Rules returns a copy of the rules in display order
func (s Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Add appends a rule
func (s Set) Add(rule Rule) Set {
	out := make([]Rule, len(s.rules), len(s.rules)+1)
	copy(out, s.rules)
	return Set{rules: append(out, rule)}
}

// Remove drops the rule with the given id
func (s Set) Remove(id core.RuleID) (Set, error) {
	out := make([]Rule, 0, len(s.rules))
	found := false
	for _, r := range s.rules {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		return s, core.NewFilterNotFoundError(id)
	}
	return Set{rules: out}, nil
}

// Update applies a partial edit to the rule with the given id
func (s Set) Update(id core.RuleID, upd RuleUpdate) (Set, error) {
	out := s.Rules()
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if upd.Field != nil {
			out[i].Field = *upd.Field
		}
		if upd.Operator != nil {
			out[i].Operator = *upd.Operator
		}
		if upd.Value != nil {
			out[i].Value = *upd.Value
		}
		return Set{rules: out}, nil
	}
	return s, core.NewFilterNotFoundError(id)
}

// Clear returns the empty set
func (s Set) Clear() Set {
	return Set{}
}
