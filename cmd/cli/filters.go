package main

import (
	"fmt"
	"strings"

	"triagelens/domain/table"
	"triagelens/internal/filter"
)

// parseFilter reads a --filter flag of the form field:operator:value. The
// value may itself contain colons and may be omitted for is_empty and
// is_not_empty.
func parseFilter(spec string) (filter.Rule, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return filter.Rule{}, fmt.Errorf("filter %q must be field:operator:value", spec)
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return filter.Rule{}, fmt.Errorf("filter %q has no field", spec)
	}
	op, err := filter.ParseOperator(parts[1])
	if err != nil {
		return filter.Rule{}, err
	}

	value := ""
	if len(parts) == 3 {
		value = parts[2]
	} else if op != filter.OpIsEmpty && op != filter.OpIsNotEmpty {
		return filter.Rule{}, fmt.Errorf("filter %q needs a value for %s", spec, op)
	}
	return filter.NewRule(field, op, value), nil
}

// parseFilters builds a filter set from repeated --filter flags
func parseFilters(specs []string) (filter.Set, error) {
	rules := make([]filter.Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := parseFilter(spec)
		if err != nil {
			return filter.Set{}, err
		}
		rules = append(rules, rule)
	}
	return filter.NewSet(rules...), nil
}

// applyFilters narrows rows with the --filter flags
func applyFilters(rows *table.RowSet, specs []string) (*table.RowSet, error) {
	set, err := parseFilters(specs)
	if err != nil {
		return nil, err
	}
	return filter.Apply(rows, set), nil
}
