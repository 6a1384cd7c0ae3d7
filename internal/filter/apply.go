package filter

import (
	"strings"

	"triagelens/domain/table"
)

// Apply returns the rows that satisfy every rule, in their original order.
// An empty set returns rows itself. Rules naming a column that is not in the
// header read every cell as Empty.
func Apply(rows *table.RowSet, set Set) *table.RowSet {
	if set.Len() == 0 || rows == nil {
		return rows
	}

	columns := make([]int, set.Len())
	for i, rule := range set.rules {
		columns[i] = rows.Index(rule.Field)
	}

	keep := make([]int, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		row := rows.Row(i)
		pass := true
		for j, rule := range set.rules {
			if !Match(rule.Operator, row.At(columns[j]), rule.Value) {
				pass = false
				break
			}
		}
		if pass {
			keep = append(keep, i)
		}
	}
	return rows.Select(keep)
}

// Match evaluates one operator against a cell and the rule literal.
// Unknown operators match every cell so that a rule the engine does not
// understand never hides data.
func Match(op Operator, cell, value table.Cell) bool {
	switch op {
	case OpContains:
		return strings.Contains(lower(cell), lower(value))
	case OpEquals:
		return lower(cell) == lower(value)
	case OpStartsWith:
		return strings.HasPrefix(lower(cell), lower(value))
	case OpEndsWith:
		return strings.HasSuffix(lower(cell), lower(value))
	case OpGreater, OpLess:
		a, okA := cell.Float()
		b, okB := value.Float()
		if !okA || !okB {
			return false
		}
		if op == OpGreater {
			return a > b
		}
		return a < b
	case OpEq:
		return looseEqual(cell, value)
	case OpNeq:
		return !looseEqual(cell, value)
	case OpIsEmpty:
		return isEmpty(cell)
	case OpIsNotEmpty:
		return !isEmpty(cell)
	default:
		return true
	}
}

// looseEqual compares numerically when both sides parse, else as exact strings
func looseEqual(a, b table.Cell) bool {
	fa, okA := a.Float()
	fb, okB := b.Float()
	if okA && okB {
		return fa == fb
	}
	return a.String() == b.String()
}

func isEmpty(c table.Cell) bool {
	return c.IsEmpty() || c.String() == ""
}

func lower(c table.Cell) string {
	return strings.ToLower(c.String())
}
