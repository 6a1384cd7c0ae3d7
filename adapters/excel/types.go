package excel

import "triagelens/domain/table"

// Result is the single response to a decode request: a RowSet or an error
type Result struct {
	RowSet *table.RowSet
	Err    error
}

// DecodeFunc turns named workbook bytes into a RowSet
type DecodeFunc func(source string, data []byte) (*table.RowSet, error)
