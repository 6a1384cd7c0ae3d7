package session

import (
	"math"

	"triagelens/domain/table"
)

// DefaultPageSize is the grid page size used when none is given
const DefaultPageSize = 10

// Page is one window of rows for the data grid. Index is zero based.
type Page struct {
	Index      int
	Size       int
	TotalRows  int
	TotalPages int
	Rows       *table.RowSet
}

// Paginate cuts rows into pages of size and returns page index. A negative
// index reads as 0; an index past the last page yields an empty page.
func Paginate(rows *table.RowSet, index, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if index < 0 {
		index = 0
	}

	total := rows.Len()
	page := Page{
		Index:      index,
		Size:       size,
		TotalRows:  total,
		TotalPages: total / size,
	}
	if total%size != 0 {
		page.TotalPages++
	}
	if rows == nil {
		return page
	}
	if index >= page.TotalPages || index > (math.MaxInt-size)/size {
		page.Rows = rows.Slice(0, 0)
		return page
	}

	from := index * size
	page.Rows = rows.Slice(from, from+size)
	return page
}
