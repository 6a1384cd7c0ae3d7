package table

// Header is the ordered list of column names taken from the first sheet row.
// Names need not be unique; lookups resolve to the first occurrence.
type Header []string

// Row holds cells positionally aligned with its RowSet's header
type Row struct {
	cells []Cell
}

// NewRow builds a row from cells in header order
func NewRow(cells ...Cell) Row {
	return Row{cells: cells}
}

// At returns the cell at column position i, Empty when out of range
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r.cells) {
		return Empty()
	}
	return r.cells[i]
}

// Width is the number of cells stored for the row
func (r Row) Width() int {
	return len(r.cells)
}

// RowSet is an immutable ordered set of rows sharing one header, plus the
// name of the source it was decoded from. Filtering derives new RowSets that
// share row storage with the original.
type RowSet struct {
	source string
	header Header
	index  map[string]int
	rows   []Row
}

// NewRowSet builds a RowSet. Rows are padded with Empty cells to the header
// width and cells beyond it are dropped.
func NewRowSet(source string, header []string, rows []Row) *RowSet {
	h := make(Header, len(header))
	copy(h, header)

	normalized := make([]Row, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(h))
		copy(cells, row.cells)
		normalized[i] = Row{cells: cells}
	}

	return &RowSet{
		source: source,
		header: h,
		index:  buildIndex(h),
		rows:   normalized,
	}
}

// FromStrings is a convenience constructor that runs every value through Parse
func FromStrings(source string, header []string, records [][]string) *RowSet {
	rows := make([]Row, len(records))
	for i, rec := range records {
		cells := make([]Cell, len(rec))
		for j, v := range rec {
			cells[j] = Parse(v)
		}
		rows[i] = Row{cells: cells}
	}
	return NewRowSet(source, header, rows)
}

func buildIndex(h Header) map[string]int {
	index := make(map[string]int, len(h))
	for i, name := range h {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

// Source returns the provenance name (usually the uploaded file name)
func (rs *RowSet) Source() string {
	return rs.source
}

// Header returns a copy of the column names
func (rs *RowSet) Header() Header {
	h := make(Header, len(rs.header))
	copy(h, rs.header)
	return h
}

// Len returns the number of rows
func (rs *RowSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rows)
}

// Row returns row i
func (rs *RowSet) Row(i int) Row {
	return rs.rows[i]
}

// Index returns the position of the first column named name, or -1.
// An empty name never resolves so that unresolved roles read as Empty.
func (rs *RowSet) Index(name string) int {
	if name == "" {
		return -1
	}
	if i, ok := rs.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether name is in the header
func (rs *RowSet) HasColumn(name string) bool {
	return rs.Index(name) >= 0
}

// Value returns the cell of row i in column name, Empty for unknown columns
func (rs *RowSet) Value(i int, name string) Cell {
	return rs.rows[i].At(rs.Index(name))
}

// Column returns every cell of the named column in row order
func (rs *RowSet) Column(name string) []Cell {
	idx := rs.Index(name)
	out := make([]Cell, len(rs.rows))
	for i, row := range rs.rows {
		out[i] = row.At(idx)
	}
	return out
}

// Select derives a RowSet holding rows at the given positions, in the order given
func (rs *RowSet) Select(indices []int) *RowSet {
	rows := make([]Row, len(indices))
	for i, idx := range indices {
		rows[i] = rs.rows[idx]
	}
	return &RowSet{
		source: rs.source,
		header: rs.header,
		index:  rs.index,
		rows:   rows,
	}
}

// Slice derives a RowSet holding rows [from, to), clamped to the valid range
func (rs *RowSet) Slice(from, to int) *RowSet {
	if from < 0 {
		from = 0
	}
	if to > len(rs.rows) {
		to = len(rs.rows)
	}
	if to < 0 {
		to = 0
	}
	if from > to {
		from = to
	}
	return &RowSet{
		source: rs.source,
		header: rs.header,
		index:  rs.index,
		rows:   rs.rows[from:to:to],
	}
}

// WithSource returns the same rows under a different provenance name
func (rs *RowSet) WithSource(source string) *RowSet {
	return &RowSet{
		source: source,
		header: rs.header,
		index:  rs.index,
		rows:   rs.rows,
	}
}

// Record maps column names to the cells of row i. Duplicate names keep the
// first column's value.
func (rs *RowSet) Record(i int) map[string]Cell {
	rec := make(map[string]Cell, len(rs.index))
	for name, idx := range rs.index {
		rec[name] = rs.rows[i].At(idx)
	}
	return rec
}
