package models

// Table is the whole batch: an ordered column list and the records in
// source order. Stages mutate it column by column.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	return t.index(col) >= 0
}

// AddColumn appends col if it is not present yet. Callers fanning out over
// records must register their columns before starting workers.
func (t *Table) AddColumn(col string) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
}

// DropColumn removes col from the column list and from every record.
func (t *Table) DropColumn(col string) {
	i := t.index(col)
	if i < 0 {
		return
	}
	t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
	for _, r := range t.Records {
		delete(r, col)
	}
}

// RenameColumn renames from to to, keeping its position.
func (t *Table) RenameColumn(from, to string) {
	i := t.index(from)
	if i < 0 {
		return
	}
	t.Columns[i] = to
	for _, r := range t.Records {
		if v, ok := r[from]; ok {
			r[to] = v
			delete(r, from)
		}
	}
}

// Append adds a record, registering any columns it introduces.
func (t *Table) Append(r Record) {
	for col := range r {
		t.AddColumn(col)
	}
	t.Records = append(t.Records, r)
}

// Column returns the values of col in record order.
func (t *Table) Column(col string) []any {
	out := make([]any, len(t.Records))
	for i, r := range t.Records {
		out[i] = r[col]
	}
	return out
}

// Filter keeps the records for which keep returns true, preserving order.
// It returns the number of records removed.
func (t *Table) Filter(keep func(Record) bool) int {
	out := t.Records[:0]
	for _, r := range t.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	removed := len(t.Records) - len(out)
	for i := len(out); i < len(t.Records); i++ {
		t.Records[i] = nil
	}
	t.Records = out
	return removed
}

func (t *Table) index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}
