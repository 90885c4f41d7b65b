package tables

import (
	"golang.org/x/xerrors"
	"strings"
)

/*
Table is an in-memory tabular data: ordered rows of named columns.
Cells keep their raw text, the numeric or categorical meaning is decided by consumers.
An empty cell is a missing value.
*/
type Table struct {
	names []string
	rows  [][]string
}

/*
New creates table with given column names, rows are copied
*/
func New(names []string, rows [][]string) *Table {
	t := &Table{names: append([]string{}, names...)}
	for _, r := range rows {
		row := make([]string, len(names))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t
}

/*
NewEmpty creates table without rows
*/
func NewEmpty(names []string) *Table {
	return &Table{names: append([]string{}, names...)}
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Width() int {
	return len(t.names)
}

func (t *Table) Names() []string {
	return append([]string{}, t.names...)
}

func (t *Table) Pos(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

func (t *Table) Has(name string) bool {
	return t.Pos(name) >= 0
}

/*
Require checks the table has all named columns
*/
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return xerrors.Errorf("column `%v` is not found among [%v]: %w", n, strings.Join(t.names, ","), ErrMissingColumn)
		}
	}
	return nil
}

/*
Row returns a copy of the i-th row
*/
func (t *Table) Row(i int) []string {
	return append([]string{}, t.rows[i]...)
}

/*
Col returns a column view, it panics if there is no such column
*/
func (t *Table) Col(name string) Column {
	j := t.Pos(name)
	if j < 0 {
		panic(xerrors.Errorf("column `%v` is not found: %w", name, ErrMissingColumn))
	}
	return Column{name: name, table: t, index: j}
}

/*
Except returns a new table without named columns
*/
func (t *Table) Except(names ...string) *Table {
	keep := make([]string, 0, len(t.names))
loop:
	for _, n := range t.names {
		for _, x := range names {
			if x == n {
				continue loop
			}
		}
		keep = append(keep, n)
	}
	return t.project(keep)
}

/*
Only returns a new table containing the named columns in the given order
*/
func (t *Table) Only(names ...string) (*Table, error) {
	if err := t.Require(names...); err != nil {
		return nil, err
	}
	return t.project(names), nil
}

func (t *Table) project(names []string) *Table {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Pos(n)
	}
	r := NewEmpty(names)
	r.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		q := make([]string, len(idx))
		for k, j := range idx {
			q[k] = row[j]
		}
		r.rows[i] = q
	}
	return r
}

/*
Take returns a new table with rows selected by index in the given order
*/
func (t *Table) Take(rows []int) *Table {
	r := NewEmpty(t.names)
	r.rows = make([][]string, len(rows))
	for i, j := range rows {
		r.rows[i] = append([]string{}, t.rows[j]...)
	}
	return r
}

/*
With returns a new table with an additional (or replaced) column
*/
func (t *Table) With(values []string, name string) *Table {
	if len(values) != len(t.rows) {
		panic(xerrors.Errorf("column `%v` has %d values but table has %d rows", name, len(values), len(t.rows)))
	}
	j := t.Pos(name)
	r := NewEmpty(t.names)
	if j < 0 {
		r.names = append(r.names, name)
	}
	r.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		q := append(make([]string, 0, len(r.names)), row...)
		if j < 0 {
			q = append(q, values[i])
		} else {
			q[j] = values[i]
		}
		r.rows[i] = q
	}
	return r
}

/*
Concat joins rows of tables, columns are aligned by name in order of the first appearance.
A cell of a column absent in a source table is empty.
*/
func Concat(ts ...*Table) *Table {
	r := &Table{}
	for _, t := range ts {
		for _, n := range t.names {
			if !r.Has(n) {
				r.names = append(r.names, n)
			}
		}
	}
	for _, t := range ts {
		idx := make([]int, len(t.names))
		for i, n := range t.names {
			idx[i] = r.Pos(n)
		}
		for _, row := range t.rows {
			q := make([]string, len(r.names))
			for i, j := range idx {
				q[j] = row[i]
			}
			r.rows = append(r.rows, q)
		}
	}
	return r
}
