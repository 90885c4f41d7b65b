package tables

import (
	"golang.org/x/xerrors"
	"math"
	"strconv"
	"strings"
)

/*
Column is a read-only view of a table column
*/
type Column struct {
	name  string
	table *Table
	index int
}

func (c Column) Name() string {
	return c.name
}

func (c Column) Len() int {
	if c.table == nil {
		return 0
	}
	return c.table.Len()
}

func (c Column) String(i int) string {
	return c.table.rows[i][c.index]
}

/*
Float returns numeric value of the i-th cell or NaN when the cell is not a number
*/
func (c Column) Float(i int) float64 {
	v, err := ParseFloat(c.String(i))
	if err != nil {
		return math.NaN()
	}
	return v
}

/*
Strings returns a copy of the column cells
*/
func (c Column) Strings() []string {
	r := make([]string, c.Len())
	for i := range r {
		r[i] = c.String(i)
	}
	return r
}

/*
Floats converts the column to numbers, fails on the first missing or non-numeric cell
*/
func (c Column) Floats() ([]float64, error) {
	r := make([]float64, c.Len())
	for i := range r {
		v, err := ParseFloat(c.String(i))
		if err != nil {
			return nil, xerrors.Errorf("column `%v` row %d: %w", c.name, i, err)
		}
		r[i] = v
	}
	return r, nil
}

/*
Numeric checks all cells of the column are numbers
*/
func (c Column) Numeric() bool {
	for i := 0; i < c.Len(); i++ {
		if _, err := ParseFloat(c.String(i)); err != nil {
			return false
		}
	}
	return true
}

/*
ParseFloat parses a cell as a number, empty cells are reported as missing values
*/
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, xerrors.New("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, xerrors.Errorf("`%v` is not a number", s)
	}
	return v, nil
}
