package tables

import (
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

/*
Matrix converts named numeric columns into a dense rows x columns matrix.
All columns are used when names are not specified.
*/
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		names = t.names
	}
	if err := t.Require(names...); err != nil {
		return nil, err
	}
	if t.Len() == 0 || len(names) == 0 {
		return nil, xerrors.Errorf("can't make matrix of %d rows x %d columns", t.Len(), len(names))
	}
	m := mat.NewDense(t.Len(), len(names), nil)
	for j, n := range names {
		v, err := t.Col(n).Floats()
		if err != nil {
			return nil, err
		}
		m.SetCol(j, v)
	}
	return m, nil
}
