package model

import (
	"go-ml.dev/pkg/logreg/tables"
	"golang.org/x/xerrors"
	"math"
	"math/rand"
	"path"
	"strconv"
)

const (
	// DefaultTestSize is the part of rows going to the test subset
	DefaultTestSize = 0.2
	// DefaultSeed makes the split reproducible
	DefaultSeed = 42
	// TestCol is the name of boolean column Split adds to the source
	TestCol = "Test"
)

/*
Dataset is an abstraction of some source of a data to feed hungry models
*/
type Dataset struct {
	Source   *tables.Table // the whole data including label and test columns
	Label    string        // name of the column containing label to train
	Test     string        // name of boolean column to select test data
	Features []string      // patterns of feature names, all except Label and Test when empty

	order []int // rows order the split produced, natural order if nil
}

/*
Split separates features from the label column and marks 20% of rows as a test subset.
The random permutation is seeded by 42, so the same table gives the same split.
*/
func Split(t *tables.Table, label string) (Dataset, error) {
	return SplitWith(t, label, DefaultTestSize, DefaultSeed)
}

/*
SplitWith is Split with custom test size (0,1) and seed.
The test subset gets ceil(testSize*rows) rows, the rest goes to the train subset.
*/
func SplitWith(t *tables.Table, label string, testSize float64, seed int64) (ds Dataset, err error) {
	if err = t.Require(label); err != nil {
		return
	}
	if !(testSize > 0 && testSize < 1) {
		err = xerrors.Errorf("test size must be in range (0,1), got %v: %w", testSize, ErrInvalidParameter)
		return
	}
	n := t.Len()
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		err = xerrors.Errorf("with %d rows and test size %v one of subsets is empty: %w", n, testSize, ErrInvalidParameter)
		return
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	flag := make([]string, n)
	for i := range flag {
		flag[i] = strconv.FormatBool(false)
	}
	for _, j := range perm[:nTest] {
		flag[j] = strconv.FormatBool(true)
	}
	test := TestCol
	for k := 1; t.Has(test); k++ {
		test = TestCol + "." + strconv.Itoa(k)
	}
	ds = Dataset{
		Source: t.With(flag, test),
		Label:  label,
		Test:   test,
		order:  append(append(make([]int, 0, n), perm[nTest:]...), perm[:nTest]...),
	}
	return
}

/*
FeatureNames resolves Features patterns against the source columns
*/
func (ds Dataset) FeatureNames() ([]string, error) {
	r := []string{}
	for _, n := range ds.Source.Names() {
		if n == ds.Label || n == ds.Test {
			continue
		}
		if len(ds.Features) == 0 {
			r = append(r, n)
			continue
		}
		for _, p := range ds.Features {
			if ok, err := path.Match(p, n); err != nil {
				return nil, xerrors.Errorf("bad feature pattern `%v`: %w", p, ErrInvalidParameter)
			} else if ok {
				r = append(r, n)
				break
			}
		}
	}
	if len(r) == 0 {
		return nil, xerrors.Errorf("dataset has no feature columns: %w", tables.ErrMissingColumn)
	}
	return r, nil
}

/*
Rows returns indices of train and test rows
*/
func (ds Dataset) Rows() (train, test []int, err error) {
	if err = ds.Source.Require(ds.Label); err != nil {
		return
	}
	order := ds.order
	if order == nil {
		order = make([]int, ds.Source.Len())
		for i := range order {
			order[i] = i
		}
	}
	if ds.Test == "" {
		return order, []int{}, nil
	}
	if err = ds.Source.Require(ds.Test); err != nil {
		return
	}
	c := ds.Source.Col(ds.Test)
	train, test = []int{}, []int{}
	for _, i := range order {
		b, e := strconv.ParseBool(c.String(i))
		if e != nil {
			err = xerrors.Errorf("test column `%v` row %d is not boolean: %w", ds.Test, i, ErrInvalidParameter)
			return
		}
		if b {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	return
}

/*
Subsets returns features and labels of train and test subsets
*/
func (ds Dataset) Subsets() (xTrain, xTest *tables.Table, yTrain, yTest tables.Column, err error) {
	var train, test []int
	if train, test, err = ds.Rows(); err != nil {
		return
	}
	names, err := ds.FeatureNames()
	if err != nil {
		return
	}
	x, err := ds.Source.Only(names...)
	if err != nil {
		return
	}
	y, err := ds.Source.Only(ds.Label)
	if err != nil {
		return
	}
	xTrain, xTest = x.Take(train), x.Take(test)
	yTrain, yTest = y.Take(train).Col(ds.Label), y.Take(test).Col(ds.Label)
	return
}
