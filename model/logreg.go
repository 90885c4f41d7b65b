package model

import (
	"go-ml.dev/pkg/logreg/fu"
	"go-ml.dev/pkg/logreg/tables"
	"go-ml.dev/pkg/zorros/zlog"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultRegRate   = 0.01
	DefaultMaxIter   = 100
	DefaultTolerance = 1e-4
	PredictedCol     = "Predicted"

	RegRateParam   = "reg_rate"
	MaxIterParam   = "max_iter"
	ToleranceParam = "tolerance"
)

/*
LogisticRegression is L2 regularized linear classifier.
It minimizes 0.5*|w|^2 + C*sum(log(1+exp(-y*(w.x+b)))) where C = 1/RegRate,
so the greater RegRate is the stronger the model is regularized.
The intercept is fitted as a weight of constant feature 1 and is regularized too.
Labels with more than two classes are fitted one-vs-rest.
*/
type LogisticRegression struct {
	RegRate   float64 // regularization rate, must be positive
	MaxIter   int     // limit of optimizer iterations, 100 by default
	Tolerance float64 // gradient norm to stop, 1e-4 by default
	Predicted string  // prediction column name, 'Predicted' by default
}

/*
Params returns hyper-parameters of the model
*/
func (e LogisticRegression) Params() Params {
	return Params{
		RegRateParam:   e.RegRate,
		MaxIterParam:   float64(fu.Fnzi(e.MaxIter, DefaultMaxIter)),
		ToleranceParam: fu.Fnzd(e.Tolerance, DefaultTolerance),
	}
}

/*
C is the inverse of regularization rate
*/
func (e LogisticRegression) C() (float64, error) {
	if !(e.RegRate > 0) || math.IsInf(e.RegRate, 0) {
		return 0, xerrors.Errorf("regularization rate must be a positive finite number, got %v: %w", e.RegRate, ErrInvalidParameter)
	}
	return 1 / e.RegRate, nil
}

/*
Feed model with the dataset
*/
func (e LogisticRegression) Feed(ds Dataset) FatModel {
	return func(workout Workout) (*Report, error) {
		return e.fit(ds, workout)
	}
}

func (e LogisticRegression) fit(ds Dataset, w Workout) (*Report, error) {
	c, err := e.C()
	if err != nil {
		return nil, err
	}
	xTrain, xTest, yTrain, yTest, err := ds.Subsets()
	if err != nil {
		return nil, err
	}
	features := xTrain.Names()
	x, err := xTrain.Matrix()
	if err != nil {
		return nil, xerrors.Errorf("train features: %v: %w", err.Error(), ErrFitFailure)
	}
	labels, err := labelKeys(yTrain, TrainSubset)
	if err != nil {
		return nil, err
	}
	classes := distinct(labels)
	if len(classes) < 2 {
		return nil, xerrors.Errorf("needs samples of at least 2 classes in the data, but the data contains only %d: %w", len(classes), ErrFitFailure)
	}

	positives := classes[1:]
	if len(classes) > 2 {
		positives = classes
	}
	_, d := x.Dims()
	p := &Predictor{
		state: predictorState{
			Kind:      Kind,
			Features:  features,
			Label:     ds.Label,
			Predicted: fu.Fnzs(e.Predicted, PredictedCol),
			Classes:   classes,
			RegRate:   e.RegRate,
			Coef:      make([][]float64, len(positives)),
			Intercept: make([]float64, len(positives)),
		},
	}
	iterations := 0
	for k, positive := range positives {
		y := make([]float64, len(labels))
		for i, l := range labels {
			y[i] = -1
			if l == positive {
				y[i] = 1
			}
		}
		wb, n, err := e.solve(x, y, c)
		if err != nil {
			return nil, err
		}
		iterations += n
		p.state.Coef[k] = wb[:d]
		p.state.Intercept[k] = wb[d]
	}

	trainM, trainDone := evaluate(p, x, labels, w.TrainMetrics())
	xt, err := xTest.Matrix(features...)
	if err != nil {
		return nil, xerrors.Errorf("test features: %v: %w", err.Error(), ErrFitFailure)
	}
	testLabels, err := labelKeys(yTest, TestSubset)
	if err != nil {
		return nil, err
	}
	testM, testDone := evaluate(p, xt, testLabels, w.TestMetrics())
	report, _, err := w.Complete(p, trainM, testM, trainDone && testDone)
	if err != nil {
		return nil, err
	}
	report.Iterations = iterations
	report.Model = p
	return report, nil
}

func evaluate(p *Predictor, x *mat.Dense, labels []string, m MetricsUpdater) (fu.Struct, bool) {
	for i, l := range p.labels(x) {
		m.Update(l, labels[i])
	}
	return m.Complete()
}

/*
solve fits binary problem with labels +1/-1, returns weights with intercept as the last one
*/
func (e LogisticRegression) solve(x *mat.Dense, y []float64, c float64) ([]float64, int, error) {
	n, d := x.Dims()
	xa := mat.NewDense(n, d+1, nil)
	xa.Slice(0, n, 0, d).(*mat.Dense).Copy(x)
	for i := 0; i < n; i++ {
		xa.Set(i, d, 1)
	}
	z := mat.NewVecDense(n, nil)
	r := mat.NewVecDense(n, nil)
	g := mat.NewVecDense(d+1, nil)
	problem := optimize.Problem{
		Func: func(wb []float64) float64 {
			z.MulVec(xa, mat.NewVecDense(d+1, wb))
			f := 0.5 * floats.Dot(wb, wb)
			for i := 0; i < n; i++ {
				f += c * fu.LogOnePlusExp(-y[i]*z.AtVec(i))
			}
			return f
		},
		Grad: func(grad, wb []float64) {
			z.MulVec(xa, mat.NewVecDense(d+1, wb))
			for i := 0; i < n; i++ {
				r.SetVec(i, -c*y[i]*fu.Sigmoid(-y[i]*z.AtVec(i)))
			}
			g.MulVec(xa.T(), r)
			copy(grad, wb)
			floats.Add(grad, g.RawVector().Data)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: fu.Fnzd(e.Tolerance, DefaultTolerance),
		MajorIterations:   fu.Fnzi(e.MaxIter, DefaultMaxIter),
	}
	result, err := optimize.Minimize(problem, make([]float64, d+1), settings, &optimize.LBFGS{})
	if result == nil || !fu.Finite(result.X) {
		if err == nil {
			err = xerrors.New("optimizer diverged")
		}
		return nil, 0, xerrors.Errorf("%v: %w", err.Error(), ErrFitFailure)
	}
	if err != nil {
		zlog.Warning("optimizer stopped with: " + err.Error())
	} else if result.Status == optimize.IterationLimit {
		zlog.Warning("optimizer failed to converge, increase the number of iterations")
	}
	return append([]float64{}, result.X...), result.Stats.MajorIterations, nil
}

/*
labelKeys normalizes label cells, numeric labels are compared by value so 1 and 1.0 are the same class.
Every cell is normalized on its own, so train and test labels get the same keys.
*/
func labelKeys(c tables.Column, subset string) ([]string, error) {
	r := c.Strings()
	for i, s := range r {
		if strings.TrimSpace(s) == "" {
			return nil, xerrors.Errorf("label `%v` is missing in %v row %d: %w", c.Name(), subset, i, ErrFitFailure)
		}
		if v, err := tables.ParseFloat(s); err == nil {
			r[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return r, nil
}

/*
distinct returns sorted class labels, numerically when all of them are numbers
*/
func distinct(labels []string) []string {
	seen := map[string]bool{}
	r := []string{}
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			r = append(r, l)
		}
	}
	numeric := true
	v := make(map[string]float64, len(r))
	for _, l := range r {
		x, err := tables.ParseFloat(l)
		if err != nil {
			numeric = false
			break
		}
		v[l] = x
	}
	if numeric {
		sort.Slice(r, func(i, j int) bool { return v[r[i]] < v[r[j]] })
	} else {
		sort.Strings(r)
	}
	return r
}
