package model

import (
	"encoding/json"
	"go-ml.dev/pkg/logreg/fu"
	"go-ml.dev/pkg/logreg/tables"
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
	"io"
)

/*
Kind identifies memorized logistic regression models
*/
const Kind = "logistic_regression"

type predictorState struct {
	Kind      string      `json:"kind"`
	Features  []string    `json:"features"`
	Label     string      `json:"label"`
	Predicted string      `json:"predicted"`
	Classes   []string    `json:"classes"`
	RegRate   float64     `json:"reg_rate"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

/*
Predictor is a fitted logistic regression, it's immutable
*/
type Predictor struct {
	state predictorState
}

func (p *Predictor) Features() []string {
	return append([]string{}, p.state.Features...)
}

func (p *Predictor) Predicted() string {
	return p.state.Predicted
}

func (p *Predictor) Label() string {
	return p.state.Label
}

func (p *Predictor) Classes() []string {
	return append([]string{}, p.state.Classes...)
}

func (p *Predictor) RegRate() float64 {
	return p.state.RegRate
}

/*
Coef returns a copy of weights, one row per binary problem
*/
func (p *Predictor) Coef() [][]float64 {
	r := make([][]float64, len(p.state.Coef))
	for i, w := range p.state.Coef {
		r[i] = append([]float64{}, w...)
	}
	return r
}

func (p *Predictor) Intercept() []float64 {
	return append([]float64{}, p.state.Intercept...)
}

/*
Decision calculates w.x+b for every row and every binary problem
*/
func (p *Predictor) Decision(x *mat.Dense) *mat.Dense {
	n, _ := x.Dims()
	k := len(p.state.Coef)
	w := mat.NewDense(len(p.state.Features), k, nil)
	for j, c := range p.state.Coef {
		w.SetCol(j, c)
	}
	r := mat.NewDense(n, k, nil)
	r.Mul(x, w)
	r.Apply(func(_, j int, v float64) float64 { return v + p.state.Intercept[j] }, r)
	return r
}

func (p *Predictor) labels(x *mat.Dense) []string {
	d := p.Decision(x)
	n, k := d.Dims()
	r := make([]string, n)
	for i := range r {
		if k == 1 {
			r[i] = p.state.Classes[0]
			if d.At(i, 0) > 0 {
				r[i] = p.state.Classes[1]
			}
		} else {
			r[i] = p.state.Classes[fu.Indmaxd(d.RawRowView(i))]
		}
	}
	return r
}

/*
Predict returns new table with all original columns except features
adding one new column with predicted label
*/
func (p *Predictor) Predict(t *tables.Table) (*tables.Table, error) {
	x, err := t.Matrix(p.state.Features...)
	if err != nil {
		return nil, err
	}
	return t.Except(p.state.Features...).With(p.labels(x), p.state.Predicted), nil
}

/*
Memorize writes model as JSON
*/
func (p *Predictor) Memorize(w io.Writer) error {
	return json.NewEncoder(w).Encode(p.state)
}

/*
ReadPredictor reads model written by Memorize
*/
func ReadPredictor(r io.Reader) (*Predictor, error) {
	p := &Predictor{}
	if err := json.NewDecoder(r).Decode(&p.state); err != nil {
		return nil, zorros.Trace(err)
	}
	if p.state.Kind != Kind {
		return nil, zorros.Errorf("model kind `%v` is not supported", p.state.Kind)
	}
	if len(p.state.Coef) == 0 || len(p.state.Coef) != len(p.state.Intercept) {
		return nil, zorros.Errorf("model has inconsistent weights")
	}
	classes := len(p.state.Coef)
	if classes == 1 {
		classes = 2
	}
	if len(p.state.Classes) != classes {
		return nil, zorros.Errorf("model has %d classes but %d are expected by weights", len(p.state.Classes), classes)
	}
	if len(p.state.Features) == 0 {
		return nil, zorros.Errorf("model has no features")
	}
	for i, w := range p.state.Coef {
		if len(w) != len(p.state.Features) {
			return nil, zorros.Errorf("model weights row %d has %d values but there are %d features", i, len(w), len(p.state.Features))
		}
	}
	return p, nil
}
