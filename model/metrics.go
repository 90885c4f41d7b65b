package model

import (
	"go-ml.dev/pkg/logreg/fu"
)

const (
	TrainSubset = "train"
	TestSubset  = "test"
)

const (
	IterationCol = "Iteration"
	SubsetCol    = "Subset"
	TotalCol     = "Total"
	CorrectCol   = "Correct"
	AccuracyCol  = "Accuracy"
)

/*
Metrics is a factory of per-subset metrics updaters
*/
type Metrics interface {
	New(iteration int, subset string) MetricsUpdater
	Names() []string
}

/*
MetricsUpdater accumulates predictions of one subset
*/
type MetricsUpdater interface {
	// Update adds predicted and true labels of a sample
	Update(predicted, label string)
	// Complete returns collected metrics and true if the goal is achieved
	Complete() (fu.Struct, bool)
}

/*
Score calculates one number from train and test metrics, greater is better
*/
type Score func(train, test fu.Struct) float64

/*
TestAccuracy scores a training by the accuracy on the test subset
*/
func TestAccuracy(_, test fu.Struct) float64 {
	return test.Float(AccuracyCol)
}

/*
Classification metrics, the fraction of correctly predicted labels.
Accuracy is a goal, updater reports completion when it's reached.
*/
type Classification struct {
	Accuracy float64
}

type classification struct {
	Classification
	iteration, total, correct int
	subset                    string
}

func (m Classification) Names() []string {
	return []string{IterationCol, SubsetCol, TotalCol, CorrectCol, AccuracyCol}
}

func (m Classification) New(iteration int, subset string) MetricsUpdater {
	return &classification{Classification: m, iteration: iteration, subset: subset}
}

func (m *classification) Update(predicted, label string) {
	m.total++
	if predicted == label {
		m.correct++
	}
}

func (m *classification) Complete() (fu.Struct, bool) {
	acc := 0.
	if m.total > 0 {
		acc = float64(m.correct) / float64(m.total)
	}
	subset := 0.
	if m.subset == TestSubset {
		subset = 1
	}
	s := fu.MakeStruct(m.Names(), float64(m.iteration), subset, float64(m.total), float64(m.correct), acc)
	return s, m.Accuracy > 0 && acc >= m.Accuracy
}
