package model

import (
	"fmt"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/logreg/fu"
	"go-ml.dev/pkg/zorros"
)

/*
Training is the default implementation of unified training interface
*/
type Training struct {
	Metrics   Metrics      // evaluating metrics, Classification{} by default
	Score     Score        // score function, TestAccuracy by default
	ModelFile iokit.Output // file to store final model
	Verbose   func(string) // print function
}

type workout struct {
	iteration int
	training  *Training
	done      bool
}

func (t Training) Workout() Workout {
	if t.Metrics == nil {
		t.Metrics = Classification{}
	}
	if t.Score == nil {
		t.Score = TestAccuracy
	}
	return &workout{iteration: 0, training: &t}
}

func (w *workout) Iteration() int {
	return w.iteration
}

func (w *workout) TrainMetrics() MetricsUpdater {
	return w.training.Metrics.New(w.iteration, TrainSubset)
}

func (w *workout) TestMetrics() MetricsUpdater {
	return w.training.Metrics.New(w.iteration, TestSubset)
}

/*
Complete finishes the fit: scores metrics and stores the model when ModelFile is specified.
The fitted model is immutable, so the first completion is the final one.
*/
func (w *workout) Complete(m Memorizer, train, test fu.Struct, metricsDone bool) (report *Report, done bool, err error) {
	if w.done {
		return nil, true, zorros.Errorf("training is already done")
	}
	score := w.training.Score(train, test)
	if w.training.ModelFile != nil {
		if err = Memorize(w.training.ModelFile, m); err != nil {
			return
		}
	}
	w.done, done = true, true
	report = &Report{Train: train, Test: test, Score: score}
	if metricsDone {
		w.Verbose("accuracy goal is achieved")
	}
	w.Verbose(fmt.Sprintf(
		"[%3d] accuracy: %.5f/%.5f, score: %.5f",
		w.Iteration(), train.Float(AccuracyCol), test.Float(AccuracyCol), score))
	return
}

func (w *workout) Verbose(s string) {
	if w.training.Verbose != nil {
		w.training.Verbose(s)
	}
}
