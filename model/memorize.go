package model

import (
	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
	"os"
)

/*
Memorize writes xz compressed model into output
*/
func Memorize(output iokit.Output, m Memorizer) (err error) {
	wh, err := output.Create()
	if err != nil {
		return zorros.Trace(err)
	}
	defer wh.End()
	xw, err := xz.NewWriter(wh)
	if err != nil {
		return zorros.Trace(err)
	}
	if err = m.Memorize(xw); err != nil {
		return zorros.Wrapf(err, "failed to memorize model: %v", err.Error())
	}
	if err = xw.Close(); err != nil {
		return zorros.Trace(err)
	}
	if err = wh.Commit(); err != nil {
		return zorros.Trace(err)
	}
	return
}

/*
Objectify reads a model written by Memorize
*/
func Objectify(path string) (*Predictor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer f.Close()
	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, zorros.Wrapf(err, "model file `%v` is not xz compressed: %v", path, err.Error())
	}
	return ReadPredictor(xr)
}

/*
LuckyObjectify reads a model and panics on error
*/
func LuckyObjectify(path string) *Predictor {
	p, err := Objectify(path)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return p
}
