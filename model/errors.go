package model

import "golang.org/x/xerrors"

var (
	// ErrInvalidParameter means a hyper-parameter or split setting is out of its domain
	ErrInvalidParameter = xerrors.New("invalid parameter")
	// ErrFitFailure means the fitting routine rejected the data
	ErrFitFailure = xerrors.New("fit failure")
)
