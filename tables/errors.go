package tables

import "golang.org/x/xerrors"

var (
	// ErrPathNotFound means the training data path does not exist or is not a directory
	ErrPathNotFound = xerrors.New("path not found")
	// ErrNoDataFound means there is no CSV file at the training data path
	ErrNoDataFound = xerrors.New("no data found")
	// ErrMissingColumn means a required column is absent from the table
	ErrMissingColumn = xerrors.New("missing column")
)
