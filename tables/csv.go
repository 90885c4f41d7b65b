package tables

import (
	"encoding/csv"
	"go-ml.dev/pkg/zorros"
	"golang.org/x/xerrors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

/*
CsvPattern is the file name pattern ReadDir uses to select data files
*/
const CsvPattern = "*.csv"

// byte order mark spreadsheet tools put at the beginning of exported files
const bom = "\ufeff"

/*
ReadCSV reads table from CSV stream, the first record is a header.
Repeated header names are suffixed with .1, .2, ...
*/
func ReadCSV(rd io.Reader) (*Table, error) {
	r := csv.NewReader(rd)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, xerrors.New("no columns to parse, csv header is absent")
	}
	if err != nil {
		return nil, zorros.Trace(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	t := NewEmpty(uniqueNames(header))
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, zorros.Trace(err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	seen := map[string]bool{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		n := h
		for k := 1; seen[n]; k++ {
			n = h + "." + strconv.Itoa(k)
		}
		seen[n] = true
		names[i] = n
	}
	return names
}

/*
ReadCSVFile reads table from the CSV file
*/
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to read csv file `%v`: %v", path, err.Error())
	}
	return t, nil
}

/*
CsvFiles lists CSV files of the directory in directory-listing order
*/
func CsvFiles(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, xerrors.Errorf("cannot use non-existent path provided `%v`: %w", path, ErrPathNotFound)
	}
	if !st.IsDir() {
		return nil, xerrors.Errorf("provided path `%v` is not a directory: %w", path, ErrPathNotFound)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(CsvPattern, e.Name()); ok {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, xerrors.Errorf("no csv files found in provided data path `%v`: %w", path, ErrNoDataFound)
	}
	return files, nil
}

/*
ReadDir reads all CSV files of the directory and concatenates them into one table.
Rows of every file keep their order, files follow the directory listing.
*/
func ReadDir(path string) (*Table, error) {
	files, err := CsvFiles(path)
	if err != nil {
		return nil, err
	}
	ts := make([]*Table, len(files))
	for i, f := range files {
		if ts[i], err = ReadCSVFile(f); err != nil {
			return nil, err
		}
	}
	return Concat(ts...), nil
}

/*
LuckyReadDir reads directory and panics on error
*/
func LuckyReadDir(path string) *Table {
	t, err := ReadDir(path)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return t
}
