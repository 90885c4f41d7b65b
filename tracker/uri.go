package tracker

import (
	"go-ml.dev/pkg/zorros"
	"path/filepath"
	"strings"
)

const (
	SqliteScheme = "sqlite://"
	DefaultURI   = SqliteScheme + "mlruns.db"
)

/*
DatabasePath converts tracking URI into sqlite database file path.
It accepts sqlite:///abs/path.db, sqlite://relative/path.db and bare file paths.
*/
func DatabasePath(uri string) (string, error) {
	if uri == "" {
		uri = DefaultURI
	}
	if strings.HasPrefix(uri, SqliteScheme) {
		p := strings.TrimPrefix(uri, SqliteScheme)
		if p == "" || p == "/" {
			return "", zorros.Errorf("tracking uri `%v` has no database path", uri)
		}
		return filepath.Clean(p), nil
	}
	if strings.Contains(uri, "://") {
		return "", zorros.Errorf("tracking uri `%v` is not supported, use %v<path>", uri, SqliteScheme)
	}
	return filepath.Clean(uri), nil
}
