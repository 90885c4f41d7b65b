package fu

import (
	"go-ml.dev/pkg/iokit"
	"path/filepath"
)

/*
ModelPath resolves a model name into the local models cache,
absolute paths are returned as is
*/
func ModelPath(s string) string {
	if filepath.IsAbs(s) {
		return s
	}
	return iokit.CacheFile(filepath.Join("go-ml", "Models", s))
}
