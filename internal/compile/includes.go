package compile

import (
	"os"
	"path/filepath"
)

// DefaultIncludePath is spec.md §6's four-entry #include search path, tried
// in order. Static built-in headers (stdarg.h, stddef.h) never reach this
// path: internal/cpp checks its own staticinclude registry first.
var DefaultIncludePath = []string{
	"./rc_includes",
	"../rc_includes",
	"/usr/include/rosebud_includes",
	"/usr/include",
}

// pathResolver implements internal/cpp.IncludeResolver by walking a fixed,
// ordered list of directories and reading the first match off disk.
type pathResolver struct {
	dirs []string
}

func newPathResolver(dirs []string) *pathResolver {
	if len(dirs) == 0 {
		dirs = DefaultIncludePath
	}
	return &pathResolver{dirs: dirs}
}

func (r *pathResolver) Resolve(name string, angled bool) (string, bool) {
	for _, dir := range r.dirs {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(b), true
		}
	}
	return "", false
}
