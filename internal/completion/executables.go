package completion

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Executables returns the names of executables on PATH that start with
// prefix. When PATHEXT is set, a file is executable if its extension is
// listed there; otherwise the file mode decides.
func Executables(prefix string, getenv func(string) string) []string {
	exts, explicit := pathExtensions(getenv)
	if !explicit {
		exts = nil
	}

	var names []string
	for _, dir := range filepath.SplitList(getenv("PATH")) {
		if dir == "" {
			continue
		}
		entries, err := osReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !hasPrefixFold(e.Name(), prefix) {
				continue
			}
			if isExecutable(e, exts) {
				names = append(names, e.Name())
			}
		}
	}

	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}

func isExecutable(e fs.DirEntry, exts []string) bool {
	if len(exts) > 0 {
		return slices.Contains(exts, strings.ToLower(filepath.Ext(e.Name())))
	}
	info, err := e.Info()
	if err != nil {
		return false
	}
	return info.Mode()&0111 != 0
}
