package completion

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"mvdan.cc/sh/v3/shell"
)

// osReadDir and userHomeDir are variables that can be overridden for testing.
var (
	osReadDir   = os.ReadDir
	userHomeDir = os.UserHomeDir
)

// FileCompletions returns the entries matching a path prefix, relative to pwd
// unless the prefix is absolute or starts with ~/. Directories end with a
// slash. Hidden entries are only offered when the prefix names them.
func FileCompletions(prefix, pwd string) []string {
	return fileCompletions(prefix, pwd, nil)
}

func fileCompletions(prefix, pwd string, getenv func(string) string) []string {
	dirPart, filePart := "", prefix
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dirPart, filePart = prefix[:i+1], prefix[i+1:]
	}

	searchDir, ok := resolveDir(dirPart, pwd, getenv)
	if !ok {
		return []string{}
	}

	entries, err := osReadDir(searchDir)
	if err != nil {
		return []string{}
	}

	visible := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(filePart, ".") {
			return false
		}
		return strings.HasPrefix(name, filePart)
	})

	completions := lo.Map(visible, func(e fs.DirEntry, _ int) string {
		if isDir(e, searchDir) {
			return dirPart + e.Name() + "/"
		}
		return dirPart + e.Name()
	})
	slices.Sort(completions)
	return completions
}

// resolveDir turns the directory part of a prefix into the directory to list.
// Variable references such as $HOME are expanded when getenv is set.
func resolveDir(dirPart, pwd string, getenv func(string) string) (string, bool) {
	if dirPart == "" {
		return pwd, true
	}

	if getenv != nil && strings.Contains(dirPart, "$") {
		expanded, err := shell.Expand(dirPart, getenv)
		if err == nil {
			dirPart = expanded
		}
	}

	switch {
	case strings.HasPrefix(dirPart, "~/"):
		home, err := userHomeDir()
		if err != nil {
			return "", false
		}
		return filepath.Join(home, dirPart[2:]), true
	case filepath.IsAbs(dirPart):
		return dirPart, true
	default:
		return filepath.Join(pwd, dirPart), true
	}
}

// isDir follows symlinks so that links to directories complete like
// directories.
func isDir(e fs.DirEntry, dir string) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}
