package completion

import (
	"os"
	"slices"
	"strings"

	"github.com/matthias-oe/clink/internal/argmatch"
	"github.com/samber/lo"
)

// environ can be overridden for testing.
var environ = os.Environ

// Generators returns the generator callbacks that tree files refer to by
// name. Generators filter their own results by the token being matched.
func (p *Provider) Generators() map[string]argmatch.GeneratorFunc {
	return map[string]argmatch.GeneratorFunc{
		"env": func(token, _ string, _, _ int) []string {
			names := lo.FilterMap(environ(), func(kv string, _ int) (string, bool) {
				name, _, ok := strings.Cut(kv, "=")
				return name, ok && name != "" && hasPrefixFold(name, token)
			})
			slices.Sort(names)
			return lo.Uniq(names)
		},
		"commands": func(token, _ string, _, _ int) []string {
			return lo.Filter(p.registry.Commands(), func(name string, _ int) bool {
				return hasPrefixFold(name, token)
			})
		},
		"files": func(token, _ string, _, _ int) []string {
			return fileCompletions(token, p.pwd(), p.getenv)
		},
		"dirs": func(token, _ string, _, _ int) []string {
			return lo.Filter(fileCompletions(token, p.pwd(), p.getenv), func(s string, _ int) bool {
				return strings.HasSuffix(s, "/")
			})
		},
	}
}

// Selectors returns the selector callbacks that tree files refer to by name.
func Selectors() map[string]argmatch.SelectorFunc {
	return map[string]argmatch.SelectorFunc{
		// flag picks the first branch for switches and the second otherwise.
		"flag": func(token string) int {
			if strings.HasPrefix(token, "-") || strings.HasPrefix(token, "/") {
				return 1
			}
			return 2
		},
	}
}
