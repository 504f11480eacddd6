package treeconfig

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/matthias-oe/clink/internal/argmatch"
)

// exprEnv is the environment an expression selector is evaluated in.
type exprEnv struct {
	Token string `expr:"token"`
}

// ExprSelector compiles an expression over the variable token. An integer
// result is the branch index; true picks the first branch and false the
// second. Any other result, or an evaluation error, picks the first branch.
func ExprSelector(code string) (argmatch.SelectorFunc, error) {
	program, err := expr.Compile(code, expr.Env(exprEnv{}))
	if err != nil {
		return nil, fmt.Errorf("invalid selector expression %q: %w", code, err)
	}
	return func(token string) int {
		return branchIndex(program, token)
	}, nil
}

func branchIndex(program *vm.Program, token string) int {
	out, err := expr.Run(program, exprEnv{Token: token})
	if err != nil {
		return 0
	}
	switch v := out.(type) {
	case bool:
		if v {
			return 1
		}
		return 2
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	// clamped to the first branch by traversal
	return 0
}
