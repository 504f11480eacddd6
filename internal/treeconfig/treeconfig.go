// Package treeconfig builds argument trees from YAML documents.
//
// A document has a top-level "commands" mapping from command name to tree.
// Inside a tree, scalars are literal candidates, sequences group values into
// one node, and mapping entries label the subtree on the right with the key
// on the left. Keys starting with "$" are directives:
//
//	$loop: true                  repeat the enclosing node for later tokens
//	$generator: name             candidates produced by a named callback
//	$condition:                  pick a branch with a selector
//	  selector: name | [regexp] | {expr: code}
//	  branches: [...]
//
// The scalars $stop and $files are the Stop and FileMatches sentinels.
package treeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/matthias-oe/clink/internal/argmatch"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	directiveLoop      = "$loop"
	directiveGenerator = "$generator"
	directiveCondition = "$condition"
	scalarStop         = "$stop"
	scalarFiles        = "$files"
)

// Tree is one command's tree from a document.
type Tree struct {
	Command string
	Root    *argmatch.Node
}

// Options supplies the named callbacks a document may refer to.
type Options struct {
	Generators map[string]argmatch.GeneratorFunc
	Selectors  map[string]argmatch.SelectorFunc
	Logger     *zap.Logger
}

// Loader parses tree documents.
type Loader struct {
	generators map[string]argmatch.GeneratorFunc
	selectors  map[string]argmatch.SelectorFunc
	logger     *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	l := &Loader{
		generators: opts.Generators,
		selectors:  opts.Selectors,
		logger:     opts.Logger,
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// LoadFile parses the document at path. A missing file yields no trees.
func (l *Loader) LoadFile(path string) ([]Tree, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	return l.Parse(content, path)
}

// Parse builds the trees of a document. name is used in error messages.
func (l *Loader) Parse(src []byte, name string) ([]Tree, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(src)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	root := resolve(&doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolve(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, l.errorf(name, root, "document must be a mapping with a commands key")
	}

	var commands *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if key.Value != "commands" {
			return nil, l.errorf(name, key, "unknown key %q", key.Value)
		}
		commands = resolve(root.Content[i+1])
	}
	if commands == nil || commands.Tag == "!!null" {
		return nil, nil
	}
	if commands.Kind != yaml.MappingNode {
		return nil, l.errorf(name, commands, "commands must be a mapping")
	}

	var trees []Tree
	for i := 0; i+1 < len(commands.Content); i += 2 {
		cmd := commands.Content[i]
		if cmd.Kind != yaml.ScalarNode || cmd.Value == "" {
			return nil, l.errorf(name, cmd, "command name must be a non-empty string")
		}
		v, err := l.build(name, commands.Content[i+1])
		if err != nil {
			return nil, err
		}
		root, err := argmatch.New(v)
		if err != nil {
			return nil, l.errorf(name, cmd, "command %s: %v", cmd.Value, err)
		}
		trees = append(trees, Tree{Command: cmd.Value, Root: root})
	}

	l.logger.Debug("parsed tree file",
		zap.String("file", name),
		zap.Strings("commands", lo.Map(trees, func(t Tree, _ int) string { return t.Command })),
	)
	return trees, nil
}

// Register adds trees to r in order.
func Register(r *argmatch.Registry, trees []Tree) error {
	for _, t := range trees {
		if err := r.Register(t.Command, t.Root); err != nil {
			return fmt.Errorf("register %s: %w", t.Command, err)
		}
	}
	return nil
}

// build returns the value a YAML node stands for: a literal or a node.
func (l *Loader) build(name string, n *yaml.Node) (any, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return l.scalar(name, n)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := l.build(name, c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return l.node(name, n, items...)
	case yaml.MappingNode:
		return l.mapping(name, n)
	}
	return nil, l.errorf(name, n, "unexpected YAML node")
}

func (l *Loader) scalar(name string, n *yaml.Node) (any, error) {
	switch n.Tag {
	case "!!null":
		return []any{}, nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, l.errorf(name, n, "invalid number %q", n.Value)
		}
		return argmatch.Number(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, l.errorf(name, n, "invalid number %q", n.Value)
		}
		return argmatch.Number(f), nil
	}

	switch n.Value {
	case scalarStop:
		return argmatch.Stop(), nil
	case scalarFiles:
		return argmatch.FileMatches(), nil
	}
	return argmatch.Word(n.Value), nil
}

func (l *Loader) mapping(name string, n *yaml.Node) (any, error) {
	var (
		items []any
		loop  bool
	)

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := resolve(n.Content[i]), resolve(n.Content[i+1])

		switch key.Value {
		case directiveLoop:
			if err := value.Decode(&loop); err != nil {
				return nil, l.errorf(name, value, "%s must be a boolean", directiveLoop)
			}
			continue
		case directiveGenerator:
			gen, ok := l.generators[value.Value]
			if value.Kind != yaml.ScalarNode || !ok {
				return nil, l.errorf(name, value, "unknown generator %q", value.Value)
			}
			items = append(items, gen)
			continue
		case directiveCondition:
			cond, err := l.condition(name, value)
			if err != nil {
				return nil, err
			}
			items = append(items, cond)
			continue
		}

		labelKey, err := l.labelKey(name, key)
		if err != nil {
			return nil, err
		}
		v, err := l.build(name, value)
		if err != nil {
			return nil, err
		}
		sub, err := argmatch.New(v)
		if err != nil {
			return nil, l.errorf(name, value, "%v", err)
		}
		labeled, err := argmatch.Label(labelKey, sub)
		if err != nil {
			return nil, l.errorf(name, key, "%v", err)
		}
		items = append(items, labeled)
	}

	node, err := l.node(name, n, items...)
	if err != nil {
		return nil, err
	}
	if loop {
		node.Loop()
	}
	return node, nil
}

// labelKey converts a mapping key. A sequence key labels the value once per
// element.
func (l *Loader) labelKey(name string, key *yaml.Node) (any, error) {
	switch key.Kind {
	case yaml.ScalarNode:
		v, err := l.scalar(name, key)
		if err != nil {
			return nil, err
		}
		switch v.(type) {
		case *argmatch.Node, []any:
			return nil, l.errorf(name, key, "%q cannot be used as a key", key.Value)
		}
		return v, nil
	case yaml.SequenceNode:
		keys := make([]any, 0, len(key.Content))
		for _, c := range key.Content {
			k, err := l.labelKey(name, resolve(c))
			if err != nil {
				return nil, err
			}
			if _, ok := k.([]any); ok {
				return nil, l.errorf(name, c, "nested key sequences are not supported")
			}
			keys = append(keys, k)
		}
		return keys, nil
	}
	return nil, l.errorf(name, key, "keys must be scalars or sequences")
}

func (l *Loader) condition(name string, n *yaml.Node) (*argmatch.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, l.errorf(name, n, "%s must be a mapping", directiveCondition)
	}

	var (
		selector argmatch.SelectorFunc
		branches []any
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := resolve(n.Content[i]), resolve(n.Content[i+1])
		switch key.Value {
		case "selector":
			sel, err := l.selector(name, value)
			if err != nil {
				return nil, err
			}
			selector = sel
		case "branches":
			if value.Kind != yaml.SequenceNode {
				return nil, l.errorf(name, value, "branches must be a sequence")
			}
			for _, b := range value.Content {
				v, err := l.build(name, b)
				if err != nil {
					return nil, err
				}
				branches = append(branches, v)
			}
		default:
			return nil, l.errorf(name, key, "unknown condition key %q", key.Value)
		}
	}

	cond, err := argmatch.Condition(selector, branches...)
	if err != nil {
		return nil, l.errorf(name, n, "%v", err)
	}
	return cond, nil
}

func (l *Loader) selector(name string, n *yaml.Node) (argmatch.SelectorFunc, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		sel, ok := l.selectors[n.Value]
		if !ok {
			return nil, l.errorf(name, n, "unknown selector %q", n.Value)
		}
		return sel, nil
	case yaml.SequenceNode:
		var patterns []string
		if err := n.Decode(&patterns); err != nil {
			return nil, l.errorf(name, n, "selector patterns must be strings")
		}
		sel, err := PatternSelector(patterns)
		if err != nil {
			return nil, l.errorf(name, n, "%v", err)
		}
		return sel, nil
	case yaml.MappingNode:
		var opts struct {
			Expr string `yaml:"expr"`
		}
		if err := n.Decode(&opts); err != nil || opts.Expr == "" {
			return nil, l.errorf(name, n, "selector mapping needs an expr key")
		}
		sel, err := ExprSelector(opts.Expr)
		if err != nil {
			return nil, l.errorf(name, n, "%v", err)
		}
		return sel, nil
	}
	return nil, l.errorf(name, n, "selector must be a name, a list of patterns or an expression")
}

// PatternSelector returns a selector choosing the branch of the first pattern
// matching the token. When none match it returns one past the last pattern,
// so a trailing branch without a pattern acts as the default.
func PatternSelector(patterns []string) (argmatch.SelectorFunc, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid selector pattern %q: %w", p, err)
		}
		res = append(res, re)
	}

	return func(token string) int {
		for i, re := range res {
			if re.MatchString(token) {
				return i + 1
			}
		}
		return len(res) + 1
	}, nil
}

func (l *Loader) node(name string, at *yaml.Node, items ...any) (*argmatch.Node, error) {
	n, err := argmatch.New(items...)
	if err != nil {
		return nil, l.errorf(name, at, "%v", err)
	}
	return n, nil
}

func (l *Loader) errorf(name string, n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s:%d: %s", name, n.Line, fmt.Sprintf(format, args...))
}

// resolve follows YAML aliases so anchored subtrees can be reused.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
