package argmatch

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Registry maps lower-cased command names to the root of their argument tree.
// Trees are registered once at startup and only read while completing.
type Registry struct {
	trees  map[string]*Node
	logger *zap.Logger
}

// NewRegistry creates an empty Registry. A nil logger disables logging.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		trees:  make(map[string]*Node),
		logger: logger,
	}
}

// Register adds tree for command. A tree that is not a node is built with
// New, and a keyed root is wrapped so that its key is matched against the
// first argument. When the command already has a tree, the new one is
// appended to the existing root and both are offered.
func (r *Registry) Register(command string, tree any) error {
	root, ok := tree.(*Node)
	if !ok || root == nil || root.Keyed() {
		n, err := New(tree)
		if err != nil {
			return err
		}
		root = n
	}

	name := strings.ToLower(command)
	existing, merged := r.trees[name]
	if merged {
		existing.children = append(slices.Clip(existing.children), root)
	} else {
		r.trees[name] = root
	}

	r.logger.Debug("registered argument tree",
		zap.String("command", name),
		zap.Bool("merged", merged),
		zap.Int("children", len(root.children)),
	)
	return nil
}

// Remove drops the tree registered for command.
func (r *Registry) Remove(command string) {
	delete(r.trees, strings.ToLower(command))
}

// Lookup returns the root registered for command.
func (r *Registry) Lookup(command string) (*Node, bool) {
	n, ok := r.trees[strings.ToLower(command)]
	return n, ok
}

// Commands returns the registered command names in sorted order.
func (r *Registry) Commands() []string {
	names := lo.Keys(r.trees)
	slices.Sort(names)
	return names
}

// Run completes req against the tree registered for command, emitting
// candidates to host. It returns true when the request was handled: a
// candidate was emitted or a Stop sentinel was reached. False means the host
// should fall back to filename completion.
func (r *Registry) Run(command string, req Request, host Host) bool {
	root, ok := r.Lookup(command)
	if !ok {
		r.logger.Debug("no argument tree for command", zap.String("command", command))
		return false
	}

	handled := newTraversal(req, host).descend(root)

	r.logger.Debug("completed arguments",
		zap.String("command", command),
		zap.Strings("tokens", req.Tokens),
		zap.Int("candidates", host.Count()),
		zap.Bool("handled", handled),
	)
	return handled
}
