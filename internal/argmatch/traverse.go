package argmatch

import (
	"strings"
)

// Host is the completion sink a tree is matched for. It decides what counts
// as a match and collects the emitted candidates.
type Host interface {
	// Match reports whether candidate is offered for the token being typed.
	Match(candidate, token string) bool
	// Emit appends one candidate to the result.
	Emit(value string)
	// Count returns how many candidates were emitted in the current request.
	Count() int
}

// Request is one completion request for a command's arguments.
type Request struct {
	// Tokens are the arguments after the command name. The last one is the
	// token under the cursor and may be empty.
	Tokens []string
	// Text is the raw text of the token under the cursor, quotes included.
	Text string
	// Start and End are the byte offsets of Text in the input line.
	Start int
	End   int
}

// traversal is the state of a single walk. The cursor is 1-based and shared by
// every level of the recursion.
type traversal struct {
	req    Request
	host   Host
	cursor int
}

func newTraversal(req Request, host Host) *traversal {
	return &traversal{req: req, host: host, cursor: 1}
}

// next returns the token at the cursor and advances past it.
func (t *traversal) next() (string, bool) {
	i := t.cursor
	t.cursor++
	if i < 1 || i > len(t.req.Tokens) {
		return "", false
	}
	return t.req.Tokens[i-1], true
}

func (t *traversal) exhausted() bool {
	return t.cursor > len(t.req.Tokens)
}

// descend walks into n, retrying a loop node against the following tokens
// for as long as it fails and tokens remain.
func (t *traversal) descend(n *Node) bool {
	for {
		ok := t.traverse(n)
		if ok || !n.Has(FlagLoop) || t.exhausted() {
			return ok
		}
	}
}

// traverse matches one tree level against the token at the cursor. Every call
// moves the cursor forward by at least one token.
func (t *traversal) traverse(n *Node) bool {
	last := t.cursor == len(t.req.Tokens)
	token, ok := t.next()
	if !ok {
		return false
	}

	if n.Has(FlagConditional) {
		return t.branch(n, token)
	}

	var partials []string
	flush := func() {
		if last {
			for _, p := range partials {
				t.host.Emit(p)
			}
		}
		partials = nil
	}

	for _, child := range n.children {
		switch v := child.(type) {
		case *Node:
			if v.passThrough() {
				flush()
				t.cursor--
				return t.descend(v)
			}
			for _, c := range t.matches(v.key, token) {
				if !last && strings.EqualFold(c, token) {
					return t.descend(v)
				}
				partials = append(partials, c)
			}
		case Sentinel:
			flush()
			return bool(v)
		default:
			partials = append(partials, t.matches(v, token)...)
		}
	}

	flush()
	return t.host.Count() > 0
}

// branch descends into the child picked by a conditional node's selector. The
// selector sees the token just read; the chosen branch reads it again.
func (t *traversal) branch(n *Node, token string) bool {
	if len(n.children) == 0 {
		return false
	}
	selector, _ := n.key.(SelectorFunc)
	i := 1
	if selector != nil {
		i = selector(token)
	}
	i = min(max(i, 1), len(n.children))

	child, ok := n.children[i-1].(*Node)
	if !ok {
		return false
	}
	t.cursor--
	return t.descend(child)
}

// matches returns the candidates v offers for token.
func (t *traversal) matches(v Value, token string) []string {
	switch x := v.(type) {
	case Word:
		if t.host.Match(string(x), token) {
			return []string{string(x)}
		}
	case Number:
		if s := x.String(); t.host.Match(s, token) {
			return []string{s}
		}
	case GeneratorFunc:
		return x(token, t.req.Text, t.req.Start, t.req.End)
	}
	return nil
}
