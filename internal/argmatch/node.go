// Package argmatch implements declarative argument trees for command-line
// completion. A tree describes the valid values at each argument position of a
// command; Registry.Run walks the tree against the tokens typed so far and
// emits the candidates for the token under the cursor to a Host.
package argmatch

import (
	"strconv"
)

// Flag is a property bit carried by a Node.
type Flag uint8

const (
	// FlagLoop re-enters the node for the next token after it fails to match,
	// which is how variadic trailing arguments are expressed.
	FlagLoop Flag = 1 << iota
	// FlagConditional marks a node whose key is a SelectorFunc. The selector
	// picks one child branch instead of the node being matched as text.
	FlagConditional
)

// Value is one entry in a node's children list, or a node's key.
// The set of implementations is closed: Word, Number, Sentinel,
// GeneratorFunc, SelectorFunc and *Node.
type Value interface {
	isValue()
}

// Word is a literal string candidate.
type Word string

// Number is a literal numeric candidate. It is matched and emitted in its
// shortest decimal form.
type Number float64

// Sentinel is a boolean literal. Reaching one ends evaluation of the current
// level and becomes the traversal result.
type Sentinel bool

// GeneratorFunc produces candidates for the current token. It receives the
// token being matched plus the text and byte offsets of the token under the
// cursor. A nil result means no candidates.
type GeneratorFunc func(token, text string, start, end int) []string

// SelectorFunc chooses a branch of a conditional node. The returned index is
// 1-based and clamped to the number of branches.
type SelectorFunc func(token string) int

func (Word) isValue()          {}
func (Number) isValue()        {}
func (Sentinel) isValue()      {}
func (GeneratorFunc) isValue() {}
func (SelectorFunc) isValue()  {}
func (*Node) isValue()         {}

// String returns the candidate text for the number.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Node is one point in an argument tree. A keyed node is a single candidate at
// its parent's position and its children describe the next position. A node
// without a key is a structural grouping that traversal passes through.
type Node struct {
	children []Value
	key      Value
	flags    Flag
}

// Children returns the node's children in priority order.
func (n *Node) Children() []Value {
	return n.children
}

// Key returns the node's key, or nil for an unkeyed node.
func (n *Node) Key() Value {
	return n.key
}

// Keyed reports whether the node carries a key.
func (n *Node) Keyed() bool {
	return n.key != nil
}

// Has reports whether the flag is set on the node.
func (n *Node) Has(f Flag) bool {
	return n.flags&f != 0
}

// SetFlag sets f on the node and returns it. FlagConditional can only be set
// by Condition.
func (n *Node) SetFlag(f Flag) *Node {
	n.flags |= f &^ FlagConditional
	return n
}

// Loop marks the node as repeatable across consecutive tokens.
func (n *Node) Loop() *Node {
	return n.SetFlag(FlagLoop)
}

// passThrough reports whether traversal descends into the node without
// matching it against the current token.
func (n *Node) passThrough() bool {
	return n.key == nil || n.Has(FlagConditional)
}

// add appends a child. Children only grow while a tree is being built or
// registered.
func (n *Node) add(v Value) {
	n.children = append(n.children, v)
}

// Stop returns the sentinel node telling the host not to offer filename
// completion at this position.
func Stop() *Node {
	return &Node{children: []Value{Sentinel(true)}}
}

// FileMatches returns the sentinel node telling the host to fall back to
// filesystem completion at this position.
func FileMatches() *Node {
	return &Node{children: []Value{Sentinel(false)}}
}
