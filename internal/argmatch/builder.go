package argmatch

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeKey is returned when a node is used as the key of Label.
	ErrNodeKey = errors.New("argmatch: a node cannot be used as a key")
	// ErrNilValue is returned when Label is given no node to label.
	ErrNilValue = errors.New("argmatch: label value must be a node")
	// ErrNilSelector is returned when Condition is given no selector.
	ErrNilSelector = errors.New("argmatch: selector is not callable")
	// ErrUnsupportedValue is returned for children or keys of an unknown type.
	ErrUnsupportedValue = errors.New("argmatch: unsupported value")
)

// New creates an unkeyed node from children. Keyed nodes and nodes carrying
// flags are inserted as a single child. Unkeyed nodes without flags and slices
// are flattened into the new node. Anything else becomes a literal leaf:
// strings, numbers, booleans and generator functions.
func New(children ...any) (*Node, error) {
	n := &Node{}
	if err := n.flatten(children); err != nil {
		return nil, err
	}
	return n, nil
}

// Must returns n, or panics if err is non-nil. It is meant for trees declared
// in code, where a construction error is a programming mistake.
func Must(n *Node, err error) *Node {
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Node) flatten(items []any) error {
	for _, item := range items {
		switch v := item.(type) {
		case *Node:
			if v == nil {
				return fmt.Errorf("%w: nil node", ErrUnsupportedValue)
			}
			if v.key == nil && v.flags == 0 {
				n.children = append(n.children, v.children...)
				continue
			}
			n.add(v)
		case []any:
			if err := n.flatten(v); err != nil {
				return err
			}
		case []string:
			for _, s := range v {
				n.add(Word(s))
			}
		case []*Node:
			for _, c := range v {
				if err := n.flatten([]any{c}); err != nil {
					return err
				}
			}
		case []Value:
			for _, c := range v {
				if err := n.flatten([]any{c}); err != nil {
					return err
				}
			}
		default:
			lit, err := literal(item)
			if err != nil {
				return err
			}
			n.add(lit)
		}
	}
	return nil
}

// Label makes value the subtree reached by matching key at the parent's
// position. A slice of keys fans out into an unkeyed node holding one keyed
// node per key, all sharing the children of value. A value that already has
// a key is wrapped in a fresh node first so its key is kept.
func Label(key any, value *Node) (*Node, error) {
	if value == nil {
		return nil, ErrNilValue
	}
	if value.key != nil {
		value = &Node{children: []Value{value}}
	}

	var keys []any
	switch k := key.(type) {
	case *Node:
		return nil, ErrNodeKey
	case []string:
		for _, s := range k {
			keys = append(keys, s)
		}
	case []any:
		keys = k
	default:
		kv, err := keyValue(key)
		if err != nil {
			return nil, err
		}
		return &Node{key: kv, children: value.children, flags: value.flags}, nil
	}

	fan := &Node{}
	for _, k := range keys {
		kv, err := keyValue(k)
		if err != nil {
			return nil, err
		}
		fan.add(&Node{key: kv, children: value.children, flags: value.flags})
	}
	return fan, nil
}

// Condition creates a node whose branch is chosen at traversal time by
// calling selector with the current token. Each branch becomes exactly one
// child: unkeyed nodes are used as they are, everything else is wrapped with
// New so that every child of the conditional is a subtree.
func Condition(selector SelectorFunc, branches ...any) (*Node, error) {
	if selector == nil {
		return nil, ErrNilSelector
	}

	n := &Node{key: selector, flags: FlagConditional}
	for _, b := range branches {
		if v, ok := b.(*Node); ok && v != nil && v.key == nil {
			n.add(v)
			continue
		}
		child, err := New(b)
		if err != nil {
			return nil, fmt.Errorf("condition branch %d: %w", len(n.children)+1, err)
		}
		n.add(child)
	}
	return n, nil
}

func literal(v any) (Value, error) {
	switch x := v.(type) {
	case bool:
		return Sentinel(x), nil
	case Sentinel:
		return x, nil
	}
	return keyValue(v)
}

// keyValue converts the scalar forms a key may take.
func keyValue(v any) (Value, error) {
	switch x := v.(type) {
	case *Node:
		return nil, ErrNodeKey
	case string:
		return Word(x), nil
	case Word:
		return x, nil
	case Number:
		return x, nil
	case int:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint:
		return Number(x), nil
	case uint32:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case float64:
		return Number(x), nil
	case func(string, string, int, int) []string:
		if x != nil {
			return GeneratorFunc(x), nil
		}
	case GeneratorFunc:
		if x != nil {
			return x, nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}
