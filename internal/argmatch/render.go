package argmatch

import (
	"fmt"
	"strings"
)

// Render returns a human-readable dump of a tree for debugging. The layout is
// not stable and should not be parsed.
func Render(n *Node) string {
	var b strings.Builder
	if n == nil {
		b.WriteString("<nil>\n")
		return b.String()
	}
	renderNode(&b, n, 0)
	return b.String()
}

func renderNode(b *strings.Builder, n *Node, depth int) {
	indent(b, depth)
	switch {
	case n.Has(FlagConditional):
		b.WriteString("<condition>")
	case n.key != nil:
		b.WriteString(renderValue(n.key))
	default:
		b.WriteString("(node)")
	}
	if n.Has(FlagLoop) {
		b.WriteString(" [loop]")
	}
	b.WriteByte('\n')

	for i, child := range n.children {
		c, ok := child.(*Node)
		if !ok {
			indent(b, depth+1)
			b.WriteString(renderValue(child))
			b.WriteByte('\n')
			continue
		}
		if n.Has(FlagConditional) {
			indent(b, depth+1)
			fmt.Fprintf(b, "branch %d:\n", i+1)
			renderNode(b, c, depth+2)
			continue
		}
		renderNode(b, c, depth+1)
	}
}

func renderValue(v Value) string {
	switch x := v.(type) {
	case Word:
		return fmt.Sprintf("%q", string(x))
	case Number:
		return x.String()
	case Sentinel:
		if x {
			return "<stop>"
		}
		return "<file-matches>"
	case GeneratorFunc:
		return "<generator>"
	case SelectorFunc:
		return "<selector>"
	}
	return fmt.Sprintf("<%T>", v)
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}
