package pipeline

import (
	"fmt"
	"strings"
)

// NodeKind identifies the shape of a Node.
type NodeKind int

const (
	// KindStep is a single named step.
	KindStep NodeKind = iota
	// KindSequence runs Children in order.
	KindSequence
	// KindBranch selects one of Children; Labels[i] names the route to Children[i].
	KindBranch
)

// Node is a static description of a runnable.
type Node struct {
	Kind     NodeKind
	Name     string
	Children []Node
	Labels   []string
}

// Describe renders the runnable's shape as indented ASCII, for example:
//
//	[input]
//	   |
//	[calc_discriminant]
//	   |
//	<branch>
//	   +-- D > 0 --> [calc_two_roots]
//	   +-- default --> [calc_complex_roots]
//	   |
//	[output]
func Describe[I, O any](r Runnable[I, O]) string {
	var b strings.Builder
	b.WriteString("[input]\n")
	writeNode(&b, r.Node(), "")
	b.WriteString("   |\n[output]\n")
	return b.String()
}

func writeNode(b *strings.Builder, n Node, indent string) {
	switch n.Kind {
	case KindSequence:
		for _, c := range n.Children {
			writeNode(b, c, indent)
		}
	case KindBranch:
		fmt.Fprintf(b, "%s   |\n%s<%s>\n", indent, indent, n.Name)
		for i, c := range n.Children {
			label := n.Labels[i]
			if c.Kind == KindStep {
				fmt.Fprintf(b, "%s   +-- %s --> [%s]\n", indent, label, c.Name)
				continue
			}
			fmt.Fprintf(b, "%s   +-- %s -->\n", indent, label)
			writeNode(b, c, indent+"       ")
		}
	default:
		fmt.Fprintf(b, "%s   |\n%s[%s]\n", indent, indent, n.Name)
	}
}
