package docgen

import (
	"github.com/matzehuels/nodedocs/pkg/catalog"
)

// MapToAssociatedClass returns the class a node is documented under, or nil.
//
// Function call nodes belong to the class declaring the called function.
// Anything else belongs to its source: the class itself, or the class a
// blueprint generates.
func MapToAssociatedClass(n *catalog.Node, source catalog.Object) *catalog.Class {
	if n == nil {
		return nil
	}
	return associatedClass(n.Kind, n.Function, source)
}

// spawnerClass predicts MapToAssociatedClass for the node s would spawn.
func spawnerClass(s *catalog.Spawner, source catalog.Object) *catalog.Class {
	return associatedClass(s.NodeKind, s.Function, source)
}

func associatedClass(kind catalog.NodeKind, fn *catalog.Function, source catalog.Object) *catalog.Class {
	if kind == catalog.NodeCallFunction && fn != nil && fn.Owner != nil {
		return fn.Owner
	}
	switch src := source.(type) {
	case *catalog.Class:
		return src
	case *catalog.Blueprint:
		return src.GeneratedClass
	default:
		return nil
	}
}

// ClassDocID returns the identifier used for a class's directory and
// document.
func ClassDocID(c *catalog.Class) string { return c.ObjectName() }
