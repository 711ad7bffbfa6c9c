package graph

import "fmt"

// CloneHelper clones nodes field by field. It keeps an identity table so
// that a target referenced from several places is cloned at most once and
// the clones share it the way the originals did.
type CloneHelper struct {
	graph *Graph
	table map[Node]Node
}

// NewCloneHelper creates a helper with an empty identity table. Use one
// helper per logical clone operation.
func NewCloneHelper(g *Graph) *CloneHelper {
	return &CloneHelper{graph: g, table: make(map[Node]Node)}
}

// CloneNode produces a new node of the same type. Reference fields follow
// their declared flags: NeverCloneTarget fields always share the original
// target; other fields clone the target (deep) or share it (shallow).
// The node's type must be registered with the graph.
func (ch *CloneHelper) CloneNode(n Node, deep bool) (Node, error) {
	if n == nil {
		return nil, nil
	}

	if c, ok := ch.table[n]; ok {
		return c, nil
	}

	clone, err := ch.graph.NewNode(n.TypeID())
	if err != nil {
		return nil, fmt.Errorf("cloning: %w", err)
	}

	ch.table[n] = clone

	src, dst := n.base(), clone.base()
	if len(src.fields) != len(dst.fields) {
		return nil, fmt.Errorf("cloning %q: field list mismatch (%d vs %d)",
			n.TypeID(), len(src.fields), len(dst.fields))
	}

	for i := range src.fields {
		if err := dst.fields[i].cloneFrom(ch, src.fields[i], deep); err != nil {
			return nil, err
		}
	}

	return clone, nil
}

// cloneTarget resolves what a cloned reference field should point at.
func (ch *CloneHelper) cloneTarget(target Node, flags FieldFlags, deep bool) (Node, error) {
	if target == nil {
		return nil, nil
	}

	if flags.Has(FlagNeverCloneTarget) || !deep {
		return target, nil
	}

	return ch.CloneNode(target, deep)
}
