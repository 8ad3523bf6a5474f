package smarttable

// ColumnNode is one segment of the trie built from array column paths.
// Columns sharing a path prefix share nodes, so two columns expand through the
// same list exactly when they reach the same array node.
type ColumnNode struct {
	Name     string
	Array    bool
	Parent   *ColumnNode
	Children []*ColumnNode
}

func newColumnRoot() *ColumnNode { return &ColumnNode{} }

// insert walks (creating as needed) the nodes for segs and returns the last.
func (n *ColumnNode) insert(segs []pathSegment) *ColumnNode {
	cur := n
	for _, seg := range segs {
		var next *ColumnNode
		for _, child := range cur.Children {
			if child.Name == seg.name && child.Array == seg.list {
				next = child
				break
			}
		}
		if next == nil {
			next = &ColumnNode{Name: seg.name, Array: seg.list, Parent: cur}
			cur.Children = append(cur.Children, next)
		}
		cur = next
	}
	return cur
}

// ArrayChain returns the array nodes from the root down to n.
func (n *ColumnNode) ArrayChain() []*ColumnNode {
	var chain []*ColumnNode
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Array {
			chain = append(chain, cur)
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ArrayLevel is the number of lists between the root and n.
func (n *ColumnNode) ArrayLevel() int {
	level := 0
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Array {
			level++
		}
	}
	return level
}

// CommonArrayDepth counts the lists two nodes traverse together before their
// paths diverge.
func CommonArrayDepth(a, b *ColumnNode) int {
	if a == nil || b == nil {
		return 0
	}
	ca, cb := a.ArrayChain(), b.ArrayChain()
	depth := 0
	for depth < len(ca) && depth < len(cb) && ca[depth] == cb[depth] {
		depth++
	}
	return depth
}
