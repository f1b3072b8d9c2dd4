package partition

import (
	"image"
	"iter"
	"slices"

	"github.com/bft-labs/vpxview/internal/domain"
)

// NoIndex marks an absent child or leaf reference.
const NoIndex = -1

// Node is one block of a partition tree. Nodes live in the Model arena and
// refer to each other by index; the children of a node are contiguous.
type Node struct {
	// Rect is the nominal block rectangle in picture coordinates. Border
	// blocks may extend past the picture.
	Rect image.Rectangle

	// Clip is Rect intersected with the picture. It is empty for blocks
	// entirely outside the picture.
	Clip image.Rectangle

	Kind  domain.PartitionKind
	Depth uint8

	// Superblock is the raster index of the tree this node belongs to.
	Superblock int32

	// FirstChild and NumChildren locate the children in Model.Nodes.
	FirstChild  int32
	NumChildren uint8

	// Leaf indexes Model.Leaves for leaf nodes and is NoIndex otherwise.
	Leaf int32
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Kind == domain.PartitionNone
}

// Model is the partition forest of one frame: one root per superblock in
// raster order.
type Model struct {
	Width  int
	Height int

	// Cols and Rows give the superblock grid.
	Cols int
	Rows int

	Nodes  []Node
	Leaves []domain.LeafAttributes

	// Roots holds the arena index of each superblock root in raster order.
	Roots []int32
}

// Bounds returns the picture rectangle.
func (m *Model) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Root returns the root node of superblock i.
func (m *Model) Root(i int) *Node {
	return &m.Nodes[m.Roots[i]]
}

// Children returns the child nodes of n.
func (m *Model) Children(n *Node) []Node {
	if n.FirstChild == NoIndex {
		return nil
	}
	return m.Nodes[n.FirstChild : n.FirstChild+int32(n.NumChildren)]
}

// Attributes returns the attributes of a leaf node.
func (m *Model) Attributes(n *Node) (*domain.LeafAttributes, bool) {
	if n.Leaf == NoIndex {
		return nil, false
	}
	return &m.Leaves[n.Leaf], true
}

// LeafNodes yields every leaf in pre-order, superblock by superblock.
func (m *Model) LeafNodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, r := range m.Roots {
			if !m.walkLeaves(r, yield) {
				return
			}
		}
	}
}

func (m *Model) walkLeaves(i int32, yield func(*Node) bool) bool {
	n := &m.Nodes[i]
	if n.IsLeaf() {
		return yield(n)
	}
	for c := range int32(n.NumChildren) {
		if !m.walkLeaves(n.FirstChild+c, yield) {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share storage with the builder arena.
func (m *Model) Clone() *Model {
	c := *m
	c.Nodes = slices.Clone(m.Nodes)
	c.Leaves = slices.Clone(m.Leaves)
	c.Roots = slices.Clone(m.Roots)
	return &c
}
