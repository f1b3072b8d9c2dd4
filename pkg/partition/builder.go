package partition

import (
	"errors"
	"fmt"
	"image"

	"github.com/bft-labs/vpxview/internal/domain"
)

var (
	errMissingPartition = errors.New("partition codes end before the tree is complete")
	errMissingLeaf      = errors.New("leaf attributes end before the tree is complete")
)

// Builder turns flattened superblock records into a Model. Its arena is
// reset and reused on every Build, so a returned Model is valid only until
// the next Build; use Model.Clone to keep one.
// A Builder is not safe for concurrent use.
type Builder struct {
	model Model
}

// NewBuilder returns a Builder with an empty arena.
func NewBuilder() *Builder {
	return &Builder{}
}

// cursor tracks the read position inside one superblock record.
type cursor struct {
	sb   domain.SuperblockRecord
	part int
	leaf int
}

// Build creates one tree per superblock of a width x height picture. The
// records must be in raster order and cover the superblock grid exactly.
// Any grammar violation fails the whole frame with domain.ErrInternals.
func (b *Builder) Build(superblocks []domain.SuperblockRecord, width, height int) (*Model, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: picture size %dx%d", domain.ErrInternals, width, height)
	}
	cols, rows := domain.SuperblockGrid(width, height)
	if len(superblocks) != cols*rows {
		return nil, fmt.Errorf("%w: %d superblocks reported, %dx%d picture needs %d",
			domain.ErrInternals, len(superblocks), width, height, cols*rows)
	}

	m := &b.model
	m.Width, m.Height = width, height
	m.Cols, m.Rows = cols, rows
	m.Nodes = m.Nodes[:0]
	m.Leaves = m.Leaves[:0]
	m.Roots = m.Roots[:0]

	pic := image.Rect(0, 0, width, height)
	for i, sb := range superblocks {
		x := (i % cols) * domain.SuperblockSize
		y := (i / cols) * domain.SuperblockSize

		root := int32(len(m.Nodes))
		m.Nodes = append(m.Nodes, Node{
			Rect:       image.Rect(x, y, x+domain.SuperblockSize, y+domain.SuperblockSize),
			Superblock: int32(i),
			FirstChild: NoIndex,
			Leaf:       NoIndex,
		})

		c := cursor{sb: sb}
		if err := b.fill(root, &c, pic); err != nil {
			return nil, fmt.Errorf("%w: superblock %d: %v", domain.ErrInternals, i, err)
		}
		if c.part != len(sb.Partitions) {
			return nil, fmt.Errorf("%w: superblock %d: %d trailing partition codes",
				domain.ErrInternals, i, len(sb.Partitions)-c.part)
		}
		if c.leaf != len(sb.Leaves) {
			return nil, fmt.Errorf("%w: superblock %d: %d trailing leaves",
				domain.ErrInternals, i, len(sb.Leaves)-c.leaf)
		}
		m.Roots = append(m.Roots, root)
	}
	return m, nil
}

// fill consumes the codes of the subtree rooted at node idx. Children are
// appended as one contiguous run before any of them is expanded.
func (b *Builder) fill(idx int32, c *cursor, pic image.Rectangle) error {
	m := &b.model
	if c.part >= len(c.sb.Partitions) {
		return errMissingPartition
	}
	kind := c.sb.Partitions[c.part]
	c.part++

	node := &m.Nodes[idx]
	node.Kind = kind
	node.Clip = node.Rect.Intersect(pic)
	rect, depth, sb := node.Rect, node.Depth, node.Superblock

	if kind == domain.PartitionNone {
		if c.leaf >= len(c.sb.Leaves) {
			return errMissingLeaf
		}
		attrs := c.sb.Leaves[c.leaf]
		c.leaf++
		if err := normalizeLeaf(&attrs); err != nil {
			return fmt.Errorf("leaf at %v: %w", rect.Min, err)
		}
		node.Leaf = int32(len(m.Leaves))
		m.Leaves = append(m.Leaves, attrs)
		return nil
	}

	rects, err := childRects(kind, rect)
	if err != nil {
		return err
	}

	first := int32(len(m.Nodes))
	for _, r := range rects {
		m.Nodes = append(m.Nodes, Node{
			Rect:       r,
			Depth:      depth + 1,
			Superblock: sb,
			FirstChild: NoIndex,
			Leaf:       NoIndex,
		})
	}
	// node may have moved with the append above.
	m.Nodes[idx].FirstChild = first
	m.Nodes[idx].NumChildren = uint8(len(rects))

	for k := range int32(len(rects)) {
		if err := b.fill(first+k, c, pic); err != nil {
			return err
		}
	}
	return nil
}

// childRects splits r according to kind. Quadrants are in raster order.
func childRects(kind domain.PartitionKind, r image.Rectangle) ([]image.Rectangle, error) {
	w, h := r.Dx(), r.Dy()
	halfW, halfH := w/2, h/2
	switch kind {
	case domain.PartitionHorz:
		if halfH < domain.MinBlockSize {
			return nil, fmt.Errorf("HORZ split of %dx%d block at %v below %d pixels", w, h, r.Min, domain.MinBlockSize)
		}
		return []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+halfH),
			image.Rect(r.Min.X, r.Min.Y+halfH, r.Max.X, r.Max.Y),
		}, nil
	case domain.PartitionVert:
		if halfW < domain.MinBlockSize {
			return nil, fmt.Errorf("VERT split of %dx%d block at %v below %d pixels", w, h, r.Min, domain.MinBlockSize)
		}
		return []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+halfW, r.Max.Y),
			image.Rect(r.Min.X+halfW, r.Min.Y, r.Max.X, r.Max.Y),
		}, nil
	case domain.PartitionSplit:
		if halfW < domain.MinBlockSize || halfH < domain.MinBlockSize {
			return nil, fmt.Errorf("SPLIT of %dx%d block at %v below %d pixels", w, h, r.Min, domain.MinBlockSize)
		}
		mx, my := r.Min.X+halfW, r.Min.Y+halfH
		return []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, mx, my),
			image.Rect(mx, r.Min.Y, r.Max.X, my),
			image.Rect(r.Min.X, my, mx, r.Max.Y),
			image.Rect(mx, my, r.Max.X, r.Max.Y),
		}, nil
	default:
		return nil, fmt.Errorf("unknown partition kind %v", kind)
	}
}

// normalizeLeaf validates leaf attributes and drops motion vectors from
// intra leaves.
func normalizeLeaf(a *domain.LeafAttributes) error {
	if !a.Mode.Valid() {
		return fmt.Errorf("unknown prediction mode %v", a.Mode)
	}
	if !a.TxSize.Valid() {
		return fmt.Errorf("unknown transform size %v", a.TxSize)
	}
	if a.Segment >= domain.MaxSegments {
		return fmt.Errorf("segment id %d out of range", a.Segment)
	}
	if int(a.NumMVs) > len(a.MVs) {
		return fmt.Errorf("%d motion vectors, at most %d allowed", a.NumMVs, len(a.MVs))
	}
	if !a.Mode.IsInter() {
		a.NumMVs = 0
		a.MVs = [2]domain.MotionVector{}
	}
	return nil
}
