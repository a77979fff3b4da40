package atlas

// nodeIndex addresses a node in a Tree's arena. The zero value is never a
// valid index because the root always occupies index 0; absent children
// are represented by noChild.
type nodeIndex int32

const noChild nodeIndex = -1

// node is either a leaf (left == right == noChild) or an internal node
// (both children present). An internal node never has an occupant; a leaf
// may or may not.
type node struct {
	rect     Rect
	left     nodeIndex
	right    nodeIndex
	occupant Image
}

func (n *node) isLeaf() bool { return n.left == noChild && n.right == noChild }

// Tree is a lightmap/guillotine binary-space-partition tree: a single
// rectangular region that Insert recursively subdivides to place images
// without overlap. Nodes live in a flat arena addressed by index, rather
// than as a pointer tree, so a Tree can be built and discarded cheaply
// (the sizing search builds and discards one Tree per size candidate) and
// has no recursion-depth surprises for the arena itself.
//
// A Tree is not safe for concurrent use; each sizing-search trial and the
// final compile each own a private Tree.
type Tree struct {
	nodes []node
}

// NewTree creates a Tree with a single free leaf covering [0,0)-(size.Width,
// size.Height).
func NewTree(size Size) *Tree {
	return &Tree{nodes: []node{{
		rect:  Rect{TopLeft: Pos{0, 0}, Size: size},
		left:  noChild,
		right: noChild,
	}}}
}

// Size returns the size of the tree's root rectangle.
func (t *Tree) Size() Size { return t.nodes[0].rect.Size }

// Root returns the tree's root rectangle.
func (t *Tree) Root() Rect { return t.nodes[0].rect }

// Insert attempts to place img in the tree. On success it returns the
// top-left position img was placed at and true. On failure the tree is
// left unchanged and the second return is false. Insert never blocks and
// performs no I/O.
func (t *Tree) Insert(img Image) (Pos, bool) {
	return t.insertAt(0, img)
}

func (t *Tree) insertAt(idx nodeIndex, img Image) (Pos, bool) {
	n := &t.nodes[idx]

	if !n.isLeaf() {
		if pos, ok := t.insertAt(n.left, img); ok {
			return pos, true
		}
		return t.insertAt(n.right, img)
	}

	if n.occupant.Valid() {
		return Pos{}, false
	}

	rectSize := n.rect.Size
	if rectSize.Width < img.Width() || rectSize.Height < img.Height() {
		return Pos{}, false
	}

	if rectSize.Equal(img.Size()) {
		n.occupant = img
		return n.rect.TopLeft, true
	}

	remainWidth := rectSize.Width - img.Width()
	remainHeight := rectSize.Height - img.Height()
	topLeft := n.rect.TopLeft

	var leftRect, rightRect Rect
	if remainWidth > remainHeight {
		leftRect = Rect{TopLeft: topLeft, Size: Size{img.Width(), rectSize.Height}}
		rightRect = Rect{
			TopLeft: Pos{topLeft.X + img.Width(), topLeft.Y},
			Size:    Size{remainWidth, rectSize.Height},
		}
	} else {
		leftRect = Rect{TopLeft: topLeft, Size: Size{rectSize.Width, img.Height()}}
		rightRect = Rect{
			TopLeft: Pos{topLeft.X, topLeft.Y + img.Height()},
			Size:    Size{rectSize.Width, remainHeight},
		}
	}

	leftIdx := t.addNode(node{rect: leftRect, left: noChild, right: noChild})
	rightIdx := t.addNode(node{rect: rightRect, left: noChild, right: noChild})

	// Re-fetch n: addNode may have grown the slice and invalidated the
	// earlier pointer.
	n = &t.nodes[idx]
	n.left = leftIdx
	n.right = rightIdx

	return t.insertAt(leftIdx, img)
}

func (t *Tree) addNode(n node) nodeIndex {
	t.nodes = append(t.nodes, n)
	return nodeIndex(len(t.nodes) - 1)
}

// Leaf is a snapshot of one leaf node, used by Walk and by tests asserting
// the tree invariants (non-overlap, coverage, containment).
type Leaf struct {
	Rect     Rect
	Occupant Image // zero value (Valid() == false) if the leaf is free
}

// Leaves returns every leaf of the tree in pre-order.
func (t *Tree) Leaves() []Leaf {
	var out []Leaf
	t.walkLeaves(0, func(l Leaf) { out = append(out, l) })
	return out
}

func (t *Tree) walkLeaves(idx nodeIndex, visit func(Leaf)) {
	n := &t.nodes[idx]
	if n.isLeaf() {
		visit(Leaf{Rect: n.rect, Occupant: n.occupant})
		return
	}
	t.walkLeaves(n.left, visit)
	t.walkLeaves(n.right, visit)
}

// Logger receives diagnostic warnings from the core. It is intentionally
// minimal so the core stays free of any concrete logging dependency; hosts
// wire in whatever structured logger they use (see cmd/atlaspack).
type Logger interface {
	Warn(msg string, args ...any)
}

// NopLogger discards every message. It is the default Logger when none is
// supplied.
type NopLogger struct{}

// Warn implements Logger.
func (NopLogger) Warn(string, ...any) {}

// Walk performs a single pre-order traversal of the tree (left before
// right, parent implicit), invoking onOccupied for every occupied leaf it
// finds. An occupied leaf with children would violate the tree's
// invariants; Walk defends against it by logging through logger and
// skipping the occupant rather than visiting it twice.
func (t *Tree) Walk(logger Logger, onOccupied func(rect Rect, occupant Image)) {
	if logger == nil {
		logger = NopLogger{}
	}
	t.walk(0, logger, onOccupied)
}

func (t *Tree) walk(idx nodeIndex, logger Logger, onOccupied func(Rect, Image)) {
	n := &t.nodes[idx]

	hasChildren := !n.isLeaf()
	if n.occupant.Valid() {
		if hasChildren {
			logger.Warn("atlas: occupied node has children, skipping occupant", "path", n.occupant.Path())
		} else {
			onOccupied(n.rect, n.occupant)
		}
	}

	if hasChildren {
		t.walk(n.left, logger, onOccupied)
		t.walk(n.right, logger, onOccupied)
	}
}
