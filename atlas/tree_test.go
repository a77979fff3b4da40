package atlas

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 Single fit.
func TestInsert_SingleFit(t *testing.T) {
	tree := NewTree(Size{100, 100})
	pos, ok := tree.Insert(NewImage("A", 100, 100))
	require.True(t, ok)
	assert.Equal(t, Pos{0, 0}, pos)

	leaves := tree.Leaves()
	require.Len(t, leaves, 1)
	assert.Equal(t, "A", leaves[0].Occupant.Path())
}

// S2 Perfect quad: four 50x50 images into a 100x100 atlas.
func TestInsert_PerfectQuad(t *testing.T) {
	tree := NewTree(Size{100, 100})

	want := map[string]Pos{
		"A": {0, 0},
		"B": {50, 0},
		"C": {0, 50},
		"D": {50, 50},
	}

	for _, name := range []string{"A", "B", "C", "D"} {
		pos, ok := tree.Insert(NewImage(name, 50, 50))
		require.True(t, ok, "insert %s", name)
		assert.Equal(t, want[name], pos, "position of %s", name)
	}
}

// S3 Mixed sizes: a 100x40 atlas fits A and B but not C; C needs a taller
// atlas.
func TestInsert_MixedSizes(t *testing.T) {
	tree := NewTree(Size{100, 40})

	posA, ok := tree.Insert(NewImage("A", 60, 40))
	require.True(t, ok)
	assert.Equal(t, Pos{0, 0}, posA)

	posB, ok := tree.Insert(NewImage("B", 40, 40))
	require.True(t, ok)
	assert.Equal(t, Pos{60, 0}, posB)

	_, ok = tree.Insert(NewImage("C", 40, 20))
	assert.False(t, ok, "C should not fit in the remaining 0-width space")

	tallTree := NewTree(Size{100, 60})
	require.True(t, mustInsert(t, tallTree, "A", 60, 40))
	require.True(t, mustInsert(t, tallTree, "B", 40, 40))
	posC, ok := tallTree.Insert(NewImage("C", 40, 20))
	require.True(t, ok)
	assert.Equal(t, Pos{60, 40}, posC)
}

func mustInsert(t *testing.T, tree *Tree, name string, w, h uint32) bool {
	t.Helper()
	_, ok := tree.Insert(NewImage(name, w, h))
	return ok
}

// S4 Overflow rejection: insert leaves the tree unchanged on failure.
func TestInsert_OverflowRejected(t *testing.T) {
	tree := NewTree(Size{5, 5})
	_, ok := tree.Insert(NewImage("A", 10, 10))
	assert.False(t, ok)

	leaves := tree.Leaves()
	require.Len(t, leaves, 1, "tree must still be a single empty leaf")
	assert.False(t, leaves[0].Occupant.Valid())
	assert.Equal(t, Size{5, 5}, leaves[0].Rect.Size)
}

func TestInsert_AcceptsZeroValueImage(t *testing.T) {
	tree := NewTree(Size{10, 10})
	_, ok := tree.Insert(Image{})
	assert.True(t, ok, "a zero-size descriptor still fits geometrically")
}

// P1/P2/P3: for randomly generated rectangle sets, every produced tree has
// non-overlapping leaves that exactly cover the root, and every occupant
// fits inside its leaf.
func TestInsert_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		const side = 512
		tree := NewTree(Size{side, side})

		n := 5 + rng.Intn(20)
		for i := 0; i < n; i++ {
			w := uint32(1 + rng.Intn(40))
			h := uint32(1 + rng.Intn(40))
			tree.Insert(NewImage("img", w, h))
		}

		leaves := tree.Leaves()

		// P1 non-overlap
		for i := range leaves {
			for j := i + 1; j < len(leaves); j++ {
				assert.False(t, leaves[i].Rect.Overlaps(leaves[j].Rect),
					"leaves %d (%v) and %d (%v) overlap", i, leaves[i].Rect, j, leaves[j].Rect)
			}
		}

		// P2 coverage: sum of leaf areas equals root area.
		var total uint64
		for _, l := range leaves {
			total += uint64(l.Rect.Size.Width) * uint64(l.Rect.Size.Height)
		}
		assert.Equal(t, uint64(side)*uint64(side), total)

		// P3 containment
		root := tree.Root()
		for _, l := range leaves {
			if l.Occupant.Valid() {
				occRect := Rect{TopLeft: l.Rect.TopLeft, Size: l.Occupant.Size()}
				assert.True(t, root.Contains(occRect))
				assert.True(t, l.Rect.Contains(occRect))
			}
		}
	}
}

// P4 placement stability: re-walking after a successful insert still finds
// the occupant at the position Insert returned.
func TestInsert_PlacementStability(t *testing.T) {
	tree := NewTree(Size{200, 200})

	type placed struct {
		name string
		pos  Pos
	}
	var placements []placed

	for i, dims := range [][2]uint32{{30, 30}, {50, 20}, {10, 90}, {64, 64}} {
		name := string(rune('A' + i))
		pos, ok := tree.Insert(NewImage(name, dims[0], dims[1]))
		require.True(t, ok)
		placements = append(placements, placed{name, pos})
	}

	found := map[string]Pos{}
	tree.Walk(nil, func(rect Rect, occupant Image) {
		found[occupant.Path()] = rect.TopLeft
	})

	for _, p := range placements {
		assert.Equal(t, p.pos, found[p.name])
	}
}

// P5 grow monotonicity: if a tree of side s packs every image, a tree of
// any larger side s' also packs them (with the same insertion order).
func TestInsert_GrowMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var images []Image
	for i := 0; i < 15; i++ {
		images = append(images, NewImage("img", uint32(1+rng.Intn(30)), uint32(1+rng.Intn(30))))
	}

	var baseSide uint32 = 200
	for !packsAll(images, baseSide) {
		baseSide += 50
	}

	for _, grown := range []uint32{baseSide, baseSide + 1, baseSide + 100, baseSide * 2} {
		assert.True(t, packsAll(images, grown), "side %d should still pack", grown)
	}
}

func packsAll(images []Image, side uint32) bool {
	tree := NewTree(Size{side, side})
	for _, img := range images {
		if _, ok := tree.Insert(img); !ok {
			return false
		}
	}
	return true
}
