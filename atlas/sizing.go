package atlas

import (
	"runtime"

	"github.com/bzeller/atlaspack/internal/jobqueue"
)

// SearchConfig controls the atlas sizing search (§4.2). A zero-value
// SearchConfig is not usable directly; use DefaultSearchConfig to get the
// design defaults and override individual fields.
type SearchConfig struct {
	// Workers is the number of concurrent trial packings per batch. Zero
	// means "auto" (hardware concurrency, floored at 2).
	Workers int

	// StartSize is the first candidate square side length tried in the
	// grow phase.
	StartSize uint32

	// GrowStep is the pixel increment between candidates within a grow
	// batch.
	GrowStep uint32

	// ShrinkStep is the pixel decrement between candidates within a
	// shrink batch.
	ShrinkStep uint32
}

// DefaultSearchConfig returns the design defaults named in spec.md §4.2:
// StartSize=1000, GrowStep=100, ShrinkStep=1, Workers=0 (auto).
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{StartSize: 1000, GrowStep: 100, ShrinkStep: 1}
}

// Search finds the smallest square side length that can hold every image
// in images under greedy insertion in the given order, and returns the
// Tree that achieved it. The search is deterministic: for fixed images,
// Workers, StartSize, GrowStep and ShrinkStep, the chosen side length does
// not depend on goroutine scheduling (P7).
//
// Search never fails on a finite, non-empty input: the grow phase is
// guaranteed to converge once the candidate size exceeds the larger of the
// images' summed widths and summed heights.
func Search(images []Image, cfg SearchConfig) *Tree {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultSearchWorkers()
	}

	queue := jobqueue.New[*Tree](workers)
	defer queue.Shutdown()

	tree, side := growPhase(queue, images, cfg.StartSize, cfg.GrowStep, workers)
	tree = shrinkPhase(queue, images, tree, side, cfg.ShrinkStep, workers)
	return tree
}

func defaultSearchWorkers() int {
	// Mirrors jobqueue's own "auto" floor; kept local so callers that pass
	// Workers=0 get a value usable both for the Search loop bookkeeping
	// and for sizing the queue.
	if n := runtime.NumCPU(); n >= 2 {
		return n
	}
	return 2
}

// PackFixed inserts every image, in order, into a single fresh tree of the
// given size, bypassing the sizing search entirely. It exists for callers
// that already know the atlas dimensions they want; most callers should use
// Search instead. It returns ErrPackingInfeasible if any image fails to
// place.
func PackFixed(images []Image, size Size) (*Tree, error) {
	tree := NewTree(size)
	for _, img := range images {
		if _, ok := tree.Insert(img); !ok {
			return nil, ErrPackingInfeasible
		}
	}
	return tree, nil
}

// trial attempts to insert every image, in order, into a fresh square tree
// of the given side length. It returns nil on the first failure.
func trial(images []Image, side uint32) *Tree {
	tree := NewTree(Size{Width: side, Height: side})
	for _, img := range images {
		if _, ok := tree.Insert(img); !ok {
			return nil
		}
	}
	return tree
}

// growPhase dispatches batches of W increasing candidate sizes until one
// succeeds, scanning each completed batch in dispatched order so the
// result does not depend on which trial finishes first.
func growPhase(queue *jobqueue.Queue[*Tree], images []Image, start, step uint32, workers int) (*Tree, uint32) {
	size := start
	for {
		futures := make([]*jobqueue.Future[*Tree], workers)
		for i := 0; i < workers; i++ {
			candidate := size + uint32(i)*step
			futures[i] = queue.Submit(func() *Tree { return trial(images, candidate) })
		}

		for i, fut := range futures {
			tree, ok := fut.Get()
			if ok && tree != nil {
				return tree, size + uint32(i)*step
			}
		}

		size += uint32(workers) * step
	}
}

// shrinkPhase dispatches batches of decreasing candidate sizes below the
// grow phase's winner. Within a batch it walks results in dispatched
// (descending-size) order: every leading success replaces the best-known
// tree and lowers the target size; the first failure ends the search.
func shrinkPhase(queue *jobqueue.Queue[*Tree], images []Image, best *Tree, side, step uint32, workers int) *Tree {
	for {
		candidates := make([]uint32, 0, workers)
		for i := 1; i <= workers; i++ {
			delta := uint32(i) * step
			if delta >= side {
				break
			}
			candidates = append(candidates, side-delta)
		}
		if len(candidates) == 0 {
			return best
		}

		futures := make([]*jobqueue.Future[*Tree], len(candidates))
		for i, candidate := range candidates {
			c := candidate
			futures[i] = queue.Submit(func() *Tree { return trial(images, c) })
		}

		improved := false
		for i, fut := range futures {
			tree, ok := fut.Get()
			if !ok || tree == nil {
				break
			}
			best = tree
			side = candidates[i]
			improved = true
		}
		if !improved {
			return best
		}
	}
}
