package atlas

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bzeller/atlaspack/internal/jobqueue"
)

// CompileOptions configures a single Compile call.
type CompileOptions struct {
	// Workers controls the blit job queue's pool size. Zero means "auto".
	Workers int

	// Logger receives diagnostic warnings (see Tree.Walk). Nil means
	// warnings are discarded.
	Logger Logger
}

// Compile walks tree in pre-order, writing the CSV index to
// "<basePath>.atlas" and dispatching one blit task per occupied leaf
// against backend, then asks backend to encode the composited canvas to
// "<basePath>.png". On success it returns the resulting CompiledAtlas; on
// any failure it returns the invalid sentinel and a non-nil error (one of
// the sentinels in errors.go, or a wrapped filesystem/backend error).
//
// Compile does not clean up partial output on failure; callers wanting
// atomicity should compile into a temporary location and rename into place
// on success.
func Compile(tree *Tree, basePath string, backend Backend, opts CompileOptions) (CompiledAtlas, error) {
	indexPath := basePath + ".atlas"
	imagePath := basePath + ".png"

	dir := filepath.Dir(basePath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return CompiledAtlas{}, ErrBadOutputLocation
	}

	indexFile, err := os.Create(indexPath)
	if err != nil {
		return CompiledAtlas{}, ErrCannotOpenIndex
	}
	closed := false
	defer func() {
		if !closed {
			indexFile.Close()
		}
	}()
	writer := bufio.NewWriter(indexFile)

	canvas := backend.CreateCanvas(tree.Size())

	workers := opts.Workers
	queue := jobqueue.New[bool](workers)
	defer queue.Shutdown()

	placements := make(map[string]Placement)
	var blits []*jobqueue.Future[bool]

	tree.Walk(opts.Logger, func(rect Rect, occupant Image) {
		placements[occupant.Path()] = Placement{Pos: rect.TopLeft, Image: occupant}

		fmt.Fprintf(writer, "%s,%d,%d,%d,%d\n",
			occupant.Path(), rect.TopLeft.X, rect.TopLeft.Y, occupant.Width(), occupant.Height())

		path := occupant.Path()
		pos := rect.TopLeft
		blits = append(blits, queue.Submit(func() bool {
			return backend.Paint(canvas, pos, path)
		}))
	})

	if err := writer.Flush(); err != nil {
		return CompiledAtlas{}, fmt.Errorf("atlas: writing index: %w", err)
	}

	queue.WaitIdle()

	for _, fut := range blits {
		ok, got := fut.Get()
		if !got || !ok {
			return CompiledAtlas{}, ErrPaintFailed
		}
	}

	if !backend.Export(canvas, imagePath) {
		return CompiledAtlas{}, ErrExportFailed
	}

	closed = true
	if err := indexFile.Close(); err != nil {
		return CompiledAtlas{}, fmt.Errorf("atlas: closing index: %w", err)
	}

	return CompiledAtlas{placements: placements, valid: true}, nil
}
