package atlas

// Canvas is an opaque handle to an in-progress composite image, created by
// Backend.CreateCanvas and threaded through Backend.Paint and
// Backend.Export. The core never inspects it; concrete backends type-assert
// it back to their own canvas type.
type Canvas any

// Backend abstracts every pixel operation the core needs: reading an
// image's geometry without necessarily decoding its pixels, allocating a
// canvas, compositing a source image onto a canvas, and encoding a canvas
// to a file. Any concrete image library can implement it; the core
// statically depends on none.
//
// Paint must be safe to call concurrently on the same canvas as long as the
// target rectangles of concurrent calls are disjoint — the compiler relies
// on this to dispatch blits through the job queue. CreateCanvas, Paint and
// Export must all be safe to call concurrently on distinct canvases.
type Backend interface {
	// Supports reports whether the backend can decode files with the
	// given extension (including the leading dot), case-insensitively.
	Supports(ext string) bool

	// ReadInfo returns an image descriptor for path with its true pixel
	// dimensions. It should avoid decoding full pixel data when the
	// format permits header-only inspection.
	ReadInfo(path string) (Image, error)

	// CreateCanvas allocates a new canvas of the given size, initialized
	// to a backend-defined neutral fill.
	CreateCanvas(size Size) Canvas

	// Paint composites the image at path onto canvas with its top-left
	// corner at pos. It returns false (and should log a message) on
	// failure.
	Paint(canvas Canvas, pos Pos, path string) bool

	// Export encodes canvas to path. It returns false (and should log a
	// message) on failure.
	Export(canvas Canvas, path string) bool
}
