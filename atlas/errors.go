package atlas

import "errors"

// Sentinel errors surfaced by the core, per spec.md §7. Messages are the
// literal text the specification requires callers (and S6-style tests) be
// able to match against.
var (
	// ErrBadOutputLocation means the compiler's base path has a parent
	// directory that does not exist or is not a directory.
	ErrBadOutputLocation = errors.New("Basepath is not a directory or does not exist")

	// ErrCannotOpenIndex means the .atlas index file could not be opened
	// for writing.
	ErrCannotOpenIndex = errors.New("Could not create atlas index file")

	// ErrPaintFailed means one or more blit tasks reported failure during
	// compilation. Any blit failure invalidates the whole atlas; there is
	// no partial success.
	ErrPaintFailed = errors.New("Some images failed to paint")

	// ErrExportFailed means the backend could not encode the final canvas.
	ErrExportFailed = errors.New("Failed to export Texture to file")

	// ErrPackingInfeasible is returned only by PackFixed, when a caller
	// bypasses the sizing search and requests a specific atlas size that
	// cannot hold every image. The sizing search itself cannot fail on a
	// finite input set.
	ErrPackingInfeasible = errors.New("packing infeasible at requested size")
)
