package atlas

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Placement is where one source image ended up in a compiled atlas.
type Placement struct {
	Pos   Pos
	Image Image
}

// CompiledAtlas is the immutable result of a successful Compile or
// LoadIndex: a mapping from source path to placement, plus validity.
// Iteration order over its placements is not observable by design — callers
// needing a path's placement should use Lookup.
type CompiledAtlas struct {
	placements map[string]Placement
	valid      bool
}

// Valid reports whether this is a genuine compiled atlas, as opposed to the
// invalid sentinel returned by a failed Compile.
func (c CompiledAtlas) Valid() bool { return c.valid }

// Count returns the number of placements held.
func (c CompiledAtlas) Count() int { return len(c.placements) }

// Lookup returns the placement for path and whether it was found.
func (c CompiledAtlas) Lookup(path string) (Placement, bool) {
	p, ok := c.placements[path]
	return p, ok
}

// Placements returns a copy of every path/placement pair. Order is
// unspecified.
func (c CompiledAtlas) Placements() map[string]Placement {
	out := make(map[string]Placement, len(c.placements))
	for k, v := range c.placements {
		out[k] = v
	}
	return out
}

// LoadIndex parses a previously written .atlas CSV sidecar (see spec.md §6)
// back into a CompiledAtlas. This is what makes the index-file round-trip
// property (P6) testable, and backs the "lookup" driver command.
func LoadIndex(indexPath string) (CompiledAtlas, error) {
	f, err := os.Open(indexPath)
	if err != nil {
		return CompiledAtlas{}, err
	}
	defer f.Close()

	placements := make(map[string]Placement)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return CompiledAtlas{}, fmt.Errorf("atlas index %s:%d: expected 5 fields, got %d", indexPath, lineNo, len(fields))
		}

		x, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return CompiledAtlas{}, fmt.Errorf("atlas index %s:%d: bad x: %w", indexPath, lineNo, err)
		}
		y, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return CompiledAtlas{}, fmt.Errorf("atlas index %s:%d: bad y: %w", indexPath, lineNo, err)
		}
		w, err := strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			return CompiledAtlas{}, fmt.Errorf("atlas index %s:%d: bad width: %w", indexPath, lineNo, err)
		}
		h, err := strconv.ParseUint(fields[4], 10, 32)
		if err != nil {
			return CompiledAtlas{}, fmt.Errorf("atlas index %s:%d: bad height: %w", indexPath, lineNo, err)
		}

		path := fields[0]
		placements[path] = Placement{
			Pos:   Pos{X: uint32(x), Y: uint32(y)},
			Image: NewImage(path, uint32(w), uint32(h)),
		}
	}
	if err := scanner.Err(); err != nil {
		return CompiledAtlas{}, err
	}

	return CompiledAtlas{placements: placements, valid: true}, nil
}
