// Package config loads atlaspack's optional TOML settings file, filling
// unset fields with the design defaults named in spec.md §4.2 before a file
// is even consulted.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
)

// Config holds every setting the CLI driver exposes, whether it came from a
// TOML file, a flag, or a built-in default. Flags (see cmd/atlaspack) are
// applied after Load and take precedence over whatever the file supplies.
type Config struct {
	// Workers is the sizing search and compiler's worker pool size. Zero
	// means "auto" (see internal/jobqueue.defaultWorkers).
	Workers int `toml:"workers" default:"0"`

	// StartSize is the first candidate square side length tried by the
	// sizing search's grow phase.
	StartSize uint32 `toml:"start_size" default:"1000"`

	// GrowStep is the pixel increment between grow-phase candidates.
	GrowStep uint32 `toml:"grow_step" default:"100"`

	// ShrinkStep is the pixel decrement between shrink-phase candidates.
	ShrinkStep uint32 `toml:"shrink_step" default:"1"`

	// Recursive controls whether "pack" descends into subdirectories of
	// its input directory.
	Recursive bool `toml:"recursive" default:"false"`

	// Verbose raises the CLI's log level from "info" to "debug".
	Verbose bool `toml:"verbose" default:"false"`

	// PadToPowerOfTwo rounds the exported atlas canvas up to power-of-two
	// dimensions. See imagebackend.Backend.PadToPowerOfTwo.
	PadToPowerOfTwo bool `toml:"pad_to_power_of_two" default:"false"`
}

// Default returns a Config populated with the built-in defaults, as if an
// empty or absent TOML file had been loaded.
func Default() Config {
	c := Config{}
	if err := defaults.Set(&c); err != nil {
		// defaults.Set only fails on struct tags that don't parse, which is
		// a programming error in the tags above, not a runtime condition.
		panic(fmt.Sprintf("config: invalid default tags: %v", err))
	}
	return c
}

// Load reads path as TOML into a Config seeded with the built-in defaults,
// so any field the file omits keeps its default rather than zeroing out. A
// missing path is not an error: Load returns the defaults unchanged.
func Load(path string) (Config, error) {
	c := Default()

	if path == "" {
		return c, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c, nil
	}

	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config: %s: unknown keys %v", path, undecoded)
	}

	return c, nil
}
