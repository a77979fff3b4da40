package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bzeller/atlaspack/atlas"
	"github.com/bzeller/atlaspack/imagebackend"
	"github.com/bzeller/atlaspack/internal/config"
)

// zerologAdapter satisfies atlas.Logger by forwarding to the CLI's own
// structured logger, so the core's single diagnostic call site (an occupied
// leaf that unexpectedly has children) ends up in the same log stream as
// everything else.
type zerologAdapter struct{}

func (zerologAdapter) Warn(msg string, args ...any) {
	ev := logger.Warn()
	for i := 0; i+1 < len(args); i += 2 {
		key, _ := args[i].(string)
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}

func newPackCommand() *cobra.Command {
	var (
		configPath string
		recursive  bool
		workers    int
		startSize  uint32
		growStep   uint32
		shrinkStep uint32
		pow2       bool
	)

	cmd := &cobra.Command{
		Use:   "pack <input-dir> <base-out>",
		Short: "Pack every supported image under input-dir into a texture atlas",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Verbose && !cmd.Flags().Changed("verbose") {
				logger = logger.Level(zerolog.DebugLevel)
			}
			if cmd.Flags().Changed("recursive") {
				cfg.Recursive = recursive
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("start-size") {
				cfg.StartSize = startSize
			}
			if cmd.Flags().Changed("grow-step") {
				cfg.GrowStep = growStep
			}
			if cmd.Flags().Changed("shrink-step") {
				cfg.ShrinkStep = shrinkStep
			}
			if cmd.Flags().Changed("pow2") {
				cfg.PadToPowerOfTwo = pow2
			}

			return runPack(cmd.Context(), args[0], args[1], cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "search subdirectories for images")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "worker pool size (0 = auto)")
	cmd.Flags().Uint32Var(&startSize, "start-size", 0, "first candidate atlas side length")
	cmd.Flags().Uint32Var(&growStep, "grow-step", 0, "pixel increment between grow candidates")
	cmd.Flags().Uint32Var(&shrinkStep, "shrink-step", 0, "pixel decrement between shrink candidates")
	cmd.Flags().BoolVar(&pow2, "pow2", false, "pad the exported atlas canvas to power-of-two dimensions")

	return cmd
}

func runPack(ctx context.Context, inputDir, baseOut string, cfg config.Config) error {
	backend := imagebackend.New()
	backend.PadToPowerOfTwo = cfg.PadToPowerOfTwo

	paths, err := discoverImages(inputDir, cfg.Recursive, backend)
	if err != nil {
		return fmt.Errorf("discovering images: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported images found under %s", inputDir)
	}

	images, err := readInfos(ctx, paths, backend)
	if err != nil {
		return fmt.Errorf("reading image headers: %w", err)
	}

	searchCfg := atlas.SearchConfig{
		Workers:    cfg.Workers,
		StartSize:  cfg.StartSize,
		GrowStep:   cfg.GrowStep,
		ShrinkStep: cfg.ShrinkStep,
	}
	logger.Info().Int("images", len(images)).Msg("searching for atlas size")
	tree := atlas.Search(images, searchCfg)
	logger.Info().Uint32("side", tree.Size().Width).Msg("chosen atlas size")

	return compileAtomically(tree, baseOut, backend, cfg)
}

// discoverImages walks inputDir (recursing only when recursive is set),
// keeping files whose extension the backend supports and skipping (with a
// logged warning, not an aborted run) any path containing a comma or a
// line-break character, since those would corrupt the CSV index.
func discoverImages(inputDir string, recursive bool, backend *imagebackend.Backend) ([]string, error) {
	var paths []string

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !backend.Supports(filepath.Ext(path)) {
			return nil
		}
		if strings.ContainsAny(path, ",\n\r") {
			logger.Warn().Str("path", path).Msg("skipping path containing a comma or line break")
			return nil
		}
		paths = append(paths, path)
		return nil
	}

	if err := filepath.WalkDir(inputDir, walkFn); err != nil {
		return nil, err
	}
	return paths, nil
}

// readInfos calls Backend.ReadInfo concurrently over paths, discarding (and
// logging) any file the backend fails to read rather than aborting the
// whole run.
func readInfos(ctx context.Context, paths []string, backend *imagebackend.Backend) ([]atlas.Image, error) {
	results := make([]atlas.Image, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(32)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			img, err := backend.ReadInfo(path)
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable image")
				return nil
			}
			results[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images := make([]atlas.Image, 0, len(results))
	for _, img := range results {
		if img.Valid() {
			images = append(images, img)
		}
	}
	return images, nil
}

// compileAtomically compiles into a scratch directory named with a random
// UUID and renames the two output files into place only once compilation
// has fully succeeded, limiting the window in which a half-written
// ".atlas"/".png" pair could be observed at baseOut.
func compileAtomically(tree *atlas.Tree, baseOut string, backend *imagebackend.Backend, cfg config.Config) error {
	outDir := filepath.Dir(baseOut)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("preparing output directory: %w", err)
	}

	scratchDir := filepath.Join(outDir, ".atlaspack-"+uuid.NewString())
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	scratchBase := filepath.Join(scratchDir, filepath.Base(baseOut))

	if _, err := atlas.Compile(tree, scratchBase, backend, atlas.CompileOptions{
		Workers: cfg.Workers,
		Logger:  zerologAdapter{},
	}); err != nil {
		return fmt.Errorf("compiling atlas: %w", err)
	}

	if err := os.Rename(scratchBase+".atlas", baseOut+".atlas"); err != nil {
		return fmt.Errorf("finalizing index file: %w", err)
	}
	if err := os.Rename(scratchBase+".png", baseOut+".png"); err != nil {
		return fmt.Errorf("finalizing atlas image: %w", err)
	}

	logger.Info().Str("base", baseOut).Msg("atlas compiled")
	return nil
}
