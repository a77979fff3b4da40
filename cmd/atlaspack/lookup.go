package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/bzeller/atlaspack/atlas"
)

func newLookupCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "lookup <base> <path>",
		Short: "Print (or extract) one source image's placement in a compiled atlas",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(args[0], args[1], outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "crop the placement out of the atlas image into this file")
	return cmd
}

func runLookup(base, path, outPath string) error {
	compiled, err := atlas.LoadIndex(base + ".atlas")
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	placement, ok := compiled.Lookup(path)
	if !ok {
		return fmt.Errorf("%s is not present in %s.atlas", path, base)
	}

	fmt.Printf("%s: %d,%d %dx%d\n", path,
		placement.Pos.X, placement.Pos.Y, placement.Image.Width(), placement.Image.Height())

	if outPath == "" {
		return nil
	}
	return extractCrop(base+".png", placement, outPath)
}

func extractCrop(atlasImagePath string, placement atlas.Placement, outPath string) error {
	f, err := os.Open(atlasImagePath)
	if err != nil {
		return fmt.Errorf("opening atlas image: %w", err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding atlas image: %w", err)
	}

	rect := image.Rect(
		int(placement.Pos.X), int(placement.Pos.Y),
		int(placement.Pos.X)+int(placement.Image.Width()), int(placement.Pos.Y)+int(placement.Image.Height()),
	)
	crop := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(crop, crop.Bounds(), src, rect.Min, draw.Src)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, crop); err != nil {
		return fmt.Errorf("encoding cropped image: %w", err)
	}
	return nil
}
