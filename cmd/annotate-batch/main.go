// Command annotate-batch renders annotated plots for a whole dataset without
// opening the UI. It writes the same outputs the interactive Export All
// produces: marked_skus.csv, the annotation log, and one PNG per image.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/dataset"
	"bbox-annotator/internal/export"
)

func main() {
	input := flag.String("i", "", "Path to input CSV/XLSX dataset")
	flipY := flag.Bool("flip", true, "Flip the Y axis (image-style coordinates)")
	quiet := flag.Bool("q", false, "Suppress per-image progress output")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: annotate-batch -i <dataset.csv> [-flip=false] [-q]")
		os.Exit(1)
	}

	ds, err := dataset.Load(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d rows, %d images from %s\n", ds.Len(), len(ds.ImageIDs()), *input)

	ctrl := annotate.NewController(ds)

	dir, err := export.NewOutputDir(ds.SourcePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	if err := export.SaveAnnotations(dir, ds, ctrl); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write annotation CSVs: %v\n", err)
		os.Exit(1)
	}

	// Ctrl-C stops between images, leaving the finished plots in place.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progress := func(current, total int, message string) {
		if !*quiet {
			fmt.Printf("[%d/%d] %s\n", current, total, message)
		}
	}
	if err := export.SaveAllPlots(ctx, dir, ds, ctrl, *flipY, progress); err != nil {
		fmt.Fprintf(os.Stderr, "Plot export failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. Outputs in %s\n", dir)
}
