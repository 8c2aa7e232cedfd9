// Package colorutil provides shared color definitions for the annotator application.
package colorutil

import (
	"image/color"
)

// Common colors used throughout the application.
var (
	Black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Gray  = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

// Annotation palette. Outlines are red; marks made in the current session
// are drawn differently from marks that were already present in the CSV so
// a user can tell their own work apart from pre-existing data.
var (
	BoxOutline    = color.NRGBA{R: 220, G: 40, B: 40, A: 255}  // bounding box edges
	SessionNumber = color.NRGBA{R: 220, G: 40, B: 40, A: 255}  // numbers placed this session
	SessionX      = color.NRGBA{R: 40, G: 40, B: 220, A: 255}  // "x" marks placed this session
	ExistingX     = color.NRGBA{R: 30, G: 150, B: 30, A: 255}  // "yes" marks loaded from CSV
	ExistingTag   = color.NRGBA{R: 140, G: 40, B: 180, A: 255} // other marks loaded from CSV
)
