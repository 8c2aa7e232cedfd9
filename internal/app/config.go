package app

import (
	"time"
)

// Config is the immutable per-session configuration. It is constructed
// once at startup (from preferences and defaults) and passed by reference;
// nothing mutates it mid-session. Toggles the user can flip while
// annotating (Y flip, background, hover labels) live on the Session, with
// their defaults seeded from here.
type Config struct {
	// ShowBackground enables compositing fetched background images.
	ShowBackground bool
	// ShowHoverLabels enables the transient label tooltip on hover.
	ShowHoverLabels bool
	// FlipY selects image-style orientation (y increases downward) as the
	// session default.
	FlipY bool
	// HighQualityThumbnails renders thumbnails at 2x and downsamples.
	HighQualityThumbnails bool
	// ThumbnailSize is the edge length of strip thumbnails, in pixels.
	ThumbnailSize int
	// FetchTimeout bounds each background image download.
	FetchTimeout time.Duration
}

// DefaultConfig mirrors the tool's historical defaults: image-style axes,
// hover labels on, background images off until asked for.
func DefaultConfig() Config {
	return Config{
		ShowBackground:        false,
		ShowHoverLabels:       true,
		FlipY:                 true,
		HighQualityThumbnails: true,
		ThumbnailSize:         96,
		FetchTimeout:          10 * time.Second,
	}
}
