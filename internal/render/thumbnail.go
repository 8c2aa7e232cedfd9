package render

import (
	"image"

	"github.com/disintegration/imaging"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/dataset"
)

// Thumbnail renders a small preview of one image's boxes and marks for
// the thumbnail strip. High quality renders at double size and downsamples
// with Lanczos; low quality renders directly at target size.
func Thumbnail(ds *dataset.Dataset, st *annotate.State, imageID string, size int, flipY, highQuality bool) *image.NRGBA {
	if size <= 0 {
		size = 96
	}

	renderSize := size
	if highQuality {
		renderSize = size * 2
	}

	img, _ := Plot(ds, st, imageID, Options{
		Width:  renderSize,
		Height: renderSize,
		FlipY:  flipY,
	})
	if renderSize == size {
		return img
	}
	return imaging.Resize(img, size, size, imaging.Lanczos)
}
