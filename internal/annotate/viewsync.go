package annotate

// MaxVisibleThumbnails caps the thumbnail strip at a fixed width so the
// layout stays consistent no matter how many images the dataset holds.
const MaxVisibleThumbnails = 15

// VisibleRange computes the half-open [start, end) window of thumbnail
// indices to show, centered on the current image and clamped at both
// dataset boundaries.
func VisibleRange(total, current int) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	if current < 0 {
		current = 0
	}
	if current >= total {
		current = total - 1
	}

	half := MaxVisibleThumbnails / 2
	start = current - half
	if start < 0 {
		start = 0
	}
	end = start + MaxVisibleThumbnails
	if end > total {
		end = total
	}
	// Near the tail the window would shrink; slide it back so a full
	// strip stays visible whenever enough images exist.
	if end-start < MaxVisibleThumbnails && start > 0 {
		start = end - MaxVisibleThumbnails
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// ClampIndex clamps an image index into the valid range for a dataset of
// the given size. Navigation helpers below all funnel through it.
func ClampIndex(total, idx int) int {
	if idx < 0 {
		return 0
	}
	if idx >= total {
		if total == 0 {
			return 0
		}
		return total - 1
	}
	return idx
}

// Navigation step sizes for the keyboard surface.
const PageJump = 10
