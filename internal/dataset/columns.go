package dataset

import (
	"strings"
)

// urlNameHints are the column-name substrings that suggest an image URL
// column. Name alone is not enough; the column's values must also look
// like URLs.
var urlNameHints = []string{"url", "link", "image", "img", "src"}

const urlSampleSize = 10

// detectLabelColumns returns the indices of columns whose names carry the
// label_ prefix.
func detectLabelColumns(header []string) []int {
	var cols []int
	for i, name := range header {
		if strings.HasPrefix(strings.TrimSpace(name), "label_") {
			cols = append(cols, i)
		}
	}
	return cols
}

// detectURLColumns returns the indices of columns heuristically recognized
// as image URLs: the name contains a URL-ish keyword and at least one of
// the first few non-empty values has a URL shape.
func detectURLColumns(header []string, records [][]string) []int {
	var cols []int
	for i, name := range header {
		if !nameSuggestsURL(name) {
			continue
		}
		sampled, matched := 0, 0
		for _, rec := range records {
			if sampled >= urlSampleSize {
				break
			}
			if i >= len(rec) {
				continue
			}
			val := strings.TrimSpace(rec[i])
			if val == "" || strings.EqualFold(val, "nan") {
				continue
			}
			sampled++
			if looksLikeURL(val) {
				matched++
			}
		}
		if matched > 0 {
			cols = append(cols, i)
		}
	}
	return cols
}

func nameSuggestsURL(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range urlNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func looksLikeURL(val string) bool {
	return strings.HasPrefix(val, "http://") ||
		strings.HasPrefix(val, "https://") ||
		strings.HasPrefix(val, "www.")
}

// firstURL returns the first URL-shaped value among the given columns of a
// record, or "".
func firstURL(rec []string, urlCols []int) string {
	for _, c := range urlCols {
		if c >= len(rec) {
			continue
		}
		val := strings.TrimSpace(rec[c])
		if val != "" && !strings.EqualFold(val, "nan") && looksLikeURL(val) {
			return val
		}
	}
	return ""
}
