// Package layout holds width tiers and text fitting helpers shared by the
// dashboard views.
package layout

// Width thresholds. Below SplitViewThreshold the list and detail panes stack
// vertically; at WideViewThreshold secondary metadata columns appear.
const (
	SplitViewThreshold = 100
	WideViewThreshold  = 160
)

// Tier is the current width bucket.
type Tier int

const (
	TierNarrow Tier = iota
	TierSplit
	TierWide
)

// TierForWidth maps a terminal width to a tier.
func TierForWidth(width int) Tier {
	switch {
	case width >= WideViewThreshold:
		return TierWide
	case width >= SplitViewThreshold:
		return TierSplit
	default:
		return TierNarrow
	}
}

// TruncateRunes trims a string to max runes and appends suffix if truncated.
// Rune-aware to avoid splitting wide glyphs.
func TruncateRunes(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < len([]rune(suffix)) {
		return string(runes[:max])
	}
	return string(runes[:max-len([]rune(suffix))]) + suffix
}

// Truncate trims with the standard single-character ellipsis.
func Truncate(s string, max int) string {
	return TruncateRunes(s, max, "…")
}

// SplitProportions returns list/detail widths for the split view: roughly a
// third for the list, the rest for detail, after a small border budget.
func SplitProportions(total int) (left, right int) {
	if total < SplitViewThreshold {
		return total, 0
	}
	avail := total - 6
	left = avail / 3
	if left > 60 {
		left = 60
	}
	right = avail - left
	return left, right
}
