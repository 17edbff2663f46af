package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatSize renders bytes with binary units (1.5 KiB).
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatPercent renders part of whole as a whole-number percentage.
func FormatPercent(part, whole int64) string {
	return fmt.Sprintf("%.0f%%", Percent(part, whole))
}

func Percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
