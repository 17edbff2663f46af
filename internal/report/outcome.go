package report

import (
	"errors"
	"fmt"

	"github.com/burace17/disk-analyzer/internal/tree"
)

// Outcome tells a caller which of the distinguishable results a scan produced.
type Outcome string

const (
	Complete  Outcome = "complete"
	Partial   Outcome = "partial"
	Cancelled Outcome = "cancelled"
	Failed    Outcome = "failed"
)

func OutcomeOf(root *tree.Directory) Outcome {
	switch {
	case root == nil:
		return Failed
	case root.Cancelled():
		return Cancelled
	case root.HasError():
		return Failed
	}

	partial := false
	_ = tree.Walk(root, func(d *tree.Directory, _ int) error {
		if d.HasError() {
			partial = true
			return errStop
		}
		return nil
	})
	if partial {
		return Partial
	}
	return Complete
}

var errStop = errors.New("stop walking")

// Summary is a one-line status for the end of a scan.
func Summary(root *tree.Directory) string {
	stats := tree.Collect(root)
	switch OutcomeOf(root) {
	case Complete:
		return fmt.Sprintf("Scan complete: %s in %d files, %d directories",
			FormatSize(stats.Bytes), stats.Files, stats.Directories)
	case Partial:
		return fmt.Sprintf("Scan complete with %d unreadable directories: %s measured",
			stats.Errors, FormatSize(stats.Bytes))
	case Cancelled:
		return fmt.Sprintf("Scan cancelled: %s measured before stopping", FormatSize(stats.Bytes))
	default:
		if root == nil {
			return "Scan failed"
		}
		return fmt.Sprintf("Scan failed: %v (%s)", root.Err(), tree.Describe(root.Err()))
	}
}
