package report

import (
	"encoding/json"
	"io"

	"github.com/burace17/disk-analyzer/internal/scanner"
	"github.com/burace17/disk-analyzer/internal/tree"
)

type JSONOutput struct {
	Path        string              `json:"path"`
	Outcome     Outcome             `json:"outcome"`
	Error       string              `json:"error,omitempty"`
	TotalSize   int64               `json:"total_size"`
	TotalFiles  int                 `json:"total_files"`
	TotalDirs   int                 `json:"total_directories"`
	ErroredDirs int                 `json:"errored_directories"`
	Children    []JSONEntry         `json:"children,omitempty"`
	Junk        []scanner.JunkGroup `json:"junk,omitempty"`
}

type JSONEntry struct {
	Path     string      `json:"path"`
	Name     string      `json:"name"`
	Size     int64       `json:"size"`
	IsDir    bool        `json:"is_dir"`
	Mime     string      `json:"mime,omitempty"`
	Error    string      `json:"error,omitempty"`
	Children []JSONEntry `json:"children,omitempty"`
}

type JSONOptions struct {
	// MaxDepth limits nesting of Children; 0 means unlimited.
	MaxDepth int
	// Matcher, when set, adds junk groups.
	Matcher *scanner.Matcher
	// JunkOnly omits the children listing.
	JunkOnly bool
}

func WriteJSON(w io.Writer, root *tree.Directory, opts JSONOptions) error {
	stats := tree.Collect(root)
	output := JSONOutput{
		Path:        root.Path(),
		Outcome:     OutcomeOf(root),
		TotalSize:   root.Size(),
		TotalFiles:  stats.Files,
		TotalDirs:   stats.Directories,
		ErroredDirs: stats.Errors,
	}
	if err := root.Err(); err != nil {
		output.Error = err.Error()
	}
	if !opts.JunkOnly {
		output.Children = childrenToJSON(root, 0, opts.MaxDepth)
	}
	if opts.Matcher != nil {
		output.Junk = opts.Matcher.GroupJunk(root)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func childrenToJSON(dir *tree.Directory, depth, maxDepth int) []JSONEntry {
	if maxDepth > 0 && depth >= maxDepth {
		return nil
	}

	rows := Rows(dir)
	entries := make([]JSONEntry, 0, len(rows))
	for _, row := range rows {
		entry := JSONEntry{
			Path:  row.Path,
			Name:  row.Name,
			Size:  row.Size,
			IsDir: row.IsDir,
		}
		if row.IsDir {
			if row.Err != nil {
				entry.Error = row.Err.Error()
			}
			entry.Children = childrenToJSON(row.Dir, depth+1, maxDepth)
		} else {
			entry.Mime = row.Icon
		}
		entries = append(entries, entry)
	}
	return entries
}
