package report

import (
	"path/filepath"
	"sort"

	"github.com/burace17/disk-analyzer/internal/tree"
)

const (
	FolderIcon = "folder"
	ErrorIcon  = "dialog-error"
)

// Row is one line of a directory listing.
type Row struct {
	Icon       string
	Name       string
	Path       string
	IsDir      bool
	Size       int64
	ParentSize int64
	Percent    float64
	Err        *tree.ReadError
	Dir        *tree.Directory // nil for files
}

// Rows lists dir's subdirectories and files, largest first then by name.
// Errored subdirectories carry ErrorIcon; files carry their MIME type.
func Rows(dir *tree.Directory) []Row {
	if dir == nil {
		return nil
	}

	total := dir.Size()
	subdirs := dir.Directories()
	files := dir.Files()
	rows := make([]Row, 0, len(subdirs)+len(files))

	for _, sub := range subdirs {
		icon := FolderIcon
		if sub.HasError() {
			icon = ErrorIcon
		}
		rows = append(rows, Row{
			Icon:       icon,
			Name:       sub.Name(),
			Path:       sub.Path(),
			IsDir:      true,
			Size:       sub.Size(),
			ParentSize: total,
			Percent:    Percent(sub.Size(), total),
			Err:        sub.Err(),
			Dir:        sub,
		})
	}
	for _, f := range files {
		rows = append(rows, Row{
			Icon:       f.Mime(),
			Name:       f.Name(),
			Path:       joinPath(dir.Path(), f.Name()),
			Size:       f.Size(),
			ParentSize: total,
			Percent:    Percent(f.Size(), total),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Size != rows[j].Size {
			return rows[i].Size > rows[j].Size
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
