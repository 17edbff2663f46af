package report

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burace17/disk-analyzer/internal/config"
	"github.com/burace17/disk-analyzer/internal/scanner"
	"github.com/burace17/disk-analyzer/internal/tree"
)

func sample(lockedErr *tree.ReadError) *tree.Directory {
	sub := tree.NewBuilder("sub", "/root/sub")
	sub.AddFile(tree.NewFile("b.txt", 50, "text/plain"))

	deps := tree.NewBuilder("node_modules", "/root/node_modules")
	deps.AddFile(tree.NewFile("index.js", 25, "text/javascript"))

	root := tree.NewBuilder("root", "/root")
	root.AddFile(tree.NewFile("a.txt", 100, "text/plain"))
	root.AddDirectory(sub.Build())
	root.AddDirectory(deps.Build())
	if lockedErr != nil {
		locked := tree.NewBuilder("locked", "/root/locked")
		locked.SetError(lockedErr)
		root.AddDirectory(locked.Build())
	}
	return root.Build()
}

func TestRows_SortedBySizeWithIcons(t *testing.T) {
	root := sample(tree.NewIOError("/root/locked", fs.ErrPermission))

	rows := Rows(root)
	require.Len(t, rows, 4)

	assert.Equal(t, "a.txt", rows[0].Name)
	assert.Equal(t, "text/plain", rows[0].Icon)
	assert.False(t, rows[0].IsDir)
	assert.Equal(t, int64(175), rows[0].ParentSize)

	assert.Equal(t, "sub", rows[1].Name)
	assert.Equal(t, FolderIcon, rows[1].Icon)
	assert.NotNil(t, rows[1].Dir)

	assert.Equal(t, "node_modules", rows[2].Name)

	assert.Equal(t, "locked", rows[3].Name)
	assert.Equal(t, ErrorIcon, rows[3].Icon)
	assert.NotNil(t, rows[3].Err)
}

func TestRows_Percent(t *testing.T) {
	rows := Rows(sample(nil))
	assert.InDelta(t, 57.14, rows[0].Percent, 0.01)
	assert.Equal(t, "57%", FormatPercent(rows[0].Size, rows[0].ParentSize))
	assert.Equal(t, "0%", FormatPercent(10, 0))
	assert.Nil(t, Rows(nil))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.5 KiB", FormatSize(1536))
	assert.Equal(t, "1.0 MiB", FormatSize(1<<20))
	assert.Equal(t, "0 B", FormatSize(-3))
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, Complete, OutcomeOf(sample(nil)))
	assert.Equal(t, Partial, OutcomeOf(sample(tree.NewIOError("/root/locked", fs.ErrPermission))))
	assert.Equal(t, Failed, OutcomeOf(nil))

	failed := tree.NewBuilder("root", "/root")
	failed.SetError(tree.NewIOError("/root", fs.ErrNotExist))
	assert.Equal(t, Failed, OutcomeOf(failed.Build()))

	cancelled := tree.NewBuilder("root", "/root")
	cancelled.SetError(tree.NewCancelled("/root"))
	c := cancelled.Build()
	assert.Equal(t, Cancelled, OutcomeOf(c))
	assert.Contains(t, Summary(c), "cancelled")
}

func TestSummary_DistinguishesOutcomes(t *testing.T) {
	seen := map[string]bool{}
	for _, root := range []*tree.Directory{
		sample(nil),
		sample(tree.NewIOError("/root/locked", fs.ErrPermission)),
		func() *tree.Directory {
			b := tree.NewBuilder("root", "/root")
			b.SetError(tree.NewIOError("/root", fs.ErrPermission))
			return b.Build()
		}(),
	} {
		seen[Summary(root)] = true
	}
	assert.Len(t, seen, 3)
}

func TestWriteJSON(t *testing.T) {
	root := sample(tree.NewIOError("/root/locked", fs.ErrPermission))
	matcher := scanner.NewMatcher([]config.JunkPattern{
		{Name: "node_modules", Pattern: "**/node_modules", Safe: true},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, root, JSONOptions{MaxDepth: 1, Matcher: matcher}))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "/root", out.Path)
	assert.Equal(t, Partial, out.Outcome)
	assert.Equal(t, int64(175), out.TotalSize)
	assert.Equal(t, 3, out.TotalFiles)
	assert.Equal(t, 4, out.TotalDirs)
	assert.Equal(t, 1, out.ErroredDirs)
	require.Len(t, out.Children, 4)
	assert.Equal(t, "text/plain", out.Children[0].Mime)
	assert.Empty(t, out.Children[1].Children, "depth limit reached")
	assert.NotEmpty(t, out.Children[3].Error)
	require.Len(t, out.Junk, 1)
	assert.Equal(t, int64(25), out.Junk[0].Total)
}

func TestWriteJSON_JunkOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample(nil), JSONOptions{JunkOnly: true}))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Empty(t, out.Children)
	assert.Equal(t, Complete, out.Outcome)
}
