package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burace17/disk-analyzer/internal/config"
	"github.com/burace17/disk-analyzer/internal/scanner"
	"github.com/burace17/disk-analyzer/internal/tree"
)

func newTestModel(t *testing.T, onScan func(*tree.Directory, time.Time, time.Duration)) Model {
	t.Helper()
	mem := memfs.New()
	require.NoError(t, util.WriteFile(mem, "/data/a.txt", make([]byte, 100), 0o644))
	require.NoError(t, util.WriteFile(mem, "/data/sub/b.txt", make([]byte, 50), 0o644))
	require.NoError(t, util.WriteFile(mem, "/data/sub/deep/c.txt", make([]byte, 10), 0o644))
	require.NoError(t, util.WriteFile(mem, "/data/node_modules/x.js", make([]byte, 5), 0o644))

	return NewModel(Options{
		Config: config.DefaultConfig(),
		FS:     scanner.NewBillyFS(mem),
		OnScan: onScan,
	}, "/data")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// finish runs the pending scan synchronously and feeds its result back.
func finish(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, m.scan()())
}

func TestModel_ScanCompletes(t *testing.T) {
	var recorded *tree.Directory
	m := newTestModel(t, func(root *tree.Directory, _ time.Time, _ time.Duration) {
		recorded = root
	})
	assert.True(t, m.scanning)
	assert.Contains(t, m.View(), "Scanning")

	m = finish(t, m)
	assert.False(t, m.scanning)
	require.NotNil(t, m.root)
	assert.Equal(t, int64(165), m.root.Size())
	assert.Same(t, m.root, recorded)
	assert.Contains(t, m.View(), "Scan complete")

	// Largest first: a.txt, sub, node_modules
	require.Len(t, m.rows, 3)
	assert.Equal(t, "a.txt", m.rows[0].Name)
	assert.Equal(t, "sub", m.rows[1].Name)
}

func TestModel_DrillDownAndUp(t *testing.T) {
	m := finish(t, newTestModel(t, nil))

	m = update(t, m, key("down"))
	m = update(t, m, key("enter"))
	require.Equal(t, "sub", m.current.Name())
	assert.Equal(t, 0, m.cursor)

	// b.txt sorts above deep and cannot be opened.
	m = update(t, m, key("enter"))
	assert.Equal(t, "sub", m.current.Name())

	m = update(t, m, key("backspace"))
	assert.Same(t, m.root, m.current)
	assert.Equal(t, 1, m.cursor, "cursor returns to the directory we left")

	m = update(t, m, key("h"))
	assert.Same(t, m.root, m.current, "never above the scan root")
}

func TestModel_CancelWhileScanning(t *testing.T) {
	m := newTestModel(t, nil)

	m = update(t, m, key("esc"))
	assert.True(t, m.sig.Cancelled())

	m = finish(t, m)
	require.NotNil(t, m.root)
	assert.True(t, m.root.Cancelled())
	assert.Contains(t, m.View(), "Scan cancelled")
}

func TestModel_RescanDiscardsStaleResults(t *testing.T) {
	calls := 0
	m := newTestModel(t, func(*tree.Directory, time.Time, time.Duration) { calls++ })
	stale := m.scan()
	oldSig := m.sig

	m = update(t, m, key("r"))
	assert.True(t, oldSig.Cancelled(), "rescan cancels the previous scan")
	assert.False(t, m.sig.Cancelled())
	assert.Equal(t, 2, m.gen)

	m = update(t, m, stale())
	assert.True(t, m.scanning)
	assert.Nil(t, m.root)
	assert.Zero(t, calls)

	m = finish(t, m)
	assert.False(t, m.scanning)
	assert.Equal(t, int64(165), m.root.Size())
	assert.Equal(t, 1, calls)
}

func TestModel_JunkView(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, key("tab"))
	assert.Equal(t, ViewJunk, m.view)
	assert.Contains(t, m.View(), "Waiting for scan")

	m = finish(t, m)
	assert.Contains(t, m.View(), "node_modules")

	m = update(t, m, key("tab"))
	assert.Equal(t, ViewScan, m.view)
}

func TestModel_QuitCancels(t *testing.T) {
	m := newTestModel(t, nil)
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).sig.Cancelled())
}

func TestModel_ProgressTick(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := m.Update(progressTickMsg{})
	assert.NotNil(t, cmd, "ticks continue while scanning")

	m = finish(t, m)
	assert.Equal(t, int64(4), m.snapshot.Files)
	_, cmd = m.Update(progressTickMsg{})
	assert.Nil(t, cmd)
}
