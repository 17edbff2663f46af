package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/burace17/disk-analyzer/internal/config"
	"github.com/burace17/disk-analyzer/internal/report"
	"github.com/burace17/disk-analyzer/internal/scanner"
	"github.com/burace17/disk-analyzer/internal/tree"
)

type View int

const (
	ViewScan View = iota
	ViewJunk
)

const progressInterval = 100 * time.Millisecond

// Options configure the scans the TUI starts.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	// FS overrides the host filesystem.
	FS scanner.FS
	// OnScan is called on the UI goroutine for every scan that was not
	// superseded by a rescan.
	OnScan func(root *tree.Directory, started time.Time, elapsed time.Duration)
}

type Model struct {
	opts     Options
	matcher  *scanner.Matcher
	scanPath string

	// Each scan gets its own generation, signal and progress. Results from an
	// older generation are dropped.
	gen      int
	sig      *scanner.Signal
	progress *scanner.Progress
	snapshot scanner.ProgressSnapshot
	scanning bool

	root    *tree.Directory
	current *tree.Directory // Currently viewed directory
	rows    []report.Row

	spinner   spinner.Model
	cursor    int
	offset    int // Viewport scroll offset
	view      View
	width     int
	height    int
	statusMsg string
}

type scanDoneMsg struct {
	gen     int
	root    *tree.Directory
	started time.Time
	elapsed time.Duration
}

type progressTickMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	junkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func NewModel(opts Options, scanPath string) Model {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		opts:     opts,
		matcher:  scanner.NewMatcher(opts.Config.JunkPatterns),
		scanPath: scanPath,
		spinner:  s,
		view:     ViewScan,
	}
	m.begin()
	return m
}

// begin cancels any running scan and prepares a new generation.
func (m *Model) begin() {
	if m.sig != nil {
		m.sig.Cancel()
	}
	m.gen++
	m.sig = scanner.NewSignal()
	m.progress = &scanner.Progress{}
	m.snapshot = scanner.ProgressSnapshot{}
	m.scanning = true
	m.root = nil
	m.current = nil
	m.rows = nil
	m.cursor = 0
	m.offset = 0
}

func (m Model) newScanner() *scanner.Scanner {
	opts := []scanner.Option{
		scanner.WithLogger(m.opts.Logger),
		scanner.WithMaxDepth(m.opts.Config.Scan.MaxDepth),
		scanner.WithExclude(m.opts.Config.Scan.Exclude),
		scanner.WithProgress(m.progress),
	}
	if m.opts.FS != nil {
		opts = append(opts, scanner.WithFS(m.opts.FS))
	}
	return scanner.New(opts...)
}

// scan runs the current generation's scan. Bubbletea executes it on its own
// goroutine.
func (m Model) scan() tea.Cmd {
	gen, sig, path := m.gen, m.sig, m.scanPath
	s := m.newScanner()
	return func() tea.Msg {
		started := time.Now()
		root := s.Scan(path, sig)
		return scanDoneMsg{gen: gen, root: root, started: started, elapsed: time.Since(started)}
	}
}

func tickProgress() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scan(), tickProgress())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		maxItems := m.visibleItems()
		m.statusMsg = "" // Clear status on any keypress

		switch msg.String() {
		case "q", "ctrl+c":
			m.sig.Cancel()
			return m, tea.Quit
		case "esc", "c":
			if m.scanning {
				m.sig.Cancel()
				m.statusMsg = "Cancelling..."
			}
		case "r":
			m.begin()
			return m, tea.Batch(m.scan(), tickProgress())
		case "j", "down":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				// Scroll down if cursor goes past visible area
				if m.cursor >= m.offset+maxItems {
					m.offset = m.cursor - maxItems + 1
				}
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				// Scroll up if cursor goes above visible area
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "enter", "l", "right":
			if m.cursor < len(m.rows) && m.rows[m.cursor].IsDir {
				m.open(m.rows[m.cursor].Dir)
			}
		case "h", "left", "backspace":
			// Never above the scan root
			if m.current != nil && m.current != m.root && m.current.Parent() != nil {
				from := m.current
				m.open(m.current.Parent())
				m.point(from)
			}
		case "tab":
			if m.view == ViewScan {
				m.view = ViewJunk
			} else {
				m.view = ViewScan
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressTickMsg:
		if !m.scanning {
			return m, nil
		}
		m.snapshot = m.progress.Snapshot()
		return m, tickProgress()

	case scanDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.scanning = false
		m.root = msg.root
		m.snapshot = m.progress.Snapshot()
		m.open(msg.root)
		if m.opts.OnScan != nil {
			m.opts.OnScan(msg.root, msg.started, msg.elapsed)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) open(dir *tree.Directory) {
	m.current = dir
	m.rows = report.Rows(dir)
	m.cursor = 0
	m.offset = 0
}

// point moves the cursor onto the row for dir, if it is listed.
func (m *Model) point(dir *tree.Directory) {
	for i, row := range m.rows {
		if row.Dir == dir {
			m.cursor = i
			if visible := m.visibleItems(); m.cursor >= visible {
				m.offset = m.cursor - visible + 1
			}
			return
		}
	}
}

// visibleItems returns how many items fit in the viewport
func (m Model) visibleItems() int {
	// Reserve lines for header (2-3), total line, and footer
	available := m.height - 6
	if m.scanning {
		available-- // Extra line for "scanning" path
	}
	if available < 5 {
		available = 5
	}
	return available
}

func (m Model) View() string {
	var s string

	// Header
	if m.scanning {
		s += fmt.Sprintf("%s Scanning... %d dirs | %d files | %s | %s\n",
			m.spinner.View(),
			m.snapshot.Directories,
			m.snapshot.Files,
			report.FormatSize(m.snapshot.Bytes),
			m.scanPath)
		if m.snapshot.Current != "" {
			s += helpStyle.Render(fmt.Sprintf("  → %s", m.shorten(m.snapshot.Current))) + "\n"
		}
	} else {
		s += m.outcomeStyle().Render(report.Summary(m.root)) + "\n"
	}

	if m.root != nil {
		s += titleStyle.Render(fmt.Sprintf("Total: %s", report.FormatSize(m.root.Size()))) + "\n\n"
	} else {
		s += "\n"
	}

	if m.view == ViewScan {
		s += m.renderTree()
	} else {
		s += m.renderJunk()
	}

	// Status message
	if m.statusMsg != "" {
		s += "\n" + junkStyle.Render(m.statusMsg)
	}

	// Footer
	if m.scanning {
		s += "\n" + helpStyle.Render("[Esc] Cancel  [q] Quit")
	} else {
		s += "\n" + helpStyle.Render("[↑↓] Navigate  [Enter] Open dir  [h] Back  [Tab] Junk  [r] Rescan  [q] Quit")
	}

	return s
}

func (m Model) outcomeStyle() lipgloss.Style {
	switch report.OutcomeOf(m.root) {
	case report.Complete:
		return titleStyle
	case report.Partial:
		return warnStyle
	default:
		return junkStyle
	}
}

// shorten returns path relative to the scan root, collapsing the middle of
// long paths.
func (m Model) shorten(path string) string {
	rel, err := filepath.Rel(m.scanPath, path)
	if err != nil {
		rel = path
	}
	if len(rel) > 60 {
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) > 3 {
			rel = filepath.Join(parts[0], "...", parts[len(parts)-1])
		}
	}
	return rel
}

func (m Model) renderTree() string {
	if m.current == nil {
		return ""
	}

	var s string

	// Show breadcrumb if not at root
	if m.current != m.root {
		s += helpStyle.Render(fmt.Sprintf("📂 %s", m.shorten(m.current.Path()))) + "\n\n"
	}
	if err := m.current.Err(); err != nil {
		s += junkStyle.Render(fmt.Sprintf("⚠ %s", tree.Describe(err))) + "\n\n"
	}

	maxItems := m.visibleItems()
	endIdx := m.offset + maxItems
	if endIdx > len(m.rows) {
		endIdx = len(m.rows)
	}

	// Show scroll indicator at top if needed
	if m.offset > 0 {
		s += helpStyle.Render(fmt.Sprintf("  ↑ %d more above\n", m.offset))
	}

	for i := m.offset; i < endIdx; i++ {
		row := m.rows[i]

		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s %s %s %s",
			prefix,
			iconFor(row),
			row.Name,
			sizeStyle.Render(report.FormatSize(row.Size)),
			sizeStyle.Render(report.FormatPercent(row.Size, row.ParentSize)))
		if row.Err != nil {
			line += " " + junkStyle.Render(tree.Describe(row.Err))
		}

		if i == m.cursor {
			line = selectedStyle.Render(line)
		}

		s += line + "\n"
	}

	// Show scroll indicator at bottom if needed
	if endIdx < len(m.rows) {
		s += helpStyle.Render(fmt.Sprintf("  ↓ %d more below\n", len(m.rows)-endIdx))
	}

	return s
}

func iconFor(row report.Row) string {
	switch row.Icon {
	case report.FolderIcon:
		return "📁"
	case report.ErrorIcon:
		return "⚠️"
	}
	return "📄"
}

func (m Model) renderJunk() string {
	if m.root == nil {
		return "Waiting for scan...\n"
	}

	groups := m.matcher.GroupJunk(m.root)
	if len(groups) == 0 {
		return "No junk detected\n"
	}

	var s string
	s += junkStyle.Render(fmt.Sprintf("🗑️  Detected Junk (%d groups)\n\n", len(groups)))

	for _, g := range groups {
		safeIcon := "✓"
		if !g.Safe {
			safeIcon = "⚠"
		}
		s += fmt.Sprintf("[%s] %s (%d dirs) %s\n",
			safeIcon,
			g.Name,
			len(g.Paths),
			sizeStyle.Render(report.FormatSize(g.Total)))
	}

	return s
}

func Run(opts Options, path string) error {
	p := tea.NewProgram(NewModel(opts, path), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
