package scanner

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/burace17/disk-analyzer/internal/config"
	"github.com/burace17/disk-analyzer/internal/tree"
)

// Matcher flags well-known reclaimable directories in a finished tree.
type Matcher struct {
	patterns []config.JunkPattern
}

type Match struct {
	Name    string
	Pattern string
	Safe    bool
	Path    string
}

func NewMatcher(patterns []config.JunkPattern) *Matcher {
	return &Matcher{patterns: patterns}
}

func (m *Matcher) Match(path string) []Match {
	var matches []Match
	slashed := filepath.ToSlash(path)
	for _, p := range m.patterns {
		matched, err := doublestar.Match(p.Pattern, slashed)
		if err != nil {
			continue
		}
		if matched {
			matches = append(matches, Match{
				Name:    p.Name,
				Pattern: p.Pattern,
				Safe:    p.Safe,
				Path:    path,
			})
		}
	}
	return matches
}

// FindJunk returns matched directories keyed by path. It does not descend
// into a directory once it matched.
func (m *Matcher) FindJunk(root *tree.Directory) map[string][]Match {
	junk := make(map[string][]Match)
	_ = tree.Walk(root, func(d *tree.Directory, _ int) error {
		if matches := m.Match(d.Path()); len(matches) > 0 {
			junk[d.Path()] = matches
			return tree.SkipDir
		}
		return nil
	})
	return junk
}

type JunkGroup struct {
	Name    string   `json:"name"`
	Pattern string   `json:"pattern"`
	Safe    bool     `json:"safe"`
	Paths   []string `json:"paths"`
	Total   int64    `json:"total"`
}

// GroupJunk aggregates FindJunk by pattern name, largest group first.
func (m *Matcher) GroupJunk(root *tree.Directory) []JunkGroup {
	junk := m.FindJunk(root)

	sizes := make(map[string]int64)
	_ = tree.Walk(root, func(d *tree.Directory, _ int) error {
		if _, ok := junk[d.Path()]; ok {
			sizes[d.Path()] = d.Size()
			return tree.SkipDir
		}
		return nil
	})

	groups := make(map[string]*JunkGroup)
	for path, matches := range junk {
		for _, match := range matches {
			g, ok := groups[match.Name]
			if !ok {
				g = &JunkGroup{Name: match.Name, Pattern: match.Pattern, Safe: match.Safe}
				groups[match.Name] = g
			}
			g.Paths = append(g.Paths, path)
			g.Total += sizes[path]
		}
	}

	result := make([]JunkGroup, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.Paths)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Name < result[j].Name
	})
	return result
}
