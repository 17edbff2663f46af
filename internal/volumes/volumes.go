// Package volumes enumerates the places a scan can start from.
package volumes

import (
	"bufio"
	"io"
	"sort"
	"strings"
)

type Volume struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Pseudo filesystems that hold no user data.
var skipTypes = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true,
	"cgroup": true, "cgroup2": true, "securityfs": true, "pstore": true,
	"debugfs": true, "tracefs": true, "configfs": true, "fusectl": true,
	"mqueue": true, "hugetlbfs": true, "bpf": true, "autofs": true,
	"binfmt_misc": true, "rpc_pipefs": true, "nsfs": true, "squashfs": true,
	"overlay": true, "tmpfs": true,
}

// List returns the mounted volumes, falling back to the filesystem root.
func List() ([]Volume, error) {
	vols, err := list()
	if err != nil {
		return nil, err
	}
	if len(vols) == 0 {
		return []Volume{{Label: "/", Path: "/"}}, nil
	}
	return vols, nil
}

// parseMounts reads a /proc/self/mounts style table.
func parseMounts(r io.Reader) ([]Volume, error) {
	seen := map[string]bool{}
	var vols []Volume

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mountPoint := unescapeMount(fields[1])
		if skipTypes[fields[2]] || seen[mountPoint] {
			continue
		}
		seen[mountPoint] = true
		vols = append(vols, Volume{Label: mountPoint, Path: mountPoint})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.Slice(vols, func(i, j int) bool { return vols[i].Path < vols[j].Path })
	return vols, nil
}

// unescapeMount decodes the octal escapes the kernel uses for spaces and tabs.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

// driveLetters expands a logical drive bitmask into "A:\" style roots.
func driveLetters(mask uint32) []Volume {
	var vols []Volume
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		letter := string(rune('A' + i))
		vols = append(vols, Volume{Label: letter + ":", Path: letter + `:\`})
	}
	return vols
}
