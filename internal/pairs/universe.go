package pairs

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// Universe is the sorted, deduplicated set of phage ids that may appear in a
// dataset, with constant-time membership.
type Universe struct {
	ids []string
	set map[string]struct{}
}

// NewUniverse builds a universe from ids; blanks are ignored.
func NewUniverse(ids []string) *Universe {
	u := &Universe{set: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := u.set[id]; dup {
			continue
		}
		u.set[id] = struct{}{}
		u.ids = append(u.ids, id)
	}
	slices.Sort(u.ids)
	return u
}

// LoadUniverse reads newline-delimited phage ids from path.
func LoadUniverse(fs afero.Fs, path string) (*Universe, error) {
	ids, err := LoadIDs(fs, path, "universe")
	if err != nil {
		return nil, err
	}
	return NewUniverse(ids), nil
}

// ReadLines returns the trimmed non-blank lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Contains reports whether id is in the universe.
func (u *Universe) Contains(id string) bool {
	_, ok := u.set[id]
	return ok
}

// Len returns the number of distinct ids.
func (u *Universe) Len() int {
	return len(u.ids)
}

// IDs returns the sorted ids. The slice is shared and must not be modified.
func (u *Universe) IDs() []string {
	return u.ids
}
