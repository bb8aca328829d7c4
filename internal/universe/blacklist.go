package universe

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Blacklist is the persisted set of identifiers known to be inferior
// duplicates for some ticker. It is loaded once at run start, losing
// duplicates are added during the run, and the file is rewritten in full
// (sorted) at run end.
//
// Invariant: an id, once excluded, is never reconsidered as canonical.
type Blacklist struct {
	ids map[string]struct{}
}

// LoadBlacklist reads the blacklist file (one id per line). A missing file
// yields an empty blacklist — the normal first-run state.
func LoadBlacklist(path string) (*Blacklist, error) {
	b := &Blacklist{ids: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, fmt.Errorf("open blacklist: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id != "" {
			b.ids[id] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read blacklist: %w", err)
	}

	return b, nil
}

// Contains reports whether an id is excluded.
func (b *Blacklist) Contains(id string) bool {
	_, ok := b.ids[id]
	return ok
}

// Add marks an id as excluded for this and all future runs.
func (b *Blacklist) Add(id string) {
	b.ids[id] = struct{}{}
}

// Set exposes the exclusion set for Resolve.
func (b *Blacklist) Set() map[string]struct{} {
	return b.ids
}

// Len returns the number of excluded ids.
func (b *Blacklist) Len() int {
	return len(b.ids)
}

// Save rewrites the blacklist file in full, one id per line, sorted.
func (b *Blacklist) Save(path string) error {
	ids := make([]string, 0, len(b.ids))
	for id := range b.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write blacklist: %w", err)
	}
	return nil
}
