package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"coinpulse/internal/logger"
)

// maxSnapshotWriters bounds the number of universe files rewritten
// concurrently. Each date file has exactly one writer.
const maxSnapshotWriters = 8

// MergeSeries unions the lines of the prior file (if any), the current
// destination file (if any) and the newly produced lines as a set, sorts
// them by the leading 8-digit date token ascending and rewrites destPath
// atomically.
//
// This is a full rewrite, not an append: incoming records may have to be
// interleaved into historical gaps. Running it twice with the same input
// yields an identical file.
func MergeSeries(priorPath, destPath string, lines []string) error {
	return mergeAndWrite(priorPath, destPath, lines, seriesLess)
}

// MergeUniverse unions new lines into one per-date universe snapshot,
// sorted lexicographically by the leading ticker token.
func MergeUniverse(path string, lines []string) error {
	return mergeAndWrite(path, path, lines, universeLess)
}

// WriteUniverseSnapshots merges every accumulated per-date cross-section
// into its snapshot file. Files for distinct dates are independent, so they
// are written under a bounded errgroup; the first failure cancels the rest.
func WriteUniverseSnapshots(ctx context.Context, l *Layout, byDate map[string][]string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSnapshotWriters)

	for dateKey, lines := range byDate {
		if err := gctx.Err(); err != nil {
			break
		}
		dateKey, lines := dateKey, lines
		g.Go(func() error {
			if err := MergeUniverse(l.UniversePath(dateKey), lines); err != nil {
				return fmt.Errorf("universe %s: %w", dateKey, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.L().Debug().Int("dates", len(byDate)).Msg("universe snapshots written")
	return nil
}

// mergeAndWrite implements the shared union-sort-rewrite step. priorPath
// and destPath may be the same file; both are read when they differ so a
// relocated prior (processed mirror) never loses rows already present at
// the destination.
func mergeAndWrite(priorPath, destPath string, newLines []string, less func(a, b string) bool) error {
	merged := make(map[string]struct{}, len(newLines))

	for _, p := range dedupePaths(priorPath, destPath) {
		existing, err := readLines(p)
		if err != nil {
			return err
		}
		for _, line := range existing {
			merged[line] = struct{}{}
		}
	}
	for _, line := range newLines {
		line = strings.TrimSpace(line)
		if line != "" {
			merged[line] = struct{}{}
		}
	}

	out := make([]string, 0, len(merged))
	for line := range merged {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })

	return writeAtomic(destPath, out)
}

func dedupePaths(a, b string) []string {
	if a == "" || a == b {
		return []string{b}
	}
	return []string{a, b}
}

// readLines returns the non-empty lines of a file; a missing file yields
// none.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// writeAtomic rewrites path through a temp file in the same directory plus
// rename, so downstream readers never observe a partial file on the
// success path.
func writeAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".merge-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// seriesLess orders per-instrument lines by the leading yyyyMMdd token
// ascending. Digit strings of equal length compare correctly as text; the
// full line breaks exact-date ties deterministically.
func seriesLess(a, b string) bool {
	da, db := leadingToken(a), leadingToken(b)
	if da != db {
		return da < db
	}
	return a < b
}

// universeLess orders universe lines lexicographically by the leading
// ticker token.
func universeLess(a, b string) bool {
	ta, tb := leadingToken(a), leadingToken(b)
	if ta != tb {
		return ta < tb
	}
	return a < b
}

func leadingToken(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return line[:i]
	}
	return line
}
