package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/haivivi/voicematch/pkg/storage"
)

// ErrManifest reports a malformed manifest line.
var ErrManifest = errors.New("dataset: malformed manifest")

// Entry is one manifest line.
type Entry struct {
	Path  string
	Label int
}

// ParseManifest reads "<path>\t<label>" lines from r. Blank lines are
// skipped. Trailing carriage returns are ignored.
func ParseManifest(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		path, label, ok := strings.Cut(text, "\t")
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: line %d: want <path>\\t<label>", ErrManifest, line)
		}
		n, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad label %q", ErrManifest, line, label)
		}
		entries = append(entries, Entry{Path: path, Label: n})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read manifest: %w", err)
	}
	return entries, nil
}

// ReadManifest reads and parses the manifest at path in store.
func ReadManifest(ctx context.Context, store storage.FileStore, path string) ([]Entry, error) {
	r, err := store.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open manifest %s: %w", path, err)
	}
	defer r.Close()
	return ParseManifest(r)
}

// NumClasses returns max label + 1, or 0 for no entries.
func NumClasses(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n = max(n, e.Label+1)
	}
	return n
}
