// Package entries discovers the content entries of a render run.
//
// Each regular file in the entries directory whose extension matches the
// configured suffix becomes one entry, identified by its filename without
// the extension. Discovery order is lexicographic so runs are reproducible.
package entries

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrNotDirectory is returned when the entries path is missing or not a
// directory. This is the one condition that aborts a run up front.
var ErrNotDirectory = errors.New("entries: not a directory")

// Entry is one unit of content to render.
type Entry struct {
	// Name is the logical identifier: the source filename without extension.
	Name string

	// File is the source filename including extension.
	File string
}

// Discover lists entries in dir whose extension matches ext
// (case-insensitive), sorted by filename. A missing or non-directory path
// returns ErrNotDirectory. Zero matches is not an error.
func Discover(dir, ext string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
		return nil, fmt.Errorf("entries: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("entries: read %s: %w", dir, err)
	}

	ext = strings.ToLower(ext)
	var out []Entry
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		out = append(out, Entry{
			Name: name[:len(name)-len(ext)],
			File: name,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}
