// Package output persists captured snapshots.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Writer writes one file per entry into the output directory, overwriting
// any previous run's file of the same name.
type Writer struct {
	dir      string
	markdown bool
	conv     *converter.Converter
}

// New creates a Writer rooted at dir, creating dir and missing parents.
// When markdown is true, each snapshot also gets a .md rendition.
func New(dir string, markdown bool) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output: create %s: %w", dir, err)
	}

	w := &Writer{dir: dir, markdown: markdown}
	if markdown {
		w.conv = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		)
	}
	return w, nil
}

// Write persists markup as <file> under the output directory and returns the
// number of bytes written. file is the entry's source filename, so outputs
// mirror input names exactly.
func (w *Writer) Write(file string, markup []byte) (int, error) {
	path := filepath.Join(w.dir, file)
	if err := os.WriteFile(path, markup, 0o644); err != nil {
		return 0, fmt.Errorf("output: write %s: %w", path, err)
	}

	if w.markdown {
		if err := w.writeMarkdown(file, markup); err != nil {
			return len(markup), err
		}
	}

	return len(markup), nil
}

// Path returns the output path for an entry file.
func (w *Writer) Path(file string) string {
	return filepath.Join(w.dir, file)
}

// writeMarkdown converts the snapshot and writes it as <name>.md. Empty
// conversions are skipped rather than leaving a useless file behind.
func (w *Writer) writeMarkdown(file string, markup []byte) error {
	md, err := w.conv.ConvertString(string(markup))
	if err != nil {
		return fmt.Errorf("output: markdown convert %s: %w", file, err)
	}
	if strings.TrimSpace(md) == "" {
		return nil
	}

	name := strings.TrimSuffix(file, filepath.Ext(file)) + ".md"
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}
