package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PageFileName is the export name for the 1-based page n of a book.
func PageFileName(md Metadata, n int) string {
	return fmt.Sprintf("%s_%s_page_%d.txt", safeName(md.Title), safeName(md.Author), n)
}

// BookFileName is the export name for a whole book.
func BookFileName(md Metadata) string {
	return fmt.Sprintf("%s_%s.txt", safeName(md.Title), safeName(md.Author))
}

// SavePage writes the text of page index idx to dir and returns the path
// written. An existing file of the same name is overwritten.
func SavePage(dir string, md Metadata, doc *Document, idx int) (string, error) {
	if idx < 0 || idx >= doc.PageCount() {
		return "", ErrPageOutOfRange
	}
	name := filepath.Join(dir, PageFileName(md, idx+1))
	if err := os.WriteFile(name, []byte(doc.Pages[idx].Text), 0o644); err != nil {
		return "", fmt.Errorf("failed to save page: %w", err)
	}
	return name, nil
}

// SaveBook writes every page of doc to a single file in dir, each followed
// by a blank line, and returns the path written.
func SaveBook(dir string, md Metadata, doc *Document) (string, error) {
	var sb strings.Builder
	for _, p := range doc.Pages {
		sb.WriteString(p.Text)
		sb.WriteString("\n\n")
	}
	name := filepath.Join(dir, BookFileName(md))
	if err := os.WriteFile(name, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to save book: %w", err)
	}
	return name, nil
}

// safeName keeps titles with slashes from turning into directories.
func safeName(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "\x00", "").Replace(s)
}
