package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Book is one archive found in a library directory.
type Book struct {
	FileName string
	Path     string
	Metadata Metadata
	Pages    int
}

// IsEPUB reports whether name has an .epub extension.
func IsEPUB(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".epub")
}

// ScanLibrary lists the EPUB files in dir with their metadata, sorted by file
// name. An archive that cannot be read is logged and left out; it does not
// stop the scan.
func ScanLibrary(dir string) ([]Book, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	var books []Book
	for _, e := range entries {
		if e.IsDir() || !IsEPUB(e.Name()) {
			continue
		}
		book, err := OpenBook(filepath.Join(dir, e.Name()))
		if err != nil {
			logrus.WithField("file", e.Name()).WithError(err).Warn("Skipping unreadable archive")
			continue
		}
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool { return books[i].FileName < books[j].FileName })
	return books, nil
}

// OpenBook reads the listing information of a single archive.
func OpenBook(filename string) (Book, error) {
	md, err := ReadMetadata(filename)
	if err != nil {
		return Book{}, err
	}
	pages, err := CountPages(filename)
	if err != nil {
		return Book{}, err
	}
	return Book{
		FileName: filepath.Base(filename),
		Path:     filename,
		Metadata: md,
		Pages:    pages,
	}, nil
}
