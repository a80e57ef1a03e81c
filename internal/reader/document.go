package reader

import "strings"

// Page is the text extracted from one markup document in the archive.
type Page struct {
	Name  string // archive entry name
	Text  string
	lines []string
}

// NewPage creates a page and splits its text into lines.
func NewPage(name, text string) Page {
	return Page{Name: name, Text: text, lines: strings.Split(text, "\n")}
}

// Lines returns the page text split on line breaks.
func (p Page) Lines() []string {
	if p.lines == nil && p.Text != "" {
		return strings.Split(p.Text, "\n")
	}
	return p.lines
}

// LineCount returns the number of lines in the page.
func (p Page) LineCount() int {
	return len(p.Lines())
}

// Document is the ordered sequence of pages of a book. It is not modified
// after construction.
type Document struct {
	Pages []Page
}

// NewDocument builds a document from pages in reading order.
func NewDocument(pages ...Page) *Document {
	return &Document{Pages: pages}
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the page at index i, or an empty page when i is out of range.
func (d *Document) Page(i int) Page {
	if i < 0 || i >= len(d.Pages) {
		return Page{}
	}
	return d.Pages[i]
}

// LineCount returns the number of lines on page i.
func (d *Document) LineCount(i int) int {
	return d.Page(i).LineCount()
}

// PageIndex converts a 1-based page number into a page index. Numbers below 1
// resolve to the first page with clamped set; numbers past the end fail.
func (d *Document) PageIndex(n int) (idx int, clamped bool, err error) {
	if n > len(d.Pages) {
		return 0, false, ErrPageOutOfRange
	}
	if n < 1 {
		return 0, true, nil
	}
	return n - 1, false, nil
}
