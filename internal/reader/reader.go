// Package reader turns EPUB archives into paged plain text and tracks a
// reading position through it.
package reader

import "math"

// Cursor identifies a reading position: a page index and the first visible
// line on that page.
type Cursor struct {
	Page   int
	Offset int
}

// Reader holds the pagination state for a reading session.
type Reader struct {
	Doc    *Document
	cursor Cursor
}

// NewReader creates a Reader positioned at the start of doc.
func NewReader(doc *Document) *Reader {
	return &Reader{Doc: doc}
}

// Position returns the current cursor.
func (r *Reader) Position() Cursor {
	return r.cursor
}

// Restore moves to a previously saved position, clamping it into the
// document so that a stale record never leaves the cursor out of bounds.
func (r *Reader) Restore(page, offset int) {
	if n := r.Doc.PageCount(); page >= n {
		page = n - 1
	}
	if page < 0 {
		page = 0
	}
	r.cursor = Cursor{Page: page, Offset: clampOffset(offset, r.Doc.LineCount(page))}
}

// Advance scrolls forward by n lines, moving to the next page when the
// current one is exhausted. At the last line group of the book it does nothing.
func (r *Reader) Advance(n int) {
	if r.cursor.Offset+n < r.Doc.LineCount(r.cursor.Page) {
		r.cursor.Offset += n
		return
	}
	if r.cursor.Page < r.Doc.PageCount()-1 {
		r.cursor = Cursor{Page: r.cursor.Page + 1}
	}
}

// Retreat scrolls back by n lines. From the top of a page it moves to the
// last line group of the previous page.
func (r *Reader) Retreat(n int) {
	if r.cursor.Offset > 0 {
		r.cursor.Offset = max(0, r.cursor.Offset-n)
		return
	}
	if r.cursor.Page > 0 {
		page := r.cursor.Page - 1
		r.cursor = Cursor{Page: page, Offset: max(0, r.Doc.LineCount(page)-n)}
	}
}

// JumpToPage moves to the top of the 1-based page n. A number below 1 lands
// on the first page and reports clamped; a number past the end returns
// ErrPageOutOfRange and leaves the cursor where it was.
func (r *Reader) JumpToPage(n int) (clamped bool, err error) {
	idx, clamped, err := r.Doc.PageIndex(n)
	if err != nil {
		return false, err
	}
	r.cursor = Cursor{Page: idx}
	return clamped, nil
}

// JumpToPercentage moves to pct percent of the way through the 1-based page n.
func (r *Reader) JumpToPercentage(n int, pct float64) (clamped bool, err error) {
	idx, clamped, err := r.Doc.PageIndex(n)
	if err != nil {
		return false, err
	}
	if pct < 0 || pct > 100 || math.IsNaN(pct) {
		return clamped, ErrPercentOutOfRange
	}
	r.cursor = Cursor{Page: idx, Offset: r.offsetAt(idx, pct)}
	return clamped, nil
}

// JumpTo moves to page index idx at pct percent of its lines. It is used to
// return to bookmarks, whose page may no longer exist if the file changed.
func (r *Reader) JumpTo(idx int, pct float64) error {
	if idx < 0 || idx >= r.Doc.PageCount() {
		return ErrPageOutOfRange
	}
	r.cursor = Cursor{Page: idx, Offset: r.offsetAt(idx, pct)}
	return nil
}

func (r *Reader) offsetAt(idx int, pct float64) int {
	lines := r.Doc.LineCount(idx)
	return clampOffset(int(math.Floor(pct/100*float64(lines))), lines)
}

// Progress returns the percentage of the current page's lines above the cursor.
func (r *Reader) Progress() float64 {
	return PageProgress(r.cursor.Offset, r.Doc.LineCount(r.cursor.Page))
}

// PageProgress is offset/lines as a percentage, 100 for a page with no lines.
func PageProgress(offset, lines int) float64 {
	if lines == 0 {
		return 100
	}
	return float64(offset) / float64(lines) * 100
}

// Visible returns at most n lines of the current page starting at the cursor.
func (r *Reader) Visible(n int) []string {
	lines := r.Doc.Page(r.cursor.Page).Lines()
	start := min(r.cursor.Offset, len(lines))
	end := min(start+max(n, 0), len(lines))
	return lines[start:end]
}

// AtEnd reports whether Advance would leave the cursor unchanged.
func (r *Reader) AtEnd(n int) bool {
	return r.cursor.Page >= r.Doc.PageCount()-1 &&
		r.cursor.Offset+n >= r.Doc.LineCount(r.cursor.Page)
}

func clampOffset(offset, lines int) int {
	if offset >= lines {
		offset = lines - 1
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
