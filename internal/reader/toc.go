package reader

// TOCEntry is one navigation point of the book's table of contents.
type TOCEntry struct {
	Title string
	Page  int // page index the entry points into
	Level int // nesting depth, 0 for top level
}
