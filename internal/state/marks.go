package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateBookmark is returned when the exact same bookmark exists.
	ErrDuplicateBookmark = errors.New("state: bookmark already exists")

	// ErrIndexOutOfRange is returned when deleting an entry that does not exist.
	ErrIndexOutOfRange = errors.New("state: index out of range")
)

// Bookmark marks a page index and the progress through that page.
type Bookmark struct {
	Page     int
	Progress float64
}

// MarshalJSON encodes a bookmark as a [page, progress] pair.
func (b Bookmark) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{b.Page, b.Progress})
}

// UnmarshalJSON accepts a [page, progress] pair or a {"page", "progress"} object.
func (b *Bookmark) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("bookmark: expected [page, progress], got %d values", len(pair))
		}
		*b = Bookmark{Page: int(pair[0]), Progress: pair[1]}
		return nil
	}

	var obj struct {
		Page     int     `json:"page"`
		Progress float64 `json:"progress"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("bookmark: %w", err)
	}
	*b = Bookmark{Page: obj.Page, Progress: obj.Progress}
	return nil
}

// Bookmarks is an ordered list of bookmarks without exact duplicates.
type Bookmarks []Bookmark

// Add appends bm unless an identical bookmark is already present.
func (b *Bookmarks) Add(bm Bookmark) error {
	if slices.Contains(*b, bm) {
		return ErrDuplicateBookmark
	}
	*b = append(*b, bm)
	return nil
}

// Delete removes the bookmark at index i, keeping the order of the rest.
func (b *Bookmarks) Delete(i int) error {
	if i < 0 || i >= len(*b) {
		return ErrIndexOutOfRange
	}
	*b = slices.Delete(*b, i, i+1)
	return nil
}

// Clear removes all bookmarks.
func (b *Bookmarks) Clear() {
	*b = Bookmarks{}
}

func (b Bookmarks) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Bookmark(b))
}

// History is the ordered list of search queries, duplicates included.
type History []string

// Record appends a query.
func (h *History) Record(query string) {
	*h = append(*h, query)
}

// Delete removes the query at index i, keeping the order of the rest.
func (h *History) Delete(i int) error {
	if i < 0 || i >= len(*h) {
		return ErrIndexOutOfRange
	}
	*h = slices.Delete(*h, i, i+1)
	return nil
}

// Clear removes all queries.
func (h *History) Clear() {
	*h = History{}
}

func (h History) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(h))
}
