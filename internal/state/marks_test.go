package state

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBookmarksAdd(t *testing.T) {
	var b Bookmarks

	if err := b.Add(Bookmark{Page: 2, Progress: 50}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := b.Add(Bookmark{Page: 2, Progress: 50}); !errors.Is(err, ErrDuplicateBookmark) {
		t.Errorf("duplicate Add err = %v, want ErrDuplicateBookmark", err)
	}
	if len(b) != 1 {
		t.Fatalf("expected 1 bookmark after duplicate, got %d", len(b))
	}

	if err := b.Add(Bookmark{Page: 2, Progress: 51}); err != nil {
		t.Fatalf("Add of distinct progress failed: %v", err)
	}
	if err := b.Add(Bookmark{Page: 3, Progress: 50}); err != nil {
		t.Fatalf("Add of distinct page failed: %v", err)
	}
	if len(b) != 3 {
		t.Errorf("expected 3 bookmarks, got %d", len(b))
	}
}

func TestBookmarksDelete(t *testing.T) {
	b := Bookmarks{{1, 0}, {2, 0}, {3, 0}}

	for _, i := range []int{-1, 3, 10} {
		if err := b.Delete(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Delete(%d) err = %v, want ErrIndexOutOfRange", i, err)
		}
	}
	if len(b) != 3 {
		t.Fatalf("out-of-range deletes changed the list: %v", b)
	}

	if err := b.Delete(1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(b) != 2 || b[0].Page != 1 || b[1].Page != 3 {
		t.Errorf("after Delete(1): %v, want pages [1 3]", b)
	}

	b.Clear()
	if len(b) != 0 {
		t.Errorf("Clear left %v", b)
	}
}

func TestHistory(t *testing.T) {
	var h History
	h.Record("cat")
	h.Record("cat")
	h.Record("dog")
	if len(h) != 3 {
		t.Fatalf("expected duplicates to be kept, got %v", h)
	}

	if err := h.Delete(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Delete(5) err = %v, want ErrIndexOutOfRange", err)
	}
	if err := h.Delete(0); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(h) != 2 || h[0] != "cat" || h[1] != "dog" {
		t.Errorf("after Delete(0): %v, want [cat dog]", h)
	}

	h.Clear()
	if len(h) != 0 {
		t.Errorf("Clear left %v", h)
	}
}

func TestBookmarkJSON(t *testing.T) {
	data, err := json.Marshal(Bookmark{Page: 2, Progress: 37.5})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[2,37.5]" {
		t.Errorf("Marshal = %s, want [2,37.5]", data)
	}

	tests := []struct {
		input   string
		want    Bookmark
		wantErr bool
	}{
		{"[4, 12.5]", Bookmark{4, 12.5}, false},
		{`{"page": 1, "progress": 99}`, Bookmark{1, 99}, false},
		{"[1]", Bookmark{}, true},
		{`"page"`, Bookmark{}, true},
	}
	for _, tt := range tests {
		var b Bookmark
		err := json.Unmarshal([]byte(tt.input), &b)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && b != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.input, b, tt.want)
		}
	}

	empty, _ := json.Marshal(Bookmarks(nil))
	if string(empty) != "[]" {
		t.Errorf("nil bookmarks marshal to %s, want []", empty)
	}
}
