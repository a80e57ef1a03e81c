package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadMetadata(t *testing.T) {
	path := sampleEPUB(t, t.TempDir())

	md, err := ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	want := Metadata{Title: "A Tale & More", Author: "Jane Doe", Date: "2001-02-03", Language: "en"}
	if md != want {
		t.Errorf("ReadMetadata() = %+v, want %+v", md, want)
	}
}

func TestReadMetadataPlaceholders(t *testing.T) {
	dir := t.TempDir()

	t.Run("no package document", func(t *testing.T) {
		path := writeEPUB(t, dir, "bare.epub", entry{"text.html", "<p>Hi.</p>"})
		md, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("ReadMetadata: %v", err)
		}
		want := Metadata{Title: UnknownTitle, Author: UnknownAuthor, Date: UnknownDate, Language: UnknownLanguage}
		if md != want {
			t.Errorf("got %+v, want %+v", md, want)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		path := writeEPUB(t, dir, "partial.epub",
			entry{"content.opf", `<metadata><dc:title>Only Title</dc:title></metadata>`})
		md, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("ReadMetadata: %v", err)
		}
		if md.Title != "Only Title" {
			t.Errorf("Title = %q, want %q", md.Title, "Only Title")
		}
		if md.Author != UnknownAuthor || md.Date != UnknownDate || md.Language != UnknownLanguage {
			t.Errorf("expected placeholders, got %+v", md)
		}
	})

	t.Run("package document under another name", func(t *testing.T) {
		path := writeEPUB(t, dir, "renamed.epub",
			entry{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="book/package.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`},
			entry{"book/package.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Structured</dc:title></metadata>
  <manifest></manifest>
  <spine></spine>
</package>`},
		)
		md, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("ReadMetadata: %v", err)
		}
		if md.Title != "Structured" {
			t.Errorf("Title = %q, want %q", md.Title, "Structured")
		}
		if md.Date != UnknownDate {
			t.Errorf("Date = %q, want %q", md.Date, UnknownDate)
		}
	})

	t.Run("not an archive", func(t *testing.T) {
		path := filepath.Join(dir, "plain.epub")
		os.WriteFile(path, []byte("not a zip"), 0644)
		md, err := ReadMetadata(path)
		if !errors.Is(err, ErrArchive) {
			t.Errorf("err = %v, want ErrArchive", err)
		}
		if md.Title != UnknownTitle {
			t.Errorf("Title = %q, want placeholder", md.Title)
		}
	})
}

func TestExtractPages(t *testing.T) {
	path := sampleEPUB(t, t.TempDir())

	doc, err := ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", doc.PageCount())
	}

	first := doc.Page(0)
	if first.Name != "OEBPS/ch1.xhtml" {
		t.Errorf("first page = %q, want OEBPS/ch1.xhtml", first.Name)
	}
	want := "One Chapter 1 The cat sat.\n\nThe dog ran!\n\nIs it over?\n\nYes."
	if first.Text != want {
		t.Errorf("page 1 text = %q, want %q", first.Text, want)
	}
	if first.LineCount() != 7 {
		t.Errorf("page 1 LineCount() = %d, want 7", first.LineCount())
	}

	if got := doc.Page(1).Text; got != "Second page." {
		t.Errorf("page 2 text = %q, want %q", got, "Second page.")
	}
}

func TestExtractPagesNotArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.epub")
	os.WriteFile(path, []byte("garbage"), 0644)

	if _, err := ExtractPages(path); !errors.Is(err, ErrArchive) {
		t.Errorf("err = %v, want ErrArchive", err)
	}
}

func TestExtractPagesEmptyEntry(t *testing.T) {
	path := writeEPUB(t, t.TempDir(), "empty.epub", entry{"a.html", ""}, entry{"b.xhtml", "<p>Text.</p>"})

	doc, err := ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", doc.PageCount())
	}
	if doc.Page(0).Text != "" {
		t.Errorf("empty entry produced %q", doc.Page(0).Text)
	}
}

func TestCountPages(t *testing.T) {
	path := sampleEPUB(t, t.TempDir())

	n, err := CountPages(path)
	if err != nil {
		t.Fatalf("CountPages: %v", err)
	}
	if n != 2 {
		t.Errorf("CountPages() = %d, want 2", n)
	}
}

func TestIsContentFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"OEBPS/ch1.xhtml", true},
		{"index.html", true},
		{"TEXT/CH3.HTML", true},
		{"toc.ncx", false},
		{"style.css", false},
		{"chapter.htm", false},
	}
	for _, tt := range tests {
		if got := isContentFile(tt.name); got != tt.want {
			t.Errorf("isContentFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExtractTextFromHTML(t *testing.T) {
	htmlContent := `
	<html>
		<head><title>Test</title></head>
		<body>
			<h1>Chapter 1</h1>
			<p>This is the <b>first</b> paragraph.</p>
			<p>
				This is the second paragraph
				with a newline.
			</p>
			<div>Some <span>nested</span> text.</div>
		</body>
	</html>
	`

	want := "Test Chapter 1 This is the first paragraph.\n\nThis is the second paragraph with a newline.\n\nSome nested text."
	if got := paginateText(extractTextFromHTML(htmlContent)); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{""}},
		{"One.", []string{"One."}},
		{"One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"Mr. Smith", []string{"Mr.", "Smith"}},
		{"3.14 is pi.", []string{"3.14 is pi."}},
		{"Wait... what?", []string{"Wait...", "what?"}},
	}
	for _, tt := range tests {
		got := splitSentences(tt.input)
		if len(got) != len(tt.expected) {
			t.Errorf("splitSentences(%q) = %q, want %q", tt.input, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("splitSentences(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
			}
		}
	}
}
