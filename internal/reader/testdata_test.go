package reader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	name string
	body string
}

// writeEPUB writes a zip archive with the given entries, in order, and
// returns its path.
func writeEPUB(t *testing.T, dir, name string, entries ...entry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip Create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatalf("zip Write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
	return path
}

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const contentOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>A Tale &amp; More</dc:title>
    <dc:creator opf:role="aut">Jane Doe</dc:creator>
    <dc:date>2001-02-03</dc:date>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const tocNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>Chapter One</text></navLabel>
      <content src="ch1.xhtml"/>
      <navPoint id="n2" playOrder="2">
        <navLabel><text> Section </text></navLabel>
        <content src="ch1.xhtml#sec"/>
      </navPoint>
    </navPoint>
    <navPoint id="n3" playOrder="3">
      <navLabel><text>Chapter Two</text></navLabel>
      <content src="ch2.xhtml"/>
    </navPoint>
    <navPoint id="n4" playOrder="4">
      <navLabel><text>Ghost</text></navLabel>
      <content src="missing.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

const chapterOne = `<html><head><title>One</title><style>p { color: red; }</style></head>` +
	`<body><h1>Chapter 1</h1><p>The cat sat.   The dog ran!</p><p>Is it  over? Yes.</p>` +
	`<script>var x = 1;</script></body></html>`

const chapterTwo = `<html><body><p>Second page.</p></body></html>`

// sampleEPUB writes a small two-chapter book. The chapters are stored out of
// order to exercise name sorting.
func sampleEPUB(t *testing.T, dir string) string {
	t.Helper()
	return writeEPUB(t, dir, "sample.epub",
		entry{"mimetype", "application/epub+zip"},
		entry{"META-INF/container.xml", containerXML},
		entry{"OEBPS/content.opf", contentOPF},
		entry{"OEBPS/toc.ncx", tocNCX},
		entry{"OEBPS/ch2.xhtml", chapterTwo},
		entry{"OEBPS/ch1.xhtml", chapterOne},
		entry{"OEBPS/style.css", "p { margin: 0; }"},
	)
}
