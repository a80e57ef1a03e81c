package reader

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// ErrNoTOC is returned when the archive carries no NCX navigation map.
var ErrNoTOC = errors.New("reader: no table of contents")

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// Contents reads the NCX table of contents of an EPUB and resolves each
// entry to the page of doc it points into. Entries whose target is not one
// of the document's pages are left out.
func Contents(filename string, doc *Document) ([]TOCEntry, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	defer zr.Close()

	ncxPath, data, err := findAndReadNCX(filename, &zr.Reader)
	if err != nil {
		return nil, err
	}

	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}

	pages := make(map[string]int, doc.PageCount())
	bases := make(map[string]int, doc.PageCount())
	for i, p := range doc.Pages {
		pages[p.Name] = i
		if _, ok := bases[path.Base(p.Name)]; !ok {
			bases[path.Base(p.Name)] = i
		}
	}

	resolve := func(src string) (int, bool) {
		if idx := strings.Index(src, "#"); idx != -1 {
			src = src[:idx]
		}
		if decoded, err := url.PathUnescape(src); err == nil {
			src = decoded
		}
		if i, ok := pages[path.Join(path.Dir(ncxPath), src)]; ok {
			return i, true
		}
		i, ok := bases[path.Base(src)]
		return i, ok
	}

	return flattenNavPoints(toc.NavMap.NavPoints, resolve, 0), nil
}

// findAndReadNCX locates the NCX through the package manifest, falling back
// to the first .ncx entry in the archive.
func findAndReadNCX(filename string, zr *zip.Reader) (string, []byte, error) {
	var ncxPath string
	if rc, err := epub.OpenReader(filename); err == nil {
		if len(rc.Rootfiles) > 0 {
			book := rc.Rootfiles[0]
			for _, item := range book.Manifest.Items {
				if item.MediaType == "application/x-dtbncx+xml" {
					ncxPath = path.Join(path.Dir(book.FullPath), item.HREF)
					break
				}
			}
		}
		rc.Close()
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return "", nil, ErrNoTOC
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || path.Base(f.Name) == path.Base(ncxPath) {
			data, err := readEntry(f)
			return f.Name, data, err
		}
	}
	return "", nil, fmt.Errorf("%w: %s not found in archive", ErrNoTOC, ncxPath)
}

func flattenNavPoints(points []navPoint, resolve func(string) (int, bool), level int) []TOCEntry {
	var entries []TOCEntry
	for _, np := range points {
		if page, ok := resolve(np.Content.Src); ok {
			entries = append(entries, TOCEntry{
				Title: strings.TrimSpace(np.Label.Text),
				Page:  page,
				Level: level,
			})
		}
		if len(np.Children) > 0 {
			entries = append(entries, flattenNavPoints(np.Children, resolve, level+1)...)
		}
	}
	return entries
}
