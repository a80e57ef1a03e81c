package reader

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/taylorskalyo/goreader/epub"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Placeholders used when the package document does not name a field.
const (
	UnknownTitle    = "Unknown Title"
	UnknownAuthor   = "Unknown Author"
	UnknownDate     = "Unknown Date"
	UnknownLanguage = "Unknown Language"
)

// maxEntrySize caps the decompressed size of a single archive entry.
const maxEntrySize int64 = 256 * 1024 * 1024

// Metadata describes a book as listed in its package document.
type Metadata struct {
	Title    string
	Author   string
	Date     string
	Language string
}

var (
	titlePattern    = regexp.MustCompile(`<dc:title[^>]*>(.*?)</dc:title>`)
	creatorPattern  = regexp.MustCompile(`<dc:creator[^>]*>(.*?)</dc:creator>`)
	datePattern     = regexp.MustCompile(`<dc:date[^>]*>(.*?)</dc:date>`)
	languagePattern = regexp.MustCompile(`<dc:language[^>]*>(.*?)</dc:language>`)
)

// ReadMetadata returns the title, author, date and language of an EPUB.
// Fields the package document does not provide are set to their Unknown
// placeholder; only a file that is not a zip archive is an error.
func ReadMetadata(filename string) (Metadata, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		var md Metadata
		md.fillPlaceholders()
		return md, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	defer zr.Close()

	var md Metadata
	for _, f := range zr.File {
		if !strings.Contains(f.Name, "content.opf") {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"file":  filename,
				"entry": f.Name,
			}).WithError(err).Warn("Failed to read package document")
			break
		}
		md = probeMetadata(string(data))
		break
	}

	if md.incomplete() {
		md.fillFromPackage(filename)
	}
	md.fillPlaceholders()
	return md, nil
}

// probeMetadata pulls the first occurrence of each Dublin Core field out of
// raw OPF markup.
func probeMetadata(opf string) Metadata {
	first := func(re *regexp.Regexp) string {
		if m := re.FindStringSubmatch(opf); m != nil {
			return strings.TrimSpace(html.UnescapeString(m[1]))
		}
		return ""
	}
	return Metadata{
		Title:    first(titlePattern),
		Author:   first(creatorPattern),
		Date:     first(datePattern),
		Language: first(languagePattern),
	}
}

// fillFromPackage completes missing fields from the rootfile named in
// META-INF/container.xml, which covers package documents not called content.opf.
func (md *Metadata) fillFromPackage(filename string) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		logrus.WithField("file", filename).WithError(err).Debug("No structured package document")
		return
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return
	}
	pkg := rc.Rootfiles[0]
	if md.Title == "" {
		md.Title = strings.TrimSpace(pkg.Title)
	}
	if md.Author == "" {
		md.Author = strings.TrimSpace(pkg.Creator)
	}
	if md.Language == "" {
		md.Language = strings.TrimSpace(pkg.Language)
	}
}

func (md *Metadata) incomplete() bool {
	return md.Title == "" || md.Author == "" || md.Date == "" || md.Language == ""
}

func (md *Metadata) fillPlaceholders() {
	if md.Title == "" {
		md.Title = UnknownTitle
	}
	if md.Author == "" {
		md.Author = UnknownAuthor
	}
	if md.Date == "" {
		md.Date = UnknownDate
	}
	if md.Language == "" {
		md.Language = UnknownLanguage
	}
}

// ExtractPages converts every HTML/XHTML entry of the archive into a page,
// ordered by entry name. An entry that cannot be read or parsed yields an
// empty page rather than an error.
func ExtractPages(filename string) (*Document, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	defer zr.Close()

	files := contentFiles(&zr.Reader)
	pages := make([]Page, 0, len(files))
	for _, f := range files {
		data, err := readEntry(f)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"file":  filename,
				"entry": f.Name,
			}).WithError(err).Warn("Skipping unreadable content document")
		}
		pages = append(pages, NewPage(f.Name, paginateText(extractTextFromHTML(string(data)))))
	}
	return NewDocument(pages...), nil
}

// CountPages returns the number of content documents in the archive without
// extracting them.
func CountPages(filename string) (int, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	defer zr.Close()
	return len(contentFiles(&zr.Reader)), nil
}

func isContentFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".xhtml")
}

func contentFiles(zr *zip.Reader) []*zip.File {
	var files []*zip.File
	for _, f := range zr.File {
		if isContentFile(f.Name) {
			files = append(files, f)
		}
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxEntrySize {
		return nil, fmt.Errorf("entry %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return stripBOM(data), nil
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// extractTextFromHTML returns the text nodes of a markup document separated
// by spaces. Script and style contents are dropped.
func extractTextFromHTML(s string) string {
	doc, err := xhtml.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var out strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == xhtml.TextNode {
			out.WriteString(n.Data)
			out.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out.String()
}

// paginateText collapses whitespace and puts each sentence on its own
// paragraph, separated by a blank line.
func paginateText(text string) string {
	return strings.Join(splitSentences(strings.Join(strings.Fields(text), " ")), "\n\n")
}

// splitSentences splits collapsed text at spaces that follow '.', '!' or '?'.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 1; i < len(text); i++ {
		if text[i] == ' ' && strings.IndexByte(".!?", text[i-1]) >= 0 {
			out = append(out, text[start:i])
			start = i + 1
		}
	}
	return append(out, text[start:])
}
