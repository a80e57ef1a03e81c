package reader

import (
	"regexp"
	"strings"
)

// Match is one search hit: the page it was found on and the period-delimited
// span of text containing the query.
type Match struct {
	Page     int
	Sentence string
}

// Search finds, case-insensitively, every span of text running from the
// start of a page or a period up to the next period that contains query.
// Spans are returned page by page, left to right, with line breaks removed.
//
// A "sentence" here is purely what lies between periods; abbreviations and
// decimal numbers split spans like any other period.
func Search(doc *Document, query string) []Match {
	re := regexp.MustCompile(`(?i)[^.]*` + regexp.QuoteMeta(query) + `[^.]*\.`)

	var matches []Match
	for i, p := range doc.Pages {
		for _, span := range re.FindAllString(p.Text, -1) {
			matches = append(matches, Match{
				Page:     i,
				Sentence: strings.ReplaceAll(span, "\n", ""),
			})
		}
	}
	return matches
}
