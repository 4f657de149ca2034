package htmltext

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract returns the text content of an HTML document with markup removed.
// Unparseable input is returned unchanged.
func Extract(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}

var htmlMarkers = []string{"<html", "<body", "<div", "<table", "<p>", "<br"}

// PlainView returns a text rendering of body: markup is stripped when body
// looks like HTML, plain text passes through untouched.
func PlainView(body string) string {
	lower := strings.ToLower(body)
	for _, m := range htmlMarkers {
		if strings.Contains(lower, m) {
			return Extract(body)
		}
	}
	return body
}

var jobLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://www\.linkedin\.com/jobs/view/\d+`),
	regexp.MustCompile(`https://www\.linkedin\.com/comm/jobs/view/\d+`),
	regexp.MustCompile(`https://[a-z]+\.linkedin\.com/jobs/view/\d+`),
}

// JobLinks returns the distinct job links found in the raw body, sorted.
func JobLinks(body string) []string {
	seen := make(map[string]struct{})
	for _, re := range jobLinkPatterns {
		for _, m := range re.FindAllString(body, -1) {
			seen[m] = struct{}{}
		}
	}
	links := make([]string, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	sort.Strings(links)
	return links
}
