// Package listing splits LinkedIn job-alert email bodies into listings.
//
// Alert emails come in two layouts. The current one puts the title on its own
// line, followed by "Company · Location" and optionally a salary line. The
// older one stacks title, company and location on three lines. Each listing is
// terminated by a "View job:" (or bare "View") marker whose following segment
// starts with the listing URL.
package listing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/jobdigest/internal/model"
)

const separator = " · "

var (
	delimiters = []string{"View job:", "View"}

	listingURLPattern = regexp.MustCompile(`https://www\.linkedin\.com/comm/jobs/view/\d+[^\s"'<>]*`)
	connectionsLine   = regexp.MustCompile(`^\d+\s+connections?$`)
	beFirstLine       = regexp.MustCompile(`^Be first of \d+ to apply$`)
	connectionsSuffix = regexp.MustCompile(`\s*-\s*\d+\s+connections?`)

	ruleLine = strings.Repeat("-", 50)
)

// Parse extracts every listing it can find in body. Segments that cannot be
// parsed are skipped; a body without a delimiter yields nil.
func Parse(body string) []model.Job {
	var segments []string
	for _, d := range delimiters {
		if strings.Contains(body, d) {
			segments = strings.Split(body, d)
			break
		}
	}
	if segments == nil {
		return nil
	}

	var jobs []model.Job
	// The final segment is the footer.
	for i := 0; i < len(segments)-1; i++ {
		link := listingURLPattern.FindString(segments[i+1])
		if link == "" {
			continue
		}
		job, ok := parseSegment(segments[i])
		if !ok {
			continue
		}
		job.URL = link
		jobs = append(jobs, job)
	}
	return jobs
}

func parseSegment(segment string) (model.Job, bool) {
	lines := cleanLines(segment)
	if len(lines) == 0 {
		return model.Job{}, false
	}

	for idx, line := range lines {
		if !strings.Contains(line, separator) {
			continue
		}
		job := model.Job{Title: model.UnknownTitle}
		if idx > 0 {
			job.Title = lines[idx-1]
		}
		if idx+1 < len(lines) && strings.Contains(lines[idx+1], "$") {
			job.InlineSalary = lines[idx+1]
		}
		job.Company, job.Location = splitCombined(line)
		return job, true
	}

	return parseStacked(lines)
}

// splitCombined separates "Company · Location", swapping the halves only when
// the first one alone looks like a location.
func splitCombined(line string) (company, location string) {
	parts := strings.Split(line, separator)
	first := strings.TrimSpace(parts[0])
	second := model.NotSpecified
	if len(parts) > 1 {
		second = strings.TrimSpace(parts[1])
	}

	if LooksLikeLocation(first) && !LooksLikeLocation(second) {
		return second, first
	}
	return first, second
}

func parseStacked(lines []string) (model.Job, bool) {
	var job model.Job
	switch {
	case len(lines) >= 3:
		job.Title = lines[len(lines)-3]
	case len(lines) == 2:
		job.Title = model.UnknownTitle
	default:
		return model.Job{}, false
	}
	job.Company = connectionsSuffix.ReplaceAllString(lines[len(lines)-2], "")
	job.Location = lines[len(lines)-1]

	if LooksLikeLocation(job.Company) {
		return model.Job{}, false
	}
	return job, true
}

func cleanLines(segment string) []string {
	var lines []string
	for _, raw := range strings.Split(segment, "\n") {
		l := strings.TrimSpace(raw)
		switch {
		case l == "", l == ruleLine:
		case utf8.RuneCountInString(l) <= 1, strings.HasPrefix(l, "http"):
		case connectionsLine.MatchString(l), beFirstLine.MatchString(l):
		default:
			lines = append(lines, l)
		}
	}
	return lines
}
