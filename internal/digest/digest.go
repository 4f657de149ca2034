// Package digest renders the tiered HTML summary email and parses previously
// sent summaries back into listings. Both directions share one document
// layout, so changes to the template must keep Recover working.
package digest

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobdigest/internal/filter"
	"github.com/amishk599/jobdigest/internal/model"
)

// DefaultSubject is the subject prefix shared by every digest.
const DefaultSubject = "LinkedIn Job Opportunities"

type tierInfo struct {
	label string
	class string
}

var tiers = map[int]tierInfo{
	1: {"⭐ Tier 1: Top Companies", "tier1"},
	2: {"🌟 Tier 2: Great Companies", "tier2"},
	3: {"✨ Tier 3: Good Companies", "tier3"},
}

// Builder groups listings by tier and renders the digest document.
type Builder struct {
	tier    func(company string) int
	subject string
}

// NewBuilder returns a builder using tier to rank companies. An empty
// subject falls back to DefaultSubject.
func NewBuilder(tier func(company string) int, subject string) *Builder {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Builder{tier: tier, subject: subject}
}

// Build uses the built-in tier tables and default subject.
func Build(jobs []model.Job, now time.Time) (model.Digest, bool) {
	return NewBuilder(filter.Tier, DefaultSubject).Build(jobs, now)
}

type pageData struct {
	Heading   string
	Total     int
	Generated string
	Tiers     []model.TierGroup
}

// Build renders jobs. ok is false when there is nothing to send.
func (b *Builder) Build(jobs []model.Job, now time.Time) (model.Digest, bool) {
	if len(jobs) == 0 {
		return model.Digest{}, false
	}

	grouped := make(map[int][]model.Job, 3)
	for _, j := range jobs {
		t := b.tier(j.Company)
		if _, ok := tiers[t]; !ok {
			t = 3
		}
		grouped[t] = append(grouped[t], j)
	}

	var groups []model.TierGroup
	for t := 1; t <= 3; t++ {
		if len(grouped[t]) == 0 {
			continue
		}
		groups = append(groups, model.TierGroup{
			Tier:  t,
			Label: tiers[t].label,
			Class: tiers[t].class,
			Jobs:  grouped[t],
		})
	}

	var buf bytes.Buffer
	data := pageData{
		Heading:   b.subject,
		Total:     len(jobs),
		Generated: now.Format("2006-01-02 15:04"),
		Tiers:     groups,
	}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		// The template is fixed and the data is plain strings.
		panic(fmt.Sprintf("render digest: %v", err))
	}

	return model.Digest{
		Subject:     fmt.Sprintf("%s - %d Public Companies", b.subject, len(jobs)),
		HTML:        buf.String(),
		Total:       len(jobs),
		GeneratedAt: now,
		Tiers:       groups,
	}, true
}

var rankPrefix = regexp.MustCompile(`^\d+\.\s+`)

const (
	payLabel      = "💰 Pay Range:"
	locationLabel = "📍 Location:"
)

// Recover extracts the listings from a previously rendered digest. Blocks
// without a company or a link are skipped.
func Recover(html string) []model.Job {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var jobs []model.Job
	doc.Find("div.job").Each(func(_ int, s *goquery.Selection) {
		company := rankPrefix.ReplaceAllString(strings.TrimSpace(s.Find("div.company").First().Text()), "")
		company = strings.TrimSpace(company)
		link, _ := s.Find("a[href]").First().Attr("href")
		link = strings.TrimSpace(link)
		if company == "" || link == "" {
			return
		}

		job := model.Job{
			Company:      company,
			Title:        strings.TrimSpace(s.Find("div.title").First().Text()),
			URL:          link,
			Compensation: model.NotSpecified,
			Location:     model.NotSpecified,
		}
		if job.Title == "" {
			job.Title = model.UnknownTitle
		}
		s.Find("div.info").Each(func(_ int, info *goquery.Selection) {
			text := strings.TrimSpace(info.Text())
			if v, ok := strings.CutPrefix(text, payLabel); ok && strings.TrimSpace(v) != "" {
				job.Compensation = strings.TrimSpace(v)
			}
			if v, ok := strings.CutPrefix(text, locationLabel); ok && strings.TrimSpace(v) != "" {
				job.Location = strings.TrimSpace(v)
			}
		})
		jobs = append(jobs, job)
	})
	return jobs
}
