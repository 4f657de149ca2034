package model

import (
	"context"
	"regexp"
	"time"
)

const (
	// NotSpecified is the placeholder for an unknown location or pay range.
	NotSpecified = "Not specified"
	// UnknownTitle is used when a listing carries no recoverable title.
	UnknownTitle = "Unknown Title"
)

// Job is a single listing parsed out of an alert email or recovered from a
// previously sent digest.
type Job struct {
	Title        string
	Company      string
	Location     string
	URL          string // canonical link, carries the numeric job ID
	Compensation string // resolved pay range or NotSpecified
	InlineSalary string // salary line captured next to the listing, never rendered
}

var jobIDPattern = regexp.MustCompile(`/jobs/view/(\d+)`)

// JobID extracts the numeric LinkedIn job ID from a link.
func JobID(link string) (string, bool) {
	m := jobIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DedupKey returns the job ID when the link has one, otherwise the link itself.
func DedupKey(link string) string {
	if id, ok := JobID(link); ok {
		return id
	}
	return link
}

// Thread is an opaque reference returned by a mailbox search.
type Thread struct {
	ID      string
	Subject string
}

// Message is a fetched email. Body is whatever the mail tool reports as the
// message body, plain text or HTML.
type Message struct {
	ID   string
	Body string
}

// TierGroup is one non-empty tier section of a digest.
type TierGroup struct {
	Tier  int
	Label string
	Class string
	Jobs  []Job
}

// Digest is a rendered summary ready to be delivered.
type Digest struct {
	Subject     string
	HTML        string
	Total       int
	GeneratedAt time.Time
	Tiers       []TierGroup
}

// Run is one delivered digest as recorded in the history store.
type Run struct {
	ID        string
	Recipient string
	Subject   string
	Total     int
	Tier1     int
	Tier2     int
	Tier3     int
	SentAt    time.Time
}

// MailClient is the mailbox surface the pipeline needs.
type MailClient interface {
	Search(ctx context.Context, query string, max int) ([]Thread, error)
	Get(ctx context.Context, id string) (Message, error)
	ModifyLabels(ctx context.Context, id string, add, remove []string) error
	Send(ctx context.Context, to, subject, html string) error
}

// PageFetcher retrieves the raw HTML of a public job page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Notifier delivers a built digest.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// JobFilter decides whether a listing is kept. context is the text the
// listing was found in.
type JobFilter interface {
	Match(job Job, context string) bool
}

// RunStore keeps a history of delivered digests.
type RunStore interface {
	RecordDigest(ctx context.Context, run Run) error
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
}
