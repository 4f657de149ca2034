package salary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobdigest/internal/htmltext"
	"github.com/amishk599/jobdigest/internal/model"
)

// DefaultHost is the public LinkedIn host job pages are fetched from.
const DefaultHost = "www.linkedin.com"

// CanonicalURL strips tracking and the /comm/ prefix from a job link.
func CanonicalURL(link, host string) (string, bool) {
	id, ok := model.JobID(link)
	if !ok {
		return "", false
	}
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("https://%s/jobs/view/%s/", host, id), true
}

// Resolver determines a listing's pay range: the inline salary line first,
// then the email text, then the live job page.
type Resolver struct {
	fetcher model.PageFetcher // nil disables the live lookup
	host    string
	logger  *slog.Logger
}

// NewResolver returns a resolver. fetcher may be nil.
func NewResolver(fetcher model.PageFetcher, host string, logger *slog.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, host: host, logger: logger}
}

// Resolve never fails; it returns model.NotSpecified when nothing is found.
func (r *Resolver) Resolve(ctx context.Context, job model.Job, body string) string {
	if job.InlineSalary != "" {
		return job.InlineSalary
	}

	if comp := Extract(htmltext.PlainView(body)); comp != model.NotSpecified {
		return comp
	}

	if r.fetcher == nil {
		return model.NotSpecified
	}
	url, ok := CanonicalURL(job.URL, r.host)
	if !ok {
		return model.NotSpecified
	}

	r.logger.Debug("fetching job page for salary", "company", job.Company, "url", url)
	html, err := r.fetcher.FetchPage(ctx, url)
	if err != nil {
		r.logger.Warn("could not fetch salary from job page", "url", url, "error", err)
		return model.NotSpecified
	}
	if comp, ok := FromPage(html); ok {
		r.logger.Debug("found salary on job page", "company", job.Company, "salary", comp)
		return comp
	}
	return model.NotSpecified
}
