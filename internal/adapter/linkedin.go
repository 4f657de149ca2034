package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure LinkedInPageFetcher implements model.PageFetcher.
var _ model.PageFetcher = (*LinkedInPageFetcher)(nil)

// LinkedInPageFetcher downloads public LinkedIn job pages anonymously.
// The request timeout is taken from the supplied client.
type LinkedInPageFetcher struct {
	client    *http.Client
	userAgent string
}

// NewLinkedInPageFetcher returns a fetcher that sends browser-like headers.
func NewLinkedInPageFetcher(client *http.Client, userAgent string) *LinkedInPageFetcher {
	return &LinkedInPageFetcher{client: client, userAgent: userAgent}
}

// FetchPage GETs url, following redirects, and returns the body as a string.
func (f *LinkedInPageFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	setBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}
