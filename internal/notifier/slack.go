package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// maxSlackJobs caps how many top-tier listings are spelled out in the summary.
const maxSlackJobs = 10

// SlackNotifier posts a digest summary to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts one Block Kit message per digest.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify posts the summary. A failed post is returned to the caller.
func (s *SlackNotifier) Notify(ctx context.Context, d model.Digest) error {
	if d.Total == 0 {
		return nil
	}

	body, err := json.Marshal(buildPayload(d))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack summary sent", "jobs", d.Total)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style,omitempty"`
}

func buildPayload(d model.Digest) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🎯 " + d.Subject},
		},
	}

	var fields []slackText
	for _, g := range d.Tiers {
		fields = append(fields, slackText{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*%s*\n%d jobs", g.Label, len(g.Jobs)),
		})
	}
	if len(fields) > 0 {
		blocks = append(blocks, slackBlock{Type: "section", Fields: fields})
	}

	if len(d.Tiers) > 0 {
		top := d.Tiers[0]
		var lines []string
		for i, j := range top.Jobs {
			if i == maxSlackJobs {
				lines = append(lines, fmt.Sprintf("…and %d more", len(top.Jobs)-maxSlackJobs))
				break
			}
			lines = append(lines, fmt.Sprintf("• <%s|%s: %s> (%s)", j.URL, j.Company, j.Title, j.Compensation))
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: strings.Join(lines, "\n")},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}
