package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleDigest() model.Digest {
	return model.Digest{
		Subject:     "LinkedIn Job Opportunities - 3 Public Companies",
		HTML:        "<html>digest</html>",
		Total:       3,
		GeneratedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Tiers: []model.TierGroup{
			{Tier: 1, Label: "⭐ Tier 1: Top Companies", Class: "tier1", Jobs: []model.Job{
				{Company: "Google", Title: "SWE", Location: "Seattle, WA", URL: "https://www.linkedin.com/comm/jobs/view/1/", Compensation: "$198K-$343K / year"},
				{Company: "Stripe", Title: "Infra", Location: "Remote", URL: "https://www.linkedin.com/comm/jobs/view/2/", Compensation: model.NotSpecified},
			}},
			{Tier: 3, Label: "✨ Tier 3: Good Companies", Class: "tier3", Jobs: []model.Job{
				{Company: "Acme", Title: "Eng", Location: "Remote", URL: "https://www.linkedin.com/comm/jobs/view/3/", Compensation: model.NotSpecified},
			}},
		},
	}
}

// recordingMail captures Send calls.
type recordingMail struct {
	sent []string
	err  error
}

func (m *recordingMail) Search(context.Context, string, int) ([]model.Thread, error) { return nil, nil }
func (m *recordingMail) Get(context.Context, string) (model.Message, error)          { return model.Message{}, nil }
func (m *recordingMail) ModifyLabels(context.Context, string, []string, []string) error {
	return nil
}
func (m *recordingMail) Send(_ context.Context, to, subject, html string) error {
	m.sent = append(m.sent, to+"|"+subject+"|"+html)
	return m.err
}

func TestMailNotifier_SendsOnce(t *testing.T) {
	mail := &recordingMail{}
	n := NewMailNotifier(mail, "me@example.com", discardLogger())

	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Notify() = %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mail.sent))
	}
	want := "me@example.com|LinkedIn Job Opportunities - 3 Public Companies|<html>digest</html>"
	if mail.sent[0] != want {
		t.Errorf("sent = %q, want %q", mail.sent[0], want)
	}
}

func TestMailNotifier_PropagatesError(t *testing.T) {
	sendErr := errors.New("gog exited 1")
	n := NewMailNotifier(&recordingMail{err: sendErr}, "me@example.com", discardLogger())

	if err := n.Notify(context.Background(), sampleDigest()); !errors.Is(err, sendErr) {
		t.Errorf("Notify() = %v, want wrapped send error", err)
	}
}

func TestLogNotifier_LogsEveryJob(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := NewLogNotifier("me@example.com", logger)

	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	out := buf.String()
	if !strings.Contains(out, "would send digest") || !strings.Contains(out, "recipient=me@example.com") {
		t.Errorf("missing summary line: %s", out)
	}
	if got := strings.Count(out, "msg=\"digest job\""); got != 3 {
		t.Errorf("logged %d jobs, want 3", got)
	}
}

func TestLogNotifier_EmptyDigest(t *testing.T) {
	n := NewLogNotifier("me@example.com", discardLogger())
	if err := n.Notify(context.Background(), model.Digest{}); err != nil {
		t.Errorf("Notify(empty) = %v, want nil", err)
	}
}

func TestSlackNotifier_EmptyDigest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), model.Digest{}); err != nil {
		t.Errorf("Notify(empty) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_Summary(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4 (header, tiers, top jobs, divider)", len(payload.Blocks))
	}
	if got := payload.Blocks[0].Text.Text; got != "🎯 LinkedIn Job Opportunities - 3 Public Companies" {
		t.Errorf("header = %q", got)
	}
	if len(payload.Blocks[1].Fields) != 2 {
		t.Errorf("tier fields = %d, want 2", len(payload.Blocks[1].Fields))
	}
	top := payload.Blocks[2].Text.Text
	if !strings.Contains(top, "<https://www.linkedin.com/comm/jobs/view/1/|Google: SWE>") {
		t.Errorf("top jobs text = %q", top)
	}
	if strings.Contains(top, "Acme") {
		t.Error("tier 3 jobs should not be listed in the top section")
	}
}

func TestSlackNotifier_TruncatesLongTier(t *testing.T) {
	d := sampleDigest()
	var jobs []model.Job
	for i := 0; i < 15; i++ {
		jobs = append(jobs, model.Job{Company: "Google", Title: "SWE", URL: "https://www.linkedin.com/comm/jobs/view/1/"})
	}
	d.Tiers[0].Jobs = jobs

	p := buildPayload(d)
	text := p.Blocks[2].Text.Text
	if got := strings.Count(text, "• "); got != maxSlackJobs {
		t.Errorf("listed %d jobs, want %d", got, maxSlackJobs)
	}
	if !strings.Contains(text, "…and 5 more") {
		t.Errorf("missing overflow line: %q", text)
	}
}

func TestSlackNotifier_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleDigest()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
