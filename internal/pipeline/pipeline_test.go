package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/amishk599/jobdigest/internal/digest"
	"github.com/amishk599/jobdigest/internal/model"
	"github.com/amishk599/jobdigest/internal/notifier"
	"github.com/amishk599/jobdigest/internal/salary"
)

// --- Fakes ---

// recordingMail serves canned search results and bodies, and records every
// mutating call in order.
type recordingMail struct {
	searches map[string][]model.Thread
	bodies   map[string]string
	failIDs  map[string]bool

	searchErrs map[string]error
	sendErr    error

	calls []string
	sends []string
}

func (m *recordingMail) Search(_ context.Context, query string, _ int) ([]model.Thread, error) {
	m.calls = append(m.calls, "search:"+query)
	if err := m.searchErrs[query]; err != nil {
		return nil, err
	}
	return m.searches[query], nil
}

func (m *recordingMail) Get(_ context.Context, id string) (model.Message, error) {
	body, ok := m.bodies[id]
	if !ok {
		return model.Message{}, fmt.Errorf("no message %s", id)
	}
	return model.Message{ID: id, Body: body}, nil
}

func (m *recordingMail) ModifyLabels(_ context.Context, id string, add, remove []string) error {
	m.calls = append(m.calls, fmt.Sprintf("modify:%s:+%s-%s", id, strings.Join(add, ","), strings.Join(remove, ",")))
	if m.failIDs[id] {
		return errors.New("gog exited 1")
	}
	return nil
}

func (m *recordingMail) Send(_ context.Context, to, subject, _ string) error {
	m.calls = append(m.calls, "send")
	m.sends = append(m.sends, to+"|"+subject)
	return m.sendErr
}

func (m *recordingMail) mutations() []string {
	var out []string
	for _, c := range m.calls {
		if strings.HasPrefix(c, "modify:") || c == "send" {
			out = append(out, c)
		}
	}
	return out
}

// companyFilter keeps listings from the named companies.
type companyFilter map[string]bool

func (f companyFilter) Match(job model.Job, _ string) bool { return f[job.Company] }

// RecordingNotifier keeps every digest it was handed.
type RecordingNotifier struct {
	Digests []model.Digest
}

func (n *RecordingNotifier) Notify(_ context.Context, d model.Digest) error {
	n.Digests = append(n.Digests, d)
	return nil
}

// memStore records runs in memory.
type memStore struct {
	runs []model.Run
}

func (s *memStore) RecordDigest(_ context.Context, run model.Run) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *memStore) RecentRuns(context.Context, int) ([]model.Run, error) { return s.runs, nil }

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const alertBody = `Your job alert for software engineer
Senior Software Engineer
Google · Seattle, WA
$180K-$250K / year
View job: https://www.linkedin.com/comm/jobs/view/4012345678/?trackingId=abc

Backend Engineer
Stripe · New York, NY
View job: https://www.linkedin.com/comm/jobs/view/4099999999/

Staff Engineer
Tiny Startup · Remote
View job: https://www.linkedin.com/comm/jobs/view/4011111111/

Unsubscribe | Help
`

var fixedNow = time.Date(2026, 2, 3, 7, 45, 0, 0, time.UTC)

func previousDigestHTML(t *testing.T) string {
	t.Helper()
	d, ok := digest.Build([]model.Job{
		{Title: "Platform Engineer", Company: "Datadog", Location: "Remote", URL: "https://www.linkedin.com/comm/jobs/view/3000000001/", Compensation: model.NotSpecified},
		{Title: "Backend Engineer", Company: "Stripe", Location: "New York, NY", URL: "https://www.linkedin.com/comm/jobs/view/4099999999/?trackingId=old", Compensation: "$200K/year"},
		{Title: "Ads Engineer", Company: "Google", Location: "Remote", URL: "https://www.linkedin.com/comm/jobs/view/3000000002/", Compensation: model.NotSpecified},
	}, fixedNow.Add(-time.Hour))
	if !ok {
		t.Fatal("building previous digest")
	}
	return d.HTML
}

func newMail(t *testing.T) *recordingMail {
	return &recordingMail{
		searches: map[string][]model.Thread{
			"previous": {{ID: "d1", Subject: "LinkedIn Job Opportunities - 3 Public Companies"}},
			"source":   {{ID: "e1", Subject: "Software engineer jobs"}, {ID: "e2", Subject: "Your saved search"}},
			"cleanup":  {{ID: "d1"}, {ID: "d0"}},
		},
		bodies: map[string]string{
			"d1": previousDigestHTML(t),
			"e1": alertBody,
			"e2": "Nothing matched your search today.",
		},
	}
}

func options(dryRun bool) Options {
	return Options{
		Recipient:     "me@example.com",
		DryRun:        dryRun,
		SourceQuery:   "source",
		SourceMax:     50,
		PreviousQuery: "previous",
		PreviousMax:   10,
		CleanupQuery:  "cleanup",
		CleanupMax:    20,
		Now:           func() time.Time { return fixedNow },
	}
}

func excluding(ids ...string) func() mapset.Set[string] {
	return func() mapset.Set[string] { return mapset.NewSet(ids...) }
}

func allJobs(d model.Digest) []model.Job {
	var jobs []model.Job
	for _, g := range d.Tiers {
		jobs = append(jobs, g.Jobs...)
	}
	return jobs
}

// --- Tests ---

func TestRun_PreviewNeverMutates(t *testing.T) {
	mail := newMail(t)
	rec := &RecordingNotifier{}
	store := &memStore{}

	runner := NewRunner(Deps{
		Mail:           mail,
		Filter:         companyFilter{"Google": true, "Stripe": true},
		Resolver:       salary.NewResolver(nil, "", discardLogger()),
		Builder:        digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier:       rec,
		Store:          store,
		LoadExclusions: excluding(),
		Logger:         discardLogger(),
	}, options(true))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if m := mail.mutations(); len(m) != 0 {
		t.Errorf("preview made mutating calls: %v", m)
	}
	for _, c := range mail.calls {
		if c == "search:cleanup" {
			t.Error("preview should not search for old digests")
		}
	}
	if len(rec.Digests) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(rec.Digests))
	}
	if rep.Sent || rep.Deleted != 0 || rep.MarkedRead != 0 {
		t.Errorf("unexpected report: %+v", rep)
	}
	if len(store.runs) != 0 {
		t.Error("preview should not record history")
	}
	if len(rep.Listings) != 3 || rep.Listings[2].Company != "Tiny Startup" {
		t.Errorf("Listings = %+v", rep.Listings)
	}
	if rep.SourceEmails != 2 || rep.Parsed != 3 || rep.Kept != 2 || rep.Previous != 3 || rep.Unique != 4 {
		t.Errorf("report counts = %+v", rep)
	}
}

func TestRun_MutatingDeletesOnceThenSendsOnce(t *testing.T) {
	mail := newMail(t)
	store := &memStore{}

	runner := NewRunner(Deps{
		Mail:           mail,
		Filter:         companyFilter{"Google": true, "Stripe": true},
		Resolver:       salary.NewResolver(nil, "", discardLogger()),
		Builder:        digest.NewBuilder(func(string) int { return 2 }, ""),
		Notifier:       notifier.NewMailNotifier(mail, "me@example.com", discardLogger()),
		Store:          store,
		LoadExclusions: excluding(),
		Logger:         discardLogger(),
	}, options(false))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	want := []string{
		"modify:d1:+TRASH-",
		"modify:d0:+TRASH-",
		"send",
		"modify:e1:+-UNREAD",
	}
	got := mail.mutations()
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("mutations = %v, want %v", got, want)
	}
	if len(mail.sends) != 1 || mail.sends[0] != "me@example.com|LinkedIn Job Opportunities - 4 Public Companies" {
		t.Errorf("sends = %v", mail.sends)
	}
	if !rep.Sent || rep.Deleted != 2 || rep.MarkedRead != 1 {
		t.Errorf("unexpected report: %+v", rep)
	}
	if len(store.runs) != 1 || store.runs[0].Tier2 != 4 || store.runs[0].Total != 4 {
		t.Errorf("history = %+v", store.runs)
	}
}

func TestRun_MergeKeepsPreviousOrderAndFreshLinks(t *testing.T) {
	mail := newMail(t)
	rec := &RecordingNotifier{}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{"Google": true, "Stripe": true},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 3 }, ""),
		Notifier: rec,
		Logger:   discardLogger(),
	}, options(true))

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	// The previous digest is recovered in document order: tier 1 before tier 2.
	jobs := allJobs(rec.Digests[0])
	var urls []string
	for _, j := range jobs {
		urls = append(urls, j.URL)
	}
	want := []string{
		"https://www.linkedin.com/comm/jobs/view/4099999999/?trackingId=old",
		"https://www.linkedin.com/comm/jobs/view/3000000002/",
		"https://www.linkedin.com/comm/jobs/view/3000000001/",
		"https://www.linkedin.com/comm/jobs/view/4012345678/?trackingId=abc",
	}
	if strings.Join(urls, " ") != strings.Join(want, " ") {
		t.Errorf("urls = %v, want %v", urls, want)
	}
	if jobs[3].Compensation != "$180K-$250K / year" {
		t.Errorf("inline salary not used: %q", jobs[3].Compensation)
	}
}

func TestRun_ExcludedNeverSurvive(t *testing.T) {
	mail := newMail(t)
	rec := &RecordingNotifier{}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{"Google": true, "Stripe": true},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier: rec,
		// One excluded ID arrives fresh, one only in the previous digest.
		LoadExclusions: excluding("4012345678", "3000000001"),
		Logger:         discardLogger(),
	}, options(true))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if rep.Kept != 1 {
		t.Errorf("Kept = %d, want 1", rep.Kept)
	}
	for _, j := range allJobs(rec.Digests[0]) {
		id, _ := model.JobID(j.URL)
		if id == "4012345678" || id == "3000000001" {
			t.Errorf("excluded job %s survived", id)
		}
	}
	if rep.Unique != 2 {
		t.Errorf("Unique = %d, want 2", rep.Unique)
	}
}

func TestRun_NothingFound(t *testing.T) {
	mail := &recordingMail{}
	rec := &RecordingNotifier{}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier: rec,
		Logger:   discardLogger(),
	}, options(false))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if rep.SourceEmails != 0 || rep.Unique != 0 || rep.Sent || rep.Digest.Total != 0 {
		t.Errorf("expected empty report, got %+v", rep)
	}
	if len(rec.Digests) != 0 || len(mail.mutations()) != 0 {
		t.Error("nothing should be sent or modified")
	}
}

func TestRun_NoSurvivorsStillMarksRead(t *testing.T) {
	mail := newMail(t)
	delete(mail.searches, "previous")
	rec := &RecordingNotifier{}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier: rec,
		Logger:   discardLogger(),
	}, options(false))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(rec.Digests) != 0 {
		t.Error("empty result should not be delivered")
	}
	if got := mail.mutations(); len(got) != 1 || got[0] != "modify:e1:+-UNREAD" {
		t.Errorf("mutations = %v", got)
	}
	if rep.MarkedRead != 1 {
		t.Errorf("MarkedRead = %d, want 1", rep.MarkedRead)
	}
}

func TestRun_LabelFailureSkipsOnlyThatMessage(t *testing.T) {
	mail := newMail(t)
	mail.searches["source"] = []model.Thread{{ID: "e1"}, {ID: "e3"}}
	mail.bodies["e3"] = alertBody
	mail.failIDs = map[string]bool{"e1": true, "d0": true}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{"Google": true},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier: notifier.NewMailNotifier(mail, "me@example.com", discardLogger()),
		Logger:   discardLogger(),
	}, options(false))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if rep.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", rep.Deleted)
	}
	if rep.MarkedRead != 1 {
		t.Errorf("MarkedRead = %d, want 1", rep.MarkedRead)
	}
	if len(mail.sends) != 1 {
		t.Errorf("sends = %d, want 1", len(mail.sends))
	}
}

func TestRun_ExtraNotifiersGetDigest(t *testing.T) {
	mail := newMail(t)
	extra := &RecordingNotifier{}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{"Google": true},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier: notifier.NewLogNotifier("me@example.com", discardLogger()),
		Extra:    []model.Notifier{extra},
		Logger:   discardLogger(),
	}, options(true))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(extra.Digests) != 1 || extra.Digests[0].Subject != rep.Digest.Subject {
		t.Errorf("extra notifier got %+v", extra.Digests)
	}
}

func TestRun_FailedSearchIsEmpty(t *testing.T) {
	gogErr := errors.New("gog exited 1")
	tests := []struct {
		name         string
		failing      []string
		wantPrevious int
		wantEmails   int
		wantUnique   int
		wantSent     bool
	}{
		{"previous digest search fails", []string{"previous"}, 0, 2, 2, true},
		{"source search fails", []string{"source"}, 3, 0, 3, true},
		{"both searches fail", []string{"previous", "source"}, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mail := newMail(t)
			mail.searchErrs = map[string]error{}
			for _, q := range tt.failing {
				mail.searchErrs[q] = gogErr
			}

			runner := NewRunner(Deps{
				Mail:     mail,
				Filter:   companyFilter{"Google": true, "Stripe": true},
				Resolver: salary.NewResolver(nil, "", discardLogger()),
				Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
				Notifier: notifier.NewMailNotifier(mail, "me@example.com", discardLogger()),
				Logger:   discardLogger(),
			}, options(false))

			rep, err := runner.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() = %v, want nil", err)
			}
			if rep.Previous != tt.wantPrevious || rep.SourceEmails != tt.wantEmails || rep.Unique != tt.wantUnique {
				t.Errorf("report = %+v", rep)
			}
			if rep.Sent != tt.wantSent {
				t.Errorf("Sent = %v, want %v", rep.Sent, tt.wantSent)
			}
		})
	}
}

func TestRun_FailedGetLeavesEmailUnread(t *testing.T) {
	mail := newMail(t)
	mail.searches["source"] = []model.Thread{{ID: "e1"}, {ID: "missing"}}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{"Google": true},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier: notifier.NewMailNotifier(mail, "me@example.com", discardLogger()),
		Logger:   discardLogger(),
	}, options(false))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if rep.SourceEmails != 2 || rep.MarkedRead != 1 {
		t.Errorf("report = %+v", rep)
	}
	for _, c := range mail.mutations() {
		if strings.HasPrefix(c, "modify:missing:") {
			t.Errorf("unreadable email was modified: %s", c)
		}
	}
}

func TestRun_FailedSendStillMarksRead(t *testing.T) {
	mail := newMail(t)
	mail.sendErr = errors.New("gog exited 1")
	store := &memStore{}

	runner := NewRunner(Deps{
		Mail:     mail,
		Filter:   companyFilter{"Google": true},
		Resolver: salary.NewResolver(nil, "", discardLogger()),
		Builder:  digest.NewBuilder(func(string) int { return 1 }, ""),
		Notifier: notifier.NewMailNotifier(mail, "me@example.com", discardLogger()),
		Store:    store,
		Logger:   discardLogger(),
	}, options(false))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if rep.Sent {
		t.Error("Sent = true after a failed send")
	}
	if len(mail.sends) != 1 {
		t.Errorf("send attempts = %d, want 1", len(mail.sends))
	}
	if rep.MarkedRead != 1 {
		t.Errorf("MarkedRead = %d, want 1", rep.MarkedRead)
	}
	if len(store.runs) != 0 {
		t.Errorf("failed send recorded in history: %+v", store.runs)
	}
}
