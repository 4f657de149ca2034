// Package pipeline runs one pass over the mailbox: recover the previous
// digest, parse new LinkedIn alerts, filter and merge them, then replace the
// old digest with a fresh one.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/amishk599/jobdigest/internal/dedup"
	"github.com/amishk599/jobdigest/internal/digest"
	"github.com/amishk599/jobdigest/internal/htmltext"
	"github.com/amishk599/jobdigest/internal/listing"
	"github.com/amishk599/jobdigest/internal/model"
	"github.com/amishk599/jobdigest/internal/ratelimit"
	"github.com/amishk599/jobdigest/internal/salary"
)

const (
	labelTrash  = "TRASH"
	labelUnread = "UNREAD"
)

// Deps are the collaborators a Runner drives.
type Deps struct {
	Mail     model.MailClient
	Filter   model.JobFilter
	Resolver *salary.Resolver
	Builder  *digest.Builder

	// Notifier delivers the digest: the mail notifier in mutating runs, the
	// log notifier in previews.
	Notifier model.Notifier
	// Extra notifiers get the digest after Notifier; their failures are logged.
	Extra []model.Notifier

	Store          model.RunStore
	LoadExclusions func() mapset.Set[string]
	Logger         *slog.Logger
}

// Options control one run.
type Options struct {
	Recipient string
	DryRun    bool

	SourceQuery   string
	SourceMax     int
	PreviousQuery string
	PreviousMax   int
	CleanupQuery  string
	CleanupMax    int
	CleanupPause  time.Duration

	Now func() time.Time
}

// Report summarises what a run did.
type Report struct {
	SourceEmails int
	Parsed       int
	Kept         int
	Previous     int
	Unique       int
	Deleted      int
	MarkedRead   int
	Sent         bool
	Digest       model.Digest

	// Listings holds every listing parsed from the source emails, before
	// filtering.
	Listings []model.Job
}

// Runner executes the pipeline.
type Runner struct {
	deps Deps
	opts Options
}

// NewRunner returns a runner. A nil Now uses time.Now.
func NewRunner(deps Deps, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.LoadExclusions == nil {
		deps.LoadExclusions = func() mapset.Set[string] { return mapset.NewSet[string]() }
	}
	return &Runner{deps: deps, opts: opts}
}

// DryRun reports whether the runner is in preview mode.
func (r *Runner) DryRun() bool { return r.opts.DryRun }

// Run performs one pass. Sub-operation failures are logged and degrade the
// result; the returned error is reserved for context cancellation.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	log := r.deps.Logger
	var rep Report

	excluded := r.deps.LoadExclusions()

	previous := r.recoverPrevious(ctx)
	rep.Previous = len(previous)
	if len(previous) > 0 {
		log.Info("recovered jobs from previous digest", "count", len(previous))
	}

	threads, err := r.deps.Mail.Search(ctx, r.opts.SourceQuery, r.opts.SourceMax)
	if err != nil {
		log.Error("searching for LinkedIn emails", "error", err)
		threads = nil
	}
	rep.SourceEmails = len(threads)
	if len(threads) == 0 && len(previous) == 0 {
		log.Info("no LinkedIn emails found")
		return rep, ctx.Err()
	}
	log.Info("found LinkedIn emails", "count", len(threads))

	var kept []model.Job
	var processed []string
	for _, th := range threads {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		msg, err := r.deps.Mail.Get(ctx, th.ID)
		if err != nil {
			log.Error("reading email", "thread_id", th.ID, "error", err)
			continue
		}

		log.Debug("job links in email", "thread_id", th.ID, "links", len(htmltext.JobLinks(msg.Body)))
		jobs := listing.Parse(msg.Body)
		if len(jobs) == 0 {
			log.Info("no jobs parsed from email", "thread_id", th.ID, "subject", th.Subject)
			continue
		}
		rep.Parsed += len(jobs)
		rep.Listings = append(rep.Listings, jobs...)

		for _, job := range jobs {
			if !r.deps.Filter.Match(job, msg.Body) {
				log.Debug("skipping non-public company", "company", job.Company)
				continue
			}
			if id, ok := model.JobID(job.URL); ok && excluded.Contains(id) {
				log.Debug("skipping excluded job", "job_id", id, "company", job.Company)
				continue
			}
			job.Compensation = r.deps.Resolver.Resolve(ctx, job, msg.Body)
			kept = append(kept, job)
		}
		processed = append(processed, th.ID)
	}
	rep.Kept = len(kept)

	unique := dedup.Merge(previous, kept, excluded)
	rep.Unique = len(unique)
	log.Info("merged jobs", "previous", len(previous), "new", len(kept), "unique", len(unique))

	if len(unique) > 0 {
		if err := r.deliver(ctx, unique, &rep); err != nil {
			return rep, err
		}
	}

	if !r.opts.DryRun {
		rep.MarkedRead = r.markRead(ctx, processed)
	} else if len(processed) > 0 {
		log.Info("preview: leaving emails unread", "count", len(processed))
	}

	return rep, nil
}

func (r *Runner) recoverPrevious(ctx context.Context) []model.Job {
	log := r.deps.Logger
	threads, err := r.deps.Mail.Search(ctx, r.opts.PreviousQuery, r.opts.PreviousMax)
	if err != nil {
		log.Error("searching for previous digest", "error", err)
		return nil
	}

	var jobs []model.Job
	for _, th := range threads {
		msg, err := r.deps.Mail.Get(ctx, th.ID)
		if err != nil {
			log.Error("reading previous digest", "thread_id", th.ID, "error", err)
			continue
		}
		jobs = append(jobs, digest.Recover(msg.Body)...)
	}
	return jobs
}

func (r *Runner) deliver(ctx context.Context, jobs []model.Job, rep *Report) error {
	log := r.deps.Logger

	if !r.opts.DryRun {
		rep.Deleted = r.deletePrevious(ctx)
		if err := ratelimit.NewPacer(r.opts.CleanupPause).Wait(ctx); err != nil {
			return err
		}
	}

	d, ok := r.deps.Builder.Build(jobs, r.opts.Now())
	if !ok {
		return nil
	}
	rep.Digest = d

	if err := r.deps.Notifier.Notify(ctx, d); err != nil {
		log.Error("delivering digest", "error", err)
	} else if !r.opts.DryRun {
		rep.Sent = true
		log.Info("sent digest", "recipient", r.opts.Recipient, "jobs", d.Total)
	}

	for _, n := range r.deps.Extra {
		if err := n.Notify(ctx, d); err != nil {
			log.Warn("extra notifier failed", "error", err)
		}
	}

	if rep.Sent && r.deps.Store != nil {
		if err := r.deps.Store.RecordDigest(ctx, runFromDigest(r.opts.Recipient, d)); err != nil {
			log.Warn("recording digest run", "error", err)
		}
	}
	return nil
}

// deletePrevious trashes every earlier digest in a single pass.
func (r *Runner) deletePrevious(ctx context.Context) int {
	log := r.deps.Logger
	threads, err := r.deps.Mail.Search(ctx, r.opts.CleanupQuery, r.opts.CleanupMax)
	if err != nil {
		log.Error("searching for old digests", "error", err)
		return 0
	}

	deleted := 0
	for _, th := range threads {
		if err := r.deps.Mail.ModifyLabels(ctx, th.ID, []string{labelTrash}, nil); err != nil {
			log.Error("deleting old digest", "thread_id", th.ID, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Info("deleted old digests", "count", deleted)
	}
	return deleted
}

func (r *Runner) markRead(ctx context.Context, ids []string) int {
	marked := 0
	for _, id := range ids {
		if err := r.deps.Mail.ModifyLabels(ctx, id, nil, []string{labelUnread}); err != nil {
			r.deps.Logger.Error("marking email read", "thread_id", id, "error", err)
			continue
		}
		marked++
	}
	if marked > 0 {
		r.deps.Logger.Info("marked emails as read", "count", marked)
	}
	return marked
}

func runFromDigest(recipient string, d model.Digest) model.Run {
	run := model.Run{
		Recipient: recipient,
		Subject:   d.Subject,
		Total:     d.Total,
		SentAt:    d.GeneratedAt,
	}
	for _, g := range d.Tiers {
		switch g.Tier {
		case 1:
			run.Tier1 = len(g.Jobs)
		case 2:
			run.Tier2 = len(g.Jobs)
		default:
			run.Tier3 += len(g.Jobs)
		}
	}
	return run
}
