package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the digest contents to the logger instead of sending it.
// It backs preview runs.
type LogNotifier struct {
	recipient string
	logger    *slog.Logger
}

// NewLogNotifier returns a notifier that logs each listing via slog.
func NewLogNotifier(recipient string, logger *slog.Logger) *LogNotifier {
	return &LogNotifier{recipient: recipient, logger: logger}
}

// Notify logs the would-be email and each listing. Returns nil (stdout
// logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, d model.Digest) error {
	n.logger.Info("would send digest", "recipient", n.recipient, "subject", d.Subject, "jobs", d.Total)
	for _, g := range d.Tiers {
		for _, j := range g.Jobs {
			n.logger.Info("digest job",
				"tier", g.Tier,
				"company", j.Company,
				"title", j.Title,
				"location", j.Location,
				"compensation", j.Compensation,
				"url", j.URL,
			)
		}
	}
	return nil
}
