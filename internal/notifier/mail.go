package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure MailNotifier implements model.Notifier.
var _ model.Notifier = (*MailNotifier)(nil)

// MailNotifier emails the digest to a single recipient.
type MailNotifier struct {
	client    model.MailClient
	recipient string
	logger    *slog.Logger
}

// NewMailNotifier returns a notifier that sends through client.
func NewMailNotifier(client model.MailClient, recipient string, logger *slog.Logger) *MailNotifier {
	return &MailNotifier{client: client, recipient: recipient, logger: logger}
}

// Notify sends exactly one email carrying the digest HTML.
func (n *MailNotifier) Notify(ctx context.Context, d model.Digest) error {
	if err := n.client.Send(ctx, n.recipient, d.Subject, d.HTML); err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}
	n.logger.Info("digest sent", "recipient", n.recipient, "jobs", d.Total)
	return nil
}
