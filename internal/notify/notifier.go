package notify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cneltyn-s/shekel-streamer/internal/domain"
	"github.com/cneltyn-s/shekel-streamer/internal/logger"
)

// maxAttempts bounds delivery of one message: one try plus retries.
const maxAttempts = 5

// Transport delivers one chat message to a destination.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Notifier sends a formatted message per newly inserted transaction.
// Delivery is best effort: retried with fixed jittered spacing, and after
// exhaustion the failure is logged and dropped. A failed notification never
// fails the sync.
type Notifier struct {
	transport Transport
	loc       *time.Location

	newBackOff func() backoff.BackOff
}

// New creates a notifier. A nil transport disables delivery; Send then
// logs and returns without doing anything.
func New(transport Transport, loc *time.Location) *Notifier {
	return &Notifier{
		transport:  transport,
		loc:        loc,
		newBackOff: newNotifyBackOff,
	}
}

func newNotifyBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 30 * time.Second
	// Multiplier 1 keeps the spacing fixed; RandomizationFactor still
	// jitters each wait.
	bo.Multiplier = 1
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, maxAttempts-1)
}

// Send delivers the notification for t to its chat.
func (n *Notifier) Send(ctx context.Context, t domain.Transaction) {
	log := logger.FromContext(ctx)

	if n.transport == nil || t.ChatID == 0 {
		log.Debug().Str("description", t.Description).
			Msg("Notification transport not configured, skipping")
		return
	}

	text := formatMessage(t, n.loc)
	op := func() error {
		return n.transport.SendMessage(ctx, t.ChatID, text)
	}
	if err := backoff.Retry(op, backoff.WithContext(n.newBackOff(), ctx)); err != nil {
		log.Warn().Err(err).Int64("chat_id", t.ChatID).Str("description", t.Description).
			Msg("Notification failed after retries, dropping")
	}
}
