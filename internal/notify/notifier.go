// Package notify delivers best-effort order summaries. Channels are
// independent: one failing never skips the other, and no failure ever
// reaches the customer-facing response.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kalijeogo/orderfunnel/internal/sheet"
)

// Notice is everything a channel needs to describe one fresh order.
type Notice struct {
	Row      sheet.Row
	RowNum   int
	SheetURL string
}

// Notifier is one delivery channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n Notice) error
}

// Dispatch invokes every channel sequentially. Failures are logged and
// swallowed; the order row is already committed by the time we get here.
func Dispatch(ctx context.Context, log *logrus.Logger, n Notice, channels ...Notifier) {
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			log.WithFields(logrus.Fields{
				"channel": ch.Name(),
				"row":     n.RowNum,
			}).WithError(err).Warn("notification failed")
			continue
		}
		log.WithFields(logrus.Fields{
			"channel": ch.Name(),
			"row":     n.RowNum,
		}).Debug("notification sent")
	}
}
