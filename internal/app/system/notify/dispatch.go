// Package notify delivers church notifications over SMS, WhatsApp and email
// and records each attempt in the notification log.
package notify

import (
	"context"
	"fmt"

	"github.com/dalemusser/iglesiahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
)

// Log is the notification dispatch log.
type Log interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	MarkSent(ctx context.Context, id, providerMessageID string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

// Dispatcher routes messages to the channel's Sender.
type Dispatcher struct {
	senders map[string]Sender
	log     Log
	logger  *zap.Logger
}

// NewDispatcher wires the channel senders. Nil senders leave the channel
// unconfigured; sends on it are recorded as failed.
func NewDispatcher(sms, whatsapp, email Sender, log Log, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	senders := map[string]Sender{}
	if sms != nil {
		senders[models.ChannelSMS] = sms
	}
	if whatsapp != nil {
		senders[models.ChannelWhatsApp] = whatsapp
	}
	if email != nil {
		senders[models.ChannelEmail] = email
	}
	return &Dispatcher{senders: senders, log: log, logger: logger}
}

// ValidChannel reports whether c is a known channel.
func ValidChannel(c string) bool {
	return c == models.ChannelSMS || c == models.ChannelWhatsApp || c == models.ChannelEmail
}

// Destination picks the address a person is reached at on channel.
// WhatsApp falls back to the phone number.
func Destination(p models.Person, channel string) string {
	switch channel {
	case models.ChannelSMS:
		return p.Phone
	case models.ChannelWhatsApp:
		if p.WhatsApp != "" {
			return p.WhatsApp
		}
		return p.Phone
	case models.ChannelEmail:
		return p.Email
	}
	return ""
}

func senderFor(c models.Church, channel string) string {
	switch channel {
	case models.ChannelSMS:
		return c.SMSFrom
	case models.ChannelWhatsApp:
		return c.WhatsAppFrom
	case models.ChannelEmail:
		return c.EmailFrom
	}
	return ""
}

// Request is one fan-out of the same message to many persons.
type Request struct {
	Church     models.Church
	Channel    string
	Subject    string
	Body       string
	Recipients []models.Person
}

// Skipped names a recipient that had no address on the channel.
type Skipped struct {
	PersonID int64  `json:"person_id"`
	Reason   string `json:"reason"`
}

// Summary reports a fan-out.
type Summary struct {
	Sent          int                   `json:"sent"`
	Failed        int                   `json:"failed"`
	Skipped       []Skipped             `json:"skipped"`
	Notifications []models.Notification `json:"notifications"`
}

// Send delivers req sequentially. Per-recipient failures are recorded and do
// not stop the fan-out; only a failing log write aborts it.
func (d *Dispatcher) Send(ctx context.Context, req Request) (Summary, error) {
	sum := Summary{Skipped: []Skipped{}, Notifications: []models.Notification{}}
	if !ValidChannel(req.Channel) {
		return sum, fmt.Errorf("unknown channel %q", req.Channel)
	}
	body := req.Body
	if req.Channel != models.ChannelEmail {
		body = htmlsanitize.PlainText(body)
	}
	sender := d.senders[req.Channel]
	from := senderFor(req.Church, req.Channel)

	for _, p := range req.Recipients {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		dest := Destination(p, req.Channel)
		if dest == "" {
			sum.Skipped = append(sum.Skipped, Skipped{PersonID: p.ID, Reason: "no " + req.Channel + " address"})
			continue
		}

		n, err := d.log.Create(ctx, models.Notification{
			ChurchID:    req.Church.ID,
			Channel:     req.Channel,
			PersonID:    p.ID,
			Destination: dest,
			Subject:     req.Subject,
			Body:        body,
		})
		if err != nil {
			return sum, fmt.Errorf("record notification: %w", err)
		}

		var msgID string
		if sender == nil {
			err = fmt.Errorf("%w: %s", ErrNotConfigured, req.Channel)
		} else {
			msgID, err = sender.Send(ctx, Message{Channel: req.Channel, From: from, To: dest, Subject: req.Subject, Body: body})
		}
		if err != nil {
			d.logger.Warn("notification failed",
				zap.Int64("church_id", req.Church.ID),
				zap.Int64("person_id", p.ID),
				zap.String("channel", req.Channel),
				zap.Error(err))
			if merr := d.log.MarkFailed(ctx, n.ID, err.Error()); merr != nil {
				return sum, fmt.Errorf("record failure: %w", merr)
			}
			n.Status, n.Error = models.NotificationFailed, err.Error()
			sum.Failed++
		} else {
			if merr := d.log.MarkSent(ctx, n.ID, msgID); merr != nil {
				return sum, fmt.Errorf("record delivery: %w", merr)
			}
			n.Status, n.ProviderMessageID = models.NotificationSent, msgID
			sum.Sent++
		}
		sum.Notifications = append(sum.Notifications, n)
	}

	d.logger.Info("notification fan-out complete",
		zap.Int64("church_id", req.Church.ID),
		zap.String("channel", req.Channel),
		zap.Int("sent", sum.Sent),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", len(sum.Skipped)))
	return sum, nil
}
