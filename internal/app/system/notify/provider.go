package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when a channel has no backing transport.
var ErrNotConfigured = errors.New("notification channel not configured")

// Message is one outbound message.
type Message struct {
	Channel string
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a Message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, m Message) (string, error)
}

// ProviderConfig configures the SMS/WhatsApp messaging provider.
type ProviderConfig struct {
	BaseURL      string
	AccountSID   string
	AuthToken    string
	SMSFrom      string
	WhatsAppFrom string
	Timeout      time.Duration
	RetryCount   int
}

type providerResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type providerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ProviderClient talks to a Twilio-compatible messages API.
type ProviderClient struct {
	http   *resty.Client
	cfg    ProviderConfig
	logger *zap.Logger
}

// NewProviderClient builds the resty client with retries and basic auth.
func NewProviderClient(cfg ProviderConfig, logger *zap.Logger) *ProviderClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})
	return &ProviderClient{http: client, cfg: cfg, logger: logger}
}

// Send posts one SMS or WhatsApp message. A blank m.From falls back to the
// configured sender for the channel.
func (c *ProviderClient) Send(ctx context.Context, m Message) (string, error) {
	from, to := m.From, m.To
	switch m.Channel {
	case models.ChannelSMS:
		if from == "" {
			from = c.cfg.SMSFrom
		}
	case models.ChannelWhatsApp:
		if from == "" {
			from = c.cfg.WhatsAppFrom
		}
		from, to = "whatsapp:"+strings.TrimPrefix(from, "whatsapp:"), "whatsapp:"+strings.TrimPrefix(to, "whatsapp:")
	default:
		return "", fmt.Errorf("provider cannot send %q messages", m.Channel)
	}
	if strings.TrimPrefix(from, "whatsapp:") == "" {
		return "", fmt.Errorf("%w: no %s sender", ErrNotConfigured, m.Channel)
	}

	var out providerResponse
	var perr providerError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"From": from, "To": to, "Body": m.Body}).
		SetResult(&out).
		SetError(&perr).
		Post("/Accounts/" + url.PathEscape(c.cfg.AccountSID) + "/Messages.json")
	if err != nil {
		c.logger.Error("messaging provider call failed", zap.String("channel", m.Channel), zap.Error(err))
		return "", fmt.Errorf("messaging provider: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("messaging provider rejected message",
			zap.String("channel", m.Channel),
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("code", perr.Code),
			zap.String("msg", perr.Message))
		return "", fmt.Errorf("messaging provider: %s (status %d, code %d)", perr.Message, resp.StatusCode(), perr.Code)
	}
	if out.ErrorCode != nil {
		return "", fmt.Errorf("messaging provider: %s (code %d)", out.ErrorMessage, *out.ErrorCode)
	}
	return out.SID, nil
}
