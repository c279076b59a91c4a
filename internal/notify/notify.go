// Package notify sends short text messages to clients.
package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/config"
)

var ErrNoRecipient = errors.New("recipient phone missing")

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Twilio delivers SMS, or WhatsApp when the number is prefixed with
// "whatsapp:".
type Twilio struct {
	api  messageAPI
	from string
}

func NewTwilio(cfg config.TwilioConfig) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Twilio{api: client.Api, from: cfg.From}
}

func (t *Twilio) Send(_ context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}

	from := t.from
	if strings.HasPrefix(to, "whatsapp:") && !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(E164(to))
	params.SetFrom(from)
	params.SetBody(body)

	_, err := t.api.CreateMessage(params)
	return err
}

// E164 adds the Brazilian country code to bare national numbers.
func E164(phone string) string {
	if strings.HasPrefix(phone, "+") || strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		return "+" + digits
	}
	return "+55" + digits
}

// Log writes messages to the application log instead of sending them.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Send(_ context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	l.log.Info("notification", zap.String("to", to), zap.String("body", body))
	return nil
}

// New returns the Twilio sender when credentials are set.
func New(cfg config.TwilioConfig, log *zap.Logger) Sender {
	if cfg.Enabled() {
		return NewTwilio(cfg)
	}
	return NewLog(log)
}
