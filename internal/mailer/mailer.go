// Package mailer sends notification e-mails through SendGrid, or writes them
// to the log when no API key is configured.
package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Message is a plain-text notification.
type Message struct {
	To      mail.Address
	Subject string
	Text    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a SendGrid mailer when key is set, else a console mailer.
func New(key, appName, from string, log *zap.Logger) Mailer {
	if key == "" {
		return NewConsole(appName, from, log)
	}
	return NewSendgrid(key, appName, from)
}

// Sendgrid posts messages to the SendGrid v3 API.
type Sendgrid struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgrid(key, appName, from string) *Sendgrid {
	return &Sendgrid{
		key:        key,
		from:       sgmail.NewEmail(appName, from),
		subjPrefix: "[" + appName + "] ",
	}
}

func (s *Sendgrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	return m
}

func (s *Sendgrid) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return errors.Wrap(err, "sending mail")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// Console logs messages instead of sending them.
type Console struct {
	from       mail.Address
	subjPrefix string
	log        *zap.Logger
}

func NewConsole(appName, from string, log *zap.Logger) *Console {
	return &Console{
		from:       mail.Address{Name: appName, Address: from},
		subjPrefix: "[" + appName + "] ",
		log:        log,
	}
}

func (c *Console) Send(_ context.Context, msg Message) error {
	c.log.Info("mail",
		zap.String("from", c.from.String()),
		zap.String("to", msg.To.String()),
		zap.String("subject", c.subjPrefix+msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
