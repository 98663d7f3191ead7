package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"

	"github.com/example/ec-storefront/internal/domain/checkout"
)

// dialer is the subset of *mail.Client the service uses.
type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Service sends HTML mail through an SMTP relay.
type Service struct {
	client dialer
	from   string
	logger zerolog.Logger
}

// NewService creates a Service for host:port. TLS is used when the relay
// offers it; no authentication is attempted.
func NewService(host string, port int, from string) (*Service, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return newService(client, from), nil
}

func newService(client dialer, from string) *Service {
	return &Service{
		client: client,
		from:   from,
		logger: log.With().Str("component", "email").Logger(),
	}
}

// SendCheckoutConfirmation mails the order summary to the customer.
func (s *Service) SendCheckoutConfirmation(ctx context.Context, e checkout.Completed) error {
	subject := fmt.Sprintf("Order confirmation %s", shortID(e.ConfirmationID))
	return s.send(ctx, e.Email, subject, BuildConfirmationBody(e), BuildConfirmationText(e))
}

func (s *Service) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	msg.AddAlternativeString(mail.TypeTextPlain, textBody)

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("sending email")
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
