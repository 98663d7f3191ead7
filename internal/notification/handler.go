package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/ec-storefront/internal/domain/checkout"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
)

// Sender delivers checkout confirmations.
type Sender interface {
	SendCheckoutConfirmation(ctx context.Context, e checkout.Completed) error
}

// Handler processes storefront events for sending notifications
type Handler struct {
	sender Sender
	logger zerolog.Logger
}

// NewHandler creates a new notification handler
func NewHandler(sender Sender) *Handler {
	return &Handler{
		sender: sender,
		logger: log.With().Str("component", "notifier").Logger(),
	}
}

// HandleEvent is a kafka.EventHandler. Event types other than
// CheckoutCompleted are ignored.
func (h *Handler) HandleEvent(ctx context.Context, env kafka.Envelope) error {
	if env.Type != checkout.EventCheckoutCompleted {
		h.logger.Debug().Str("event_type", env.Type).Msg("ignoring event")
		return nil
	}
	return h.handleCheckoutCompleted(ctx, env)
}

func (h *Handler) handleCheckoutCompleted(ctx context.Context, env kafka.Envelope) error {
	var e checkout.Completed
	if err := env.Decode(&e); err != nil {
		return fmt.Errorf("decode %s event %s: %w", env.Type, env.ID, err)
	}
	if e.Email == "" {
		h.logger.Warn().Str("confirmation_id", e.ConfirmationID).Msg("checkout event without email, skipping")
		return nil
	}

	h.logger.Info().
		Str("confirmation_id", e.ConfirmationID).
		Str("event_id", env.ID).
		Msg("processing CheckoutCompleted event")

	if err := h.sender.SendCheckoutConfirmation(ctx, e); err != nil {
		return fmt.Errorf("send confirmation %s: %w", e.ConfirmationID, err)
	}

	h.logger.Info().Str("confirmation_id", e.ConfirmationID).Msg("confirmation email sent")
	return nil
}
