package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartReader lists cart lines.
type CartReader interface {
	List(ctx context.Context, cartID cart.ID) ([]cart.Line, error)
}

// Publisher delivers domain events. A nil Publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
}

// View is what the checkout page renders.
type View struct {
	Lines   []cart.Line
	Summary Summary
}

// Confirmation is returned for an accepted checkout.
type Confirmation struct {
	ID      string
	CartID  cart.ID
	Summary Summary
	At      time.Time
}

type Service struct {
	carts     CartReader
	validator *Validator
	publisher Publisher
	logger    zerolog.Logger
}

func NewService(carts CartReader, validator *Validator, publisher Publisher) *Service {
	return &Service{
		carts:     carts,
		validator: validator,
		publisher: publisher,
		logger:    log.With().Str("component", "checkout").Logger(),
	}
}

// Prepare loads the cart and its summary. It returns ErrEmptyCart when the
// cart has no lines.
func (s *Service) Prepare(ctx context.Context, cartID cart.ID) (*View, error) {
	lines, err := s.carts.List(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	return &View{Lines: lines, Summary: Summarize(lines)}, nil
}

// Submit validates form against the current cart. An empty cart is refused
// with ErrEmptyCart before any field is looked at. On rejection the view is
// still returned so the form can be rendered again.
func (s *Service) Submit(ctx context.Context, cartID cart.ID, form Form) (*Confirmation, *View, error) {
	view, err := s.Prepare(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.validator.Validate(form); err != nil {
		return nil, view, err
	}

	form = form.Normalize()
	conf := &Confirmation{
		ID:      uuid.New().String(),
		CartID:  cartID,
		Summary: view.Summary,
		At:      time.Now().UTC(),
	}

	s.logger.Info().
		Str("cart_id", string(cartID)).
		Str("confirmation_id", conf.ID).
		Str("payment_method", form.PaymentMethod).
		Str("total", conf.Summary.Total.StringFixed(2)).
		Msg("checkout accepted")

	s.publish(ctx, conf, view, form)
	return conf, view, nil
}

func (s *Service) publish(ctx context.Context, conf *Confirmation, view *View, form Form) {
	if s.publisher == nil {
		return
	}
	lines := make([]CompletedLine, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, CompletedLine{
			ProductID: l.ProductID,
			Title:     l.Product.Title,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
	}
	event := Completed{
		ConfirmationID: conf.ID,
		CartID:         string(conf.CartID),
		CustomerName:   form.CustomerName(),
		Email:          form.Email,
		City:           form.City,
		Country:        form.Country,
		PaymentMethod:  form.PaymentMethod,
		Lines:          lines,
		Subtotal:       conf.Summary.Subtotal,
		Tax:            conf.Summary.Tax,
		Total:          conf.Summary.Total,
		CompletedAt:    conf.At,
	}
	if err := s.publisher.Publish(ctx, string(conf.CartID), EventCheckoutCompleted, event); err != nil {
		s.logger.Warn().Err(err).Str("confirmation_id", conf.ID).Msg("failed to publish checkout event")
	}
}
