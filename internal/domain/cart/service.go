package cart

import (
	"context"
	"fmt"
	"math"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: log.With().Str("component", "cart").Logger(),
	}
}

// Apply performs one add/remove/set against cartID inside a single
// transaction. An empty action means add.
func (s *Service) Apply(ctx context.Context, cartID ID, m Mutation) error {
	if m.Action == "" {
		m.Action = ActionAdd
	}
	if err := validateMutation(m); err != nil {
		return err
	}

	err := s.store.WithinTx(ctx, func(tx Tx) error {
		switch m.Action {
		case ActionAdd:
			return s.add(ctx, tx, cartID, m.ProductID)
		case ActionRemove:
			return s.remove(ctx, tx, cartID, m.ProductID)
		default:
			return s.set(ctx, tx, cartID, m.ProductID, *m.Quantity)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("cart_id", string(cartID)).
		Int("product_id", m.ProductID).
		Str("action", string(m.Action)).
		Msg("cart updated")
	return nil
}

// MaxQuantity is the largest quantity a cart line can hold.
const MaxQuantity = math.MaxInt32

func validateMutation(m Mutation) error {
	if !m.Action.Valid() {
		return apperr.Invalid("action", fmt.Sprintf("unknown action %q", m.Action))
	}
	if m.ProductID <= 0 {
		return apperr.Invalid("product_id", "product_id is required")
	}
	if m.Action == ActionSet && m.Quantity == nil {
		return apperr.Invalid("quantity", "quantity is required for set")
	}
	if m.Action == ActionSet && *m.Quantity > MaxQuantity {
		return apperr.Invalid("quantity", fmt.Sprintf("quantity must not exceed %d", MaxQuantity))
	}
	return nil
}

func (s *Service) add(ctx context.Context, tx Tx, cartID ID, productID int) error {
	exists, err := tx.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("product", productID)
	}
	_, err = tx.Increment(ctx, cartID, productID, 1)
	return err
}

func (s *Service) remove(ctx context.Context, tx Tx, cartID ID, productID int) error {
	item, err := tx.LockItem(ctx, cartID, productID)
	if err != nil || item == nil {
		return err
	}
	if item.Quantity > 1 {
		return tx.SetQuantity(ctx, item.ID, item.Quantity-1)
	}
	return tx.DeleteItem(ctx, item.ID)
}

func (s *Service) set(ctx context.Context, tx Tx, cartID ID, productID, quantity int) error {
	item, err := tx.LockItem(ctx, cartID, productID)
	if err != nil {
		return err
	}
	if item == nil {
		// Setting a quantity never creates a line.
		s.logger.Debug().
			Str("cart_id", string(cartID)).
			Int("product_id", productID).
			Int("quantity", quantity).
			Msg("set on absent item ignored")
		return nil
	}
	if quantity > 0 {
		return tx.SetQuantity(ctx, item.ID, quantity)
	}
	return tx.DeleteItem(ctx, item.ID)
}

// List returns the cart lines in insertion order.
func (s *Service) List(ctx context.Context, cartID ID) ([]Line, error) {
	return s.store.Lines(ctx, cartID)
}

// Count returns the total quantity across every line of the cart.
func (s *Service) Count(ctx context.Context, cartID ID) (int, error) {
	return s.store.CountItems(ctx, cartID)
}

// Clear removes every line of the cart.
func (s *Service) Clear(ctx context.Context, cartID ID) error {
	if err := s.store.Clear(ctx, cartID); err != nil {
		return err
	}
	s.logger.Info().Str("cart_id", string(cartID)).Msg("cart cleared")
	return nil
}
