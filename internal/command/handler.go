package command

import (
	"context"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/checkout"
	"github.com/example/ec-storefront/internal/readmodel"
)

type Handler struct {
	cartSvc     *cart.Service
	checkoutSvc *checkout.Service
}

func NewHandler(cartSvc *cart.Service, checkoutSvc *checkout.Service) *Handler {
	return &Handler{
		cartSvc:     cartSvc,
		checkoutSvc: checkoutSvc,
	}
}

// ApplyCartItem mutates the cart and returns its items afterwards
func (h *Handler) ApplyCartItem(ctx context.Context, cartID cart.ID, cmd ApplyCartItem) ([]readmodel.CartItemReadModel, error) {
	err := h.cartSvc.Apply(ctx, cartID, cart.Mutation{
		ProductID: cmd.ProductID,
		Action:    cart.Action(cmd.Action),
		Quantity:  cmd.Quantity,
	})
	if err != nil {
		return nil, err
	}

	lines, err := h.cartSvc.List(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return readmodel.NewCartItems(lines), nil
}

// SubmitCheckout validates the form against the cart. When validation fails
// the checkout read model is still returned for re-rendering.
func (h *Handler) SubmitCheckout(ctx context.Context, cartID cart.ID, cmd SubmitCheckout) (*checkout.Confirmation, *readmodel.CheckoutReadModel, error) {
	conf, view, err := h.checkoutSvc.Submit(ctx, cartID, cmd.Form)
	var rm *readmodel.CheckoutReadModel
	if view != nil {
		rm = readmodel.NewCheckout(view)
	}
	if err != nil {
		return nil, rm, err
	}
	return conf, rm, nil
}
