package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/checkout"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFiles embed.FS

const (
	msgCartEmpty   = "Your cart is empty!"
	msgOrderPlaced = "Your order has been placed successfully!"
	msgOrderFailed = "An error occurred while processing your order. Please try again."
	flashWarning   = "warning"
	flashSuccess   = "success"
	flashDanger    = "danger"
)

// formField feeds the "field" template
type formField struct {
	Label string
	Type  string
	Name  string
	Value string
	Error string
}

var templateFuncs = template.FuncMap{
	"prev": func(page int) int { return page - 1 },
	"next": func(page int) int { return page + 1 },
	"field": func(label, typ, name, value string, errs map[string]string) formField {
		return formField{Label: label, Type: typ, Name: name, Value: value, Error: errs[name]}
	},
}

type pages struct {
	catalog  *template.Template
	cart     *template.Template
	checkout *template.Template
}

func loadPages() (*pages, error) {
	parse := func(name string) (*template.Template, error) {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFiles, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return t, nil
	}
	var (
		p   pages
		err error
	)
	if p.catalog, err = parse("catalog.html"); err != nil {
		return nil, err
	}
	if p.cart, err = parse("cart.html"); err != nil {
		return nil, err
	}
	if p.checkout, err = parse("checkout.html"); err != nil {
		return nil, err
	}
	return &p, nil
}

// pageData is shared by every template
type pageData struct {
	Title     string
	CSRFToken string
	CartCount int
	Flashes   []middleware.Flash

	Catalog  *readmodel.CatalogPage
	Cart     *readmodel.CartReadModel
	Checkout *readmodel.CheckoutReadModel
	Form     checkout.Form
	Errors   map[string]string
}

func (h *Handlers) newPageData(w http.ResponseWriter, r *http.Request, title string) (*pageData, error) {
	token, err := middleware.CSRFToken(h.csrf, r)
	if err != nil {
		return nil, err
	}
	count, err := h.queryHandler.CartCount(r.Context(), cart.DefaultID)
	if err != nil {
		return nil, err
	}
	return &pageData{
		Title:     title,
		CSRFToken: token,
		CartCount: count,
		Flashes:   h.sessions.Flashes(w, r),
		Errors:    map[string]string{},
	}, nil
}

// render buffers the page so a template failure can still produce a 500
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, t *template.Template, status int, data *pageData) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		respondErr(w, r, fmt.Errorf("render: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handlers) flashAndRedirect(w http.ResponseWriter, r *http.Request, category, message, to string) {
	if err := h.sessions.AddFlash(w, r, category, message); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to store flash")
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// Index renders the catalog grid with ?category= and ?page=
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	catalog, err := h.queryHandler.Catalog(r.Context(), r.URL.Query().Get("category"), page)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data, err := h.newPageData(w, r, "Products")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data.Catalog = catalog
	h.render(w, r, h.pages.catalog, http.StatusOK, data)
}

func (h *Handlers) CartPage(w http.ResponseWriter, r *http.Request) {
	c, err := h.queryHandler.GetCart(r.Context(), cart.DefaultID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data, err := h.newPageData(w, r, "Shopping Cart")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data.Cart = c
	h.render(w, r, h.pages.cart, http.StatusOK, data)
}

func (h *Handlers) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.PrepareCheckout(r.Context(), cart.DefaultID)
	if errors.Is(err, checkout.ErrEmptyCart) {
		h.flashAndRedirect(w, r, flashWarning, msgCartEmpty, "/cart")
		return
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data, err := h.newPageData(w, r, "Checkout")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data.Checkout = view
	data.Form = checkout.Form{PaymentMethod: checkout.PaymentCreditCard}
	h.render(w, r, h.pages.checkout, http.StatusOK, data)
}

func (h *Handlers) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondErr(w, r, err)
		return
	}
	form := formFromRequest(r)

	conf, view, err := h.cmdHandler.SubmitCheckout(r.Context(), cart.DefaultID, command.SubmitCheckout{Form: form})
	var fieldErrs apperr.ValidationErrors
	switch {
	case err == nil:
		zerolog.Ctx(r.Context()).Info().Str("confirmation_id", conf.ID).Msg("order placed")
		h.flashAndRedirect(w, r, flashSuccess, msgOrderPlaced, "/")
	case errors.Is(err, checkout.ErrEmptyCart):
		h.flashAndRedirect(w, r, flashWarning, msgCartEmpty, "/cart")
	case errors.As(err, &fieldErrs) && view != nil:
		data, derr := h.newPageData(w, r, "Checkout")
		if derr != nil {
			respondErr(w, r, derr)
			return
		}
		data.Checkout = view
		data.Form = form.Normalize().Redacted()
		data.Errors = fieldErrs.Fields()
		h.render(w, r, h.pages.checkout, http.StatusBadRequest, data)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("error processing order")
		h.flashAndRedirect(w, r, flashDanger, msgOrderFailed, "/checkout")
	}
}

func formFromRequest(r *http.Request) checkout.Form {
	v := r.PostForm
	return checkout.Form{
		FirstName:     v.Get("first_name"),
		LastName:      v.Get("last_name"),
		Email:         v.Get("email"),
		Phone:         v.Get("phone"),
		Address:       v.Get("address"),
		Address2:      v.Get("address2"),
		City:          v.Get("city"),
		State:         v.Get("state"),
		ZipCode:       v.Get("zip_code"),
		Country:       v.Get("country"),
		PaymentMethod: v.Get("payment_method"),
		CardNumber:    v.Get("card_number"),
		CardExpiry:    v.Get("card_expiry"),
		CardCVV:       v.Get("card_cvv"),
		CardName:      v.Get("card_name"),
	}
}
