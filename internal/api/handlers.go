package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/query"
	"github.com/rs/zerolog"
)

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	sessions     *middleware.SessionManager
	csrf         *auth.CSRFService
	pages        *pages
	db           Pinger
}

func NewHandlers(
	cmdHandler *command.Handler,
	queryHandler *query.Handler,
	sessions *middleware.SessionManager,
	csrf *auth.CSRFService,
	db Pinger,
) (*Handlers, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		sessions:     sessions,
		csrf:         csrf,
		pages:        p,
		db:           db,
	}, nil
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProducts(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queryHandler.Categories(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.queryHandler.GetCartItems(r.Context(), cart.DefaultID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// UpdateCart applies {product_id, action, quantity?} and returns the cart
func (h *Handlers) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.ApplyCartItem
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondErr(w, r, err)
			return
		}
		respondJSON(w, http.StatusBadRequest, errorBody{
			Status:  "error",
			Message: "Invalid JSON body",
			Error:   "bad_request",
		})
		return
	}

	items, err := h.cmdHandler.ApplyCartItem(r.Context(), cart.DefaultID, cmd)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Health

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, errorBody{Status: "error", Message: "Resource not found", Error: "not_found"})
}

func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, errorBody{Status: "error", Message: "Method not allowed", Error: "method_not_allowed"})
}

// Helper functions

type errorBody struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondErr maps the apperr taxonomy onto HTTP. Persistence and upstream
// details are logged, never returned.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fieldErrs apperr.ValidationErrors
		fieldErr  *apperr.ValidationError
		notFound  *apperr.NotFoundError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &fieldErrs):
		respondJSON(w, http.StatusBadRequest, errorBody{
			Status: "error", Message: "Validation failed", Error: "validation_failed", Fields: fieldErrs.Fields(),
		})
	case errors.As(err, &fieldErr):
		respondJSON(w, http.StatusBadRequest, errorBody{
			Status: "error", Message: fieldErr.Message, Error: "validation_failed",
			Fields: map[string]string{fieldErr.Field: fieldErr.Message},
		})
	case errors.As(err, &notFound):
		respondJSON(w, http.StatusNotFound, errorBody{Status: "error", Message: notFound.Error(), Error: "not_found"})
	case errors.As(err, &tooLarge):
		respondJSON(w, http.StatusRequestEntityTooLarge, errorBody{Status: "error", Message: "Request body too large", Error: "too_large"})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondJSON(w, http.StatusInternalServerError, errorBody{
			Status: "error", Message: "Internal server error", Error: "An internal error occurred",
		})
	}
}
