package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/order"
)

var (
	// errBadRequest marks malformed form values.
	errBadRequest = errors.New("bad request")
	// errNoRoute marks path parameters that cannot name a resource.
	errNoRoute = errors.New("no such route")
)

// fail maps a domain error to a response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNoRoute),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		h.renderError(w, r, http.StatusNotFound)
	case errors.Is(err, errBadRequest):
		h.renderError(w, r, http.StatusBadRequest)
	case errors.Is(err, auth.ErrUnauthenticated):
		redirectToLogin(w, r)
	case errors.Is(err, auth.ErrForbidden):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.renderError(w, r, http.StatusInternalServerError)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound)
}

// pathID parses a positive integer URL parameter. Anything else is a 404,
// like an unmatched route.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(errNoRoute, "path parameter %s", name)
	}
	return id, nil
}
