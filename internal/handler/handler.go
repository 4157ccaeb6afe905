// Package handler serves the storefront's HTML pages.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/errors"

	"github.com/xenking/logos-bookstore/internal/domain/admin"
	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
	"github.com/xenking/logos-bookstore/internal/session"
	"github.com/xenking/logos-bookstore/pkg/httpmiddleware"
	"github.com/xenking/logos-bookstore/pkg/richtext"
)

// Services are the domain services the pages delegate to.
type Services struct {
	Catalog  *catalog.Service
	Cart     *cart.Service
	Orders   *order.Service
	Admin    *admin.Service
	Auth     *auth.Service
	Profiles *profile.Service
}

// Handler renders the storefront.
type Handler struct {
	svc      Services
	sessions *session.Manager
	pages    *renderer
}

// NewHandler parses the page templates and returns a Handler.
func NewHandler(svc Services, sessions *session.Manager, md *richtext.Renderer) (*Handler, error) {
	pages, err := newRenderer(md)
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	return &Handler{
		svc:      svc,
		sessions: sessions,
		pages:    pages,
	}, nil
}

// Routes returns the storefront router. Every path also matches with a
// trailing slash.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.StripSlashes,
		httpmiddleware.LogRequests(),
		httpmiddleware.Labeler(),
		h.authenticate,
	)
	r.NotFound(h.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.renderError(w, r, http.StatusMethodNotAllowed)
	})

	r.Get("/", h.handle(h.home))
	r.Get("/tienda", h.handle(h.shop))
	r.Get("/libro/{bookID}", h.handle(h.book))
	r.Get("/sobre-nosotros", h.handle(h.about))
	r.Get("/contacto", h.handle(h.contact))
	r.Post("/contacto", h.handle(h.contactSubmit))

	r.Get("/registro", h.handle(h.registerForm))
	r.Post("/registro", h.handle(h.register))
	r.Get("/login", h.handle(h.loginForm))
	r.Post("/login", h.handle(h.login))

	r.Post("/carrito/agregar/{bookID}", h.handle(h.addToCart))

	r.Group(func(r chi.Router) {
		r.Use(requireLogin)

		r.Post("/logout", h.handle(h.logout))
		r.Get("/perfil", h.handle(h.profile))
		r.Post("/perfil", h.handle(h.updateProfile))

		r.Get("/carrito", h.handle(h.cart))
		r.Post("/carrito/actualizar/{lineID}", h.handle(h.updateCartLine))
		r.Post("/carrito/eliminar/{lineID}", h.handle(h.removeCartLine))
		r.Get("/checkout", redirectTo("/carrito/"))
		r.Post("/checkout", h.handle(h.checkout))

		r.Get("/mis-pedidos", h.handle(h.myOrders))
		r.Get("/pedido/{orderID}", h.handle(h.orderDetail))
		r.Get("/confirmacion-compra/{orderID}", h.handle(h.confirmation))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireStaff)

		r.Get("/pedidos", h.handle(h.adminOrders))
		r.Post("/pedidos/cambiar-estado/{orderID}", h.handle(h.adminSetStatus))
		r.Get("/usuarios", h.handle(h.adminUsers))
		r.Get("/productos", h.handle(h.adminBooks))
		r.Post("/productos/eliminar/{bookID}", h.handle(h.adminDeleteBook))
	})

	return r
}

// handlerFunc is a page handler whose errors are mapped to responses by fail.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.fail(w, r, err)
		}
	}
}

func redirectTo(url string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}
