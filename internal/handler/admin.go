package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/session"
)

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	orders, err := h.svc.Admin.ListOrders(ctx, auth.FromContext(ctx))
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "admin_orders", "Administrar Pedidos", orders)
	return nil
}

// adminSetStatus ignores unknown statuses, like the form it serves.
func (h *Handler) adminSetStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "orderID")
	if err != nil {
		return err
	}

	ctx := r.Context()
	raw := r.FormValue("estado")
	st, err := h.svc.Admin.SetOrderStatus(ctx, auth.FromContext(ctx), id, raw)
	switch {
	case err == nil:
		h.sessions.SetFlash(w, session.Flash{
			Level:   session.LevelSuccess,
			Message: fmt.Sprintf("Estado del pedido #%d actualizado a %s.", id, st.Label()),
		})
	case errors.Is(err, order.ErrInvalidStatus):
		zctx.From(ctx).Warn("Ignoring invalid order status",
			zap.Int64("order_id", id),
			zap.String("status", raw),
		)
	default:
		return err
	}
	http.Redirect(w, r, "/admin/pedidos/", http.StatusSeeOther)
	return nil
}

func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	accounts, err := h.svc.Admin.ListUsers(ctx, auth.FromContext(ctx))
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "admin_users", "Administrar Usuarios", accounts)
	return nil
}

func (h *Handler) adminBooks(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	books, err := h.svc.Admin.ListBooks(ctx, auth.FromContext(ctx))
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "admin_books", "Administrar Productos", books)
	return nil
}

func (h *Handler) adminDeleteBook(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "bookID")
	if err != nil {
		return err
	}

	ctx := r.Context()
	err = h.svc.Admin.DeleteBook(ctx, auth.FromContext(ctx), id)
	switch {
	case err == nil:
		h.sessions.SetFlash(w, session.Flash{Level: session.LevelSuccess, Message: "Libro eliminado."})
	case errors.Is(err, catalog.ErrBookReferenced):
		h.sessions.SetFlash(w, session.Flash{
			Level:   session.LevelError,
			Message: "No se puede eliminar un libro que forma parte de pedidos.",
		})
	default:
		return err
	}
	http.Redirect(w, r, "/admin/productos/", http.StatusSeeOther)
	return nil
}
