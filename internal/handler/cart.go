package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/checkout"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/session"
)

// banks are offered in the checkout form.
var banks = []string{"BBVA", "Banorte", "Santander", "Citibanamex", "HSBC", "Scotiabank"}

type cartPage struct {
	Cart  *cart.View
	Form  checkout.Form
	Banks []string
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	view, err := h.svc.Cart.View(ctx, auth.FromContext(ctx))
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "cart", "Carrito", cartPage{
		Cart:  view,
		Form:  h.prefilledForm(r),
		Banks: banks,
	})
	return nil
}

// prefilledForm fills the shipping fields from the customer's profile.
func (h *Handler) prefilledForm(r *http.Request) checkout.Form {
	ctx := r.Context()
	p, err := h.svc.Profiles.Ensure(ctx, auth.FromContext(ctx).UserID)
	if err != nil {
		return checkout.Form{}
	}
	return checkout.Form{Address: p.Address, City: p.City, PostalCode: p.PostalCode}
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	p := auth.FromContext(ctx)
	if !p.Authenticated() {
		h.sessions.SetFlash(w, session.Flash{
			Level:   session.LevelWarning,
			Message: "Por favor, inicia sesión para agregar productos a tu carrito.",
		})
		redirectToLogin(w, r)
		return nil
	}

	bookID, err := pathID(r, "bookID")
	if err != nil {
		return err
	}
	line, err := h.svc.Cart.AddLine(ctx, p, bookID)
	if err != nil {
		return err
	}
	h.sessions.SetFlash(w, session.Flash{
		Level:   session.LevelSuccess,
		Message: fmt.Sprintf(`"%s" fue agregado a tu carrito.`, line.Book.Title),
	})
	http.Redirect(w, r, "/carrito/", http.StatusSeeOther)
	return nil
}

func (h *Handler) updateCartLine(w http.ResponseWriter, r *http.Request) error {
	lineID, err := pathID(r, "lineID")
	if err != nil {
		return err
	}
	qty := 1
	if raw := r.FormValue("cantidad"); raw != "" {
		if qty, err = strconv.Atoi(raw); err != nil {
			return errors.Wrapf(errBadRequest, "cantidad %q", raw)
		}
	}

	ctx := r.Context()
	if err := h.svc.Cart.SetQuantity(ctx, auth.FromContext(ctx), lineID, qty); err != nil {
		return err
	}
	if qty > 0 {
		h.sessions.SetFlash(w, session.Flash{Level: session.LevelSuccess, Message: "Cantidad actualizada."})
	} else {
		h.sessions.SetFlash(w, session.Flash{Level: session.LevelInfo, Message: "Libro eliminado del carrito."})
	}
	http.Redirect(w, r, "/carrito/", http.StatusSeeOther)
	return nil
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) error {
	lineID, err := pathID(r, "lineID")
	if err != nil {
		return err
	}
	ctx := r.Context()
	if err := h.svc.Cart.RemoveLine(ctx, auth.FromContext(ctx), lineID); err != nil {
		return err
	}
	h.sessions.SetFlash(w, session.Flash{Level: session.LevelInfo, Message: "Libro eliminado del carrito."})
	http.Redirect(w, r, "/carrito/", http.StatusSeeOther)
	return nil
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	form := checkout.Form{
		Address:    r.PostForm.Get("direccion_envio"),
		City:       r.PostForm.Get("ciudad"),
		PostalCode: r.PostForm.Get("codigo_postal"),
		Bank:       r.PostForm.Get("banco_tarjeta"),
		CardName:   r.PostForm.Get("nombre_tarjeta"),
		CardNumber: r.PostForm.Get("numero_tarjeta"),
		Expiry:     r.PostForm.Get("fecha_exp"),
		CVV:        r.PostForm.Get("cvv"),
	}

	ctx := r.Context()
	id, err := h.svc.Orders.PlaceOrder(ctx, auth.FromContext(ctx), form)
	var verr *order.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, fmt.Sprintf("/confirmacion-compra/%d/", id), http.StatusSeeOther)
		return nil
	case errors.As(err, &verr):
		flashes := make([]session.Flash, 0, len(verr.Messages))
		for _, msg := range verr.Messages {
			flashes = append(flashes, session.Flash{Level: session.LevelError, Message: msg})
		}
		h.render(w, r, http.StatusOK, "cart", "Carrito", cartPage{
			Cart:  &verr.Cart,
			Form:  form.Normalize().WithoutCard(),
			Banks: banks,
		}, flashes...)
		return nil
	case errors.Is(err, order.ErrEmptyCart):
		h.sessions.SetFlash(w, session.Flash{Level: session.LevelWarning, Message: "Tu carrito está vacío."})
		http.Redirect(w, r, "/tienda/", http.StatusSeeOther)
		return nil
	default:
		return err
	}
}
