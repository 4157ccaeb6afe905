package handler

import (
	"net/http"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
)

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	orders, err := h.svc.Orders.ListMine(ctx, auth.FromContext(ctx))
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "orders", "Mis pedidos", orders)
	return nil
}

func (h *Handler) orderDetail(w http.ResponseWriter, r *http.Request) error {
	return h.showOrder(w, r, "order", "Detalle del pedido")
}

func (h *Handler) confirmation(w http.ResponseWriter, r *http.Request) error {
	return h.showOrder(w, r, "confirmation", "¡Compra Exitosa!")
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request, name, title string) error {
	id, err := pathID(r, "orderID")
	if err != nil {
		return err
	}
	ctx := r.Context()
	o, err := h.svc.Orders.Get(ctx, auth.FromContext(ctx), id)
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, name, title, o)
	return nil
}
