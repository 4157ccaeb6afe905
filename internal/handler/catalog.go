package handler

import (
	"net/http"
	"strconv"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/session"
)

func (h *Handler) home(w http.ResponseWriter, r *http.Request) error {
	home, err := h.svc.Catalog.Home(r.Context())
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "home", "Inicio", home)
	return nil
}

type shopPage struct {
	Books      []catalog.Book
	Categories []catalog.Category
	Query      string
	CategoryID int64
}

func (h *Handler) shop(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	data := shopPage{Query: q.Get("q")}
	// A malformed category filter is ignored rather than rejected.
	if id, err := strconv.ParseInt(q.Get("categoria"), 10, 64); err == nil && id > 0 {
		data.CategoryID = id
	}

	ctx := r.Context()
	books, err := h.svc.Catalog.Search(ctx, data.Query, data.CategoryID)
	if err != nil {
		return err
	}
	cats, err := h.svc.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	data.Books, data.Categories = books, cats

	h.render(w, r, http.StatusOK, "shop", "Tienda", data)
	return nil
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "bookID")
	if err != nil {
		return err
	}
	b, err := h.svc.Catalog.Book(r.Context(), id)
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "book", b.Title, b)
	return nil
}

func (h *Handler) about(w http.ResponseWriter, r *http.Request) error {
	h.render(w, r, http.StatusOK, "about", "Sobre nosotros", nil)
	return nil
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) error {
	h.render(w, r, http.StatusOK, "contact", "Contacto", nil)
	return nil
}

// contactSubmit acknowledges the message. Messages are not delivered anywhere.
func (h *Handler) contactSubmit(w http.ResponseWriter, r *http.Request) error {
	h.sessions.SetFlash(w, session.Flash{
		Level:   session.LevelSuccess,
		Message: "¡Mensaje enviado! Te contactaremos pronto.",
	})
	http.Redirect(w, r, "/contacto/", http.StatusSeeOther)
	return nil
}
