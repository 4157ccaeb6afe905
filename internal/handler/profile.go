package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
	"github.com/xenking/logos-bookstore/internal/session"
)

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	p, err := h.svc.Profiles.Ensure(ctx, auth.FromContext(ctx).UserID)
	if err != nil {
		return err
	}
	h.render(w, r, http.StatusOK, "profile", "Mi perfil", p)
	return nil
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	field := func(name string) string {
		return strings.TrimSpace(r.PostForm.Get(name))
	}

	ctx := r.Context()
	if _, err := h.svc.Profiles.Update(ctx, auth.FromContext(ctx).UserID, field("telefono"), profile.Shipping{
		Address:    field("direccion_envio"),
		City:       field("ciudad"),
		PostalCode: field("codigo_postal"),
	}); err != nil {
		return err
	}
	h.sessions.SetFlash(w, session.Flash{Level: session.LevelSuccess, Message: "Perfil actualizado correctamente."})
	http.Redirect(w, r, "/perfil/", http.StatusSeeOther)
	return nil
}
