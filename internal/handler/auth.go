package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/session"
)

const msgInvalidLogin = "Por favor, introduce un nombre de usuario y una contraseña correctos. Ambos campos distinguen mayúsculas y minúsculas."

// authenticate resolves the session cookie to a principal. The principal is
// reloaded from storage on every request so staff changes apply at once.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.sessions.Load(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		p, err := h.svc.Auth.Principal(ctx, userID)
		switch {
		case err == nil:
			ctx = auth.WithPrincipal(ctx, p)
			ctx = zctx.Base(ctx, zctx.From(ctx).With(zap.Int64("user_id", p.UserID)))
		case errors.Is(err, auth.ErrUserNotFound):
			h.sessions.Destroy(w)
		default:
			h.fail(w, r, errors.Wrap(err, "load principal"))
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).Authenticated() {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).IsStaff {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectToLogin sends the visitor to the login page, coming back to the
// current page afterwards. Form posts come back to the page that posted.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	back := r.URL.RequestURI()
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		back = refererPath(r)
	}
	target := "/login/"
	if back != "" {
		target += "?next=" + url.QueryEscape(back)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// refererPath returns the path of a same-host Referer, or "".
func refererPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host {
		return ""
	}
	return ref.RequestURI()
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

type loginPage struct {
	Username string
	Next     string
	Error    string
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) error {
	if auth.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	h.render(w, r, http.StatusOK, "login", "Iniciar sesión", loginPage{Next: r.URL.Query().Get("next")})
	return nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	if auth.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}

	username := r.PostForm.Get("username")
	next := r.FormValue("next")
	u, err := h.svc.Auth.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.render(w, r, http.StatusOK, "login", "Iniciar sesión", loginPage{
			Username: username,
			Next:     next,
			Error:    msgInvalidLogin,
		})
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.sessions.Issue(w, u.ID); err != nil {
		return err
	}
	h.sessions.SetFlash(w, session.Flash{
		Level:   session.LevelSuccess,
		Message: fmt.Sprintf("¡Bienvenido de nuevo, %s!", u.Username),
	})
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
	return nil
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) error {
	h.sessions.Destroy(w)
	h.sessions.SetFlash(w, session.Flash{Level: session.LevelInfo, Message: "Sesión cerrada exitosamente."})
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

type registerPage struct {
	Username string
	Email    string
	Errors   []string
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) error {
	if auth.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	h.render(w, r, http.StatusOK, "register", "Crear cuenta", registerPage{})
	return nil
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) error {
	if auth.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}

	req := auth.RegisterRequest{
		Username:        r.PostForm.Get("username"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password1"),
		PasswordConfirm: r.PostForm.Get("password2"),
	}
	u, err := h.svc.Auth.Register(r.Context(), req)
	var formErr *auth.FormError
	if errors.As(err, &formErr) {
		h.render(w, r, http.StatusOK, "register", "Crear cuenta", registerPage{
			Username: req.Username,
			Email:    req.Email,
			Errors:   formErr.Messages,
		})
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.sessions.Issue(w, u.ID); err != nil {
		return err
	}
	h.sessions.SetFlash(w, session.Flash{
		Level:   session.LevelSuccess,
		Message: fmt.Sprintf("¡Bienvenido, %s! Tu cuenta ha sido creada exitosamente.", u.Username),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}
