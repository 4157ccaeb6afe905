package handler

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/session"
	"github.com/xenking/logos-bookstore/pkg/richtext"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// page is the data every template receives.
type page struct {
	Title     string
	Principal auth.Principal
	CartCount int
	Flashes   []session.Flash
	Data      any
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer(md *richtext.Renderer) (*renderer, error) {
	funcs := template.FuncMap{
		"money":    formatMoney,
		"date":     formatDate,
		"markdown": md.Render,
		"statuses": order.Statuses,
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	r := &renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		t, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(templateFS, layoutFile, f)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", f)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return r, nil
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatDate(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

// render executes the named page inside the layout with the request's
// principal, cart badge and pending flash messages.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, extra ...session.Flash) {
	t, ok := h.pages.pages[name]
	if !ok {
		h.serverError(w, r, errors.Errorf("unknown page %q", name))
		return
	}

	ctx := r.Context()
	p := page{
		Title:     title,
		Principal: auth.FromContext(ctx),
		Flashes:   append(h.sessions.PopFlashes(w, r), extra...),
		Data:      data,
	}
	if n, err := h.svc.Cart.ItemCount(ctx, p.Principal); err != nil {
		zctx.From(ctx).Warn("Count cart items", zap.Error(err))
	} else {
		p.CartCount = n
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		h.serverError(w, r, errors.Wrapf(err, "execute %s", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int) {
	h.render(w, r, status, "error", http.StatusText(status), errorPage{
		Status:  status,
		Message: errorMessages[status],
	})
}

type errorPage struct {
	Status  int
	Message string
}

var errorMessages = map[int]string{
	http.StatusNotFound:            "La página que buscas no existe.",
	http.StatusBadRequest:          "La solicitud no es válida.",
	http.StatusMethodNotAllowed:    "Método no permitido.",
	http.StatusInternalServerError: "Ocurrió un error inesperado. Inténtalo de nuevo más tarde.",
}

// serverError logs err and writes a plain 500. It never renders templates so
// a broken template cannot recurse.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Render page", zap.Error(err))
	http.Error(w, errorMessages[http.StatusInternalServerError], http.StatusInternalServerError)
}
