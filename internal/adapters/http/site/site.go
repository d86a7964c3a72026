// Package site serves the browser form page and handles its submit event.
package site

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/okian/formpost/internal/adapters/http/middleware"
	"github.com/okian/formpost/internal/submitter"
	"github.com/okian/formpost/pkg/logger"
)

// Error constants.
var (
	ErrRender = errors.New("form page render failed")
)

// Submitter handles one submit event.
type Submitter interface {
	HandleSubmit(ctx context.Context, ev submitter.Event, form submitter.Form, display submitter.StatusDisplay) submitter.Result
}

// Handler serves GET / (the page) and POST / (the submit event).
type Handler struct {
	sub    Submitter
	logger logger.Logger
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a page handler backed by sub.
func New(sub Submitter, opts ...Option) *Handler {
	h := &Handler{sub: sub}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("site")
	}
	return h
}

// Register attaches the page to mux at /.
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", middleware.Metrics("form", h))
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, newPageData(nil, nil))
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form := requestForm(r.PostForm)
	ev := &submitEvent{}
	status := &pageStatus{}
	ctx := submitter.ContextWithOrigin(r.Context(), requestOrigin(r))

	h.sub.HandleSubmit(ctx, ev, form, status)

	if !ev.prevented {
		// The browser's own behaviour: reload the form target.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, newPageData(form, status))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error(r.Context(), "render page", logger.Error(errors.Join(ErrRender, err)))
	}
}

// submitEvent records whether the handler took ownership of the submission.
type submitEvent struct {
	prevented bool
}

func (e *submitEvent) PreventDefault() { e.prevented = true }

// requestForm reads field values from the posted form body.
type requestForm url.Values

func (f requestForm) FieldValue(id string) string { return url.Values(f).Get(id) }

// pageStatus is the form-response element of the rendered page.
type pageStatus struct {
	Text  string
	Style submitter.Style
}

func (s *pageStatus) SetText(text string)            { s.Text = text }
func (s *pageStatus) SetStyle(style submitter.Style) { s.Style = style }

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
