// Package server exposes render passes over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/preview"
	"github.com/goliatone/go-fhirview/pkg/render"
	"github.com/goliatone/go-fhirview/pkg/renderers/html"
	"github.com/goliatone/go-fhirview/pkg/theme"
	"github.com/goliatone/go-fhirview/pkg/workspace"
)

const (
	defaultBodyLimit = "4M"
	assetsPrefix     = "/assets/fhirview"
)

// Option customises the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBodyLimit caps request bodies, in echo's size notation ("4M").
func WithBodyLimit(limit string) Option {
	return func(s *Server) {
		if limit != "" {
			s.bodyLimit = limit
		}
	}
}

// Server wires a Previewer into an echo instance.
type Server struct {
	previewer *preview.Previewer
	logger    zerolog.Logger
	bodyLimit string
	echo      *echo.Echo
}

// New builds the HTTP surface around previewer.
func New(previewer *preview.Previewer, options ...Option) *Server {
	s := &Server{
		previewer: previewer,
		logger:    zerolog.Nop(),
		bodyLimit: defaultBodyLimit,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.previewer == nil {
		s.previewer = preview.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(recovery(s.logger))
	e.Use(echomw.RequestID())
	e.Use(requestLogger(s.logger))
	e.Use(echomw.BodyLimit(s.bodyLimit))

	e.GET("/healthz", s.health)
	e.GET("/templates", s.templates)
	e.POST("/templates", s.templates)
	e.POST("/preview", s.preview)
	e.GET(assetsPrefix+"/*", echo.WrapHandler(http.StripPrefix(assetsPrefix, http.FileServer(http.FS(html.AssetsFS())))))

	s.echo = e
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting preview server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type templatesRequest struct {
	Workspace string `json:"workspace" query:"workspace"`
}

type templatesResponse struct {
	Templates []string `json:"templates"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) templates(c echo.Context) error {
	var req templatesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	names, err := preview.Templates(req.Workspace)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, templatesResponse{Templates: names})
}

type previewRequest struct {
	Workspace  string `json:"workspace"`
	Template   string `json:"template"`
	Data       any    `json:"data"`
	Theme      string `json:"theme"`
	Renderer   string `json:"renderer"`
	Title      string `json:"title"`
	ShowErrors *bool  `json:"showErrors"`
}

// Headers describing the pass alongside the painted body.
const (
	HeaderWarnings   = "X-Fhirview-Warnings"
	HeaderCompatible = "X-Fhirview-Compatible"
)

func (s *Server) preview(c echo.Context) error {
	var body previewRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	out, err := s.previewer.Render(c.Request().Context(), preview.Request{
		Workspace:  body.Workspace,
		Template:   body.Template,
		Data:       body.Data,
		Theme:      body.Theme,
		Renderer:   body.Renderer,
		Title:      body.Title,
		ShowErrors: body.ShowErrors,
	})
	if err != nil {
		var notFound *render.NotFoundError
		if errors.As(err, &notFound) || errors.Is(err, theme.ErrUnknownTheme) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	res := out.Result
	headers := c.Response().Header()
	headers.Set(HeaderWarnings, warningCodes(res.Warnings))
	if res.Err == nil {
		if res.Compatible {
			headers.Set(HeaderCompatible, "true")
		} else {
			headers.Set(HeaderCompatible, "false")
		}
	}

	status := http.StatusOK
	if res.Err != nil {
		status = statusFor(res.Err)
	}
	return c.Blob(status, out.ContentType, out.Body)
}

func statusFor(err error) int {
	var notFound *workspace.TemplateNotFoundError
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func warningCodes(warnings []diagnostics.Warning) string {
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, string(w.Code))
	}
	return strings.Join(codes, ",")
}
