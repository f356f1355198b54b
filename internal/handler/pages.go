package handler

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/Nishank-123/biller/internal/errs"
	"github.com/Nishank-123/biller/internal/server"
	"github.com/labstack/echo/v4"
)

// Paths of the HTML pages, relative to the working directory.
var (
	IndexPage   = "static/index.html"
	APIDocsPage = "static/openapi.html"
)

// PagesHandler serves the browser front end and the API reference. Both are
// static files; all data is fetched from the JSON routes.
type PagesHandler struct {
	Handler
}

func NewPagesHandler(s *server.Server) *PagesHandler {
	return &PagesHandler{Handler: NewHandler(s)}
}

func (h *PagesHandler) Index(c echo.Context) error {
	return h.servePage(c, IndexPage)
}

func (h *PagesHandler) APIDocs(c echo.Context) error {
	return h.servePage(c, APIDocsPage)
}

func (h *PagesHandler) servePage(c echo.Context, path string) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	err := c.File(path)
	if err == nil {
		return nil
	}

	var he *echo.HTTPError
	if (errors.As(err, &he) && he.Code == http.StatusNotFound) || errors.Is(err, fs.ErrNotExist) {
		h.server.Logger.Error().Str("page", path).Msg("page missing from static directory")
		return errs.NewNotFoundError("Page not found", false, nil)
	}
	return err
}
