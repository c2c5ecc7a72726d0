package echoapi

import (
	"bytes"
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
)

//go:embed assets
var assets embed.FS

func (s *server) home(ctx echo.Context) error {
	idn, _ := s.auth.contextIdentity(ctx)
	return ctx.JSON(http.StatusOK, echo.Map{
		"app":       s.opts.Conf.AppName,
		"build":     s.opts.Conf.Build,
		"username":  idn.Username,
		"role":      idn.Role,
		"is_guest":  idn.IsGuest,
		"signed_in": !idn.IsZero(),
	})
}

// termsOfService renders the embedded markdown terms page.
func (s *server) termsOfService(ctx echo.Context) error {
	src, err := assets.ReadFile("assets/TOS.md")
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = goldmark.Convert(src, &buf); err != nil {
		return err
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *server) diagramTool(ctx echo.Context) error {
	page, err := assets.ReadFile("assets/diagram_tool.html")
	if err != nil {
		return err
	}
	return ctx.HTMLBlob(http.StatusOK, page)
}
