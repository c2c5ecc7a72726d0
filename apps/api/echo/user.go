package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/youwenshao/staffroom/core/user"
)

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Next     string `json:"-" form:"next"`
}

func (s *server) signupForm(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"roles": user.SignupRoles,
	})
}

func (s *server) signup(ctx echo.Context) error {
	nu := new(user.NewUser)
	if err := ctx.Bind(nu); err != nil {
		return err
	}
	if err := nu.Validate(); err != nil {
		return err
	}

	usr, err := s.opts.UserSvc.Create(ctx.Request().Context(), *nu)
	if err != nil {
		return err
	}
	if err = s.auth.login(ctx, usr.Identity()); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) loginForm(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"next":   ctx.QueryParam("next"),
		"notice": ctx.QueryParam("notice"),
	})
}

func (s *server) login(ctx echo.Context) error {
	req := new(LoginRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}

	// an unknown username and a bad password are indistinguishable
	usr, err := s.opts.UserSvc.GetByUsername(ctx.Request().Context(), req.Username)
	if err != nil {
		return errAuthenticationFailed
	}
	if err = usr.CheckPassword(req.Password); err != nil {
		return errAuthenticationFailed
	}

	if err = s.auth.login(ctx, usr.Identity()); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, safeNextPath(req.Next))
}

func (s *server) continueAsGuest(ctx echo.Context) error {
	if err := s.auth.login(ctx, user.Guest()); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *server) logout(ctx echo.Context) error {
	s.auth.logout(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/login")
}
