package echoapi

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/youwenshao/staffroom/core"
	"github.com/youwenshao/staffroom/core/user"
)

const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "session"

	contextIdentityKey = "identity"
)

// GuestPolicy is an operation's guest policy: whether a guest session may
// reach it. Guests are barred from anything that persists or retrieves
// stored plans.
type GuestPolicy int

const (
	AllowGuests GuestPolicy = iota
	DenyGuests
)

const guestNotice = "guests cannot save or view stored plans; please log in"

// Claims represents the session identity transmitted via a signed cookie.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	IsGuest  bool   `json:"is_guest,omitempty"`
}

func (c *Claims) identity() user.Identity {
	if c.IsGuest {
		return user.Guest()
	}
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return user.Identity{}
	}
	return user.Identity{ID: id, Username: c.Username, Role: c.Role}
}

type sessionAuth struct {
	appName    string
	secretKey  []byte
	expiration time.Duration
}

func newSessionAuth(conf *core.Config) *sessionAuth {
	return &sessionAuth{
		appName:    conf.AppName,
		secretKey:  []byte(conf.SecretKey),
		expiration: conf.Server.SessionExpirationDelta,
	}
}

// GetIdentityClaims builds session claims for idn.
func (a *sessionAuth) GetIdentityClaims(idn user.Identity) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.appName,
			Subject:   strconv.Itoa(idn.ID),
			ExpiresAt: now.Add(a.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: idn.Username,
		Role:     idn.Role,
		IsGuest:  idn.IsGuest,
	}
}

// GenerateToken generates a signed token string representing the Claims.
func (a *sessionAuth) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a *sessionAuth) parseToken(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return a.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized
	}
	return claims, nil
}

// login issues a fresh session cookie for idn.
func (a *sessionAuth) login(ctx echo.Context, idn user.Identity) error {
	token, err := a.GenerateToken(a.GetIdentityClaims(idn))
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(a.expiration),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// logout clears the session cookie unconditionally; idempotent.
func (a *sessionAuth) logout(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// contextIdentity resolves the request's session identity from the cookie,
// caching it on the echo.Context. An absent, expired or malformed cookie
// resolves to no identity.
func (a *sessionAuth) contextIdentity(ctx echo.Context) (user.Identity, bool) {
	if idn, ok := ctx.Get(contextIdentityKey).(user.Identity); ok {
		return idn, true
	}
	cookie, err := ctx.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return user.Identity{}, false
	}
	claims, err := a.parseToken(cookie.Value)
	if err != nil {
		return user.Identity{}, false
	}
	idn := claims.identity()
	if idn.IsZero() {
		return user.Identity{}, false
	}
	ctx.Set(contextIdentityKey, idn)
	return idn, true
}

// RequireSession gates an operation on a session identity: no identity
// redirects to the login page carrying the originally requested path so
// login can resume there; a guest identity on a guest-forbidden operation
// redirects to login with a notice. Decisions depend only on the identity
// and the operation's guest policy.
func (a *sessionAuth) RequireSession(policy GuestPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			idn, ok := a.contextIdentity(ctx)
			if !ok {
				return redirectToLogin(ctx, ctx.Request().URL.RequestURI(), "")
			}
			if idn.IsGuest && policy == DenyGuests {
				return redirectToLogin(ctx, "", guestNotice)
			}
			return next(ctx)
		}
	}
}

func redirectToLogin(ctx echo.Context, next, notice string) error {
	v := make(url.Values)
	if next != "" {
		v.Set("next", next)
	}
	if notice != "" {
		v.Set("notice", notice)
	}
	target := "/login"
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	return ctx.Redirect(http.StatusFound, target)
}

// safeNextPath keeps post-login redirects on this site. Browsers treat
// "/\host" like "//host", so a second slash or backslash is rejected too.
func safeNextPath(next string) string {
	if next == "" || next[0] != '/' {
		return "/dashboard"
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return "/dashboard"
	}
	return next
}
