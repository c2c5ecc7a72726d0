package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/youwenshao/staffroom/apps/api/echo"
	"github.com/youwenshao/staffroom/core/user"
)

func Test_signup(t *testing.T) {
	validForm := func(username string) url.Values {
		return url.Values{
			"username":         {username},
			"password":         {testPassword},
			"password_confirm": {testPassword},
			"role":             {user.RoleStudentTeacher},
		}
	}

	t.Run("ok", func(t *testing.T) {
		rec := doForm(http.MethodPost, "/signup", validForm("kwame"))
		checkRedirect(t, rec, http.StatusSeeOther, "/dashboard")
		sessionCookie(t, rec)

		usr, err := usrRepo.GetUserByUsername(context.Background(), "kwame")
		require.NoError(t, err)
		assert.Equal(t, user.RoleStudentTeacher, usr.Role)
		assert.NoError(t, usr.CheckPassword(testPassword))
	})

	t.Run("duplicate username", func(t *testing.T) {
		signup(t, "afua", user.RoleProfessor)

		rec := doForm(http.MethodPost, "/signup", validForm("afua"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "username")
	})

	t.Run("password mismatch", func(t *testing.T) {
		form := validForm("kofi")
		form.Set("password_confirm", "not-the-same")
		rec := doForm(http.MethodPost, "/signup", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
		assert.Contains(t, fields, "password_confirm")
	})

	t.Run("short password", func(t *testing.T) {
		form := validForm("yaw")
		form.Set("password", "short")
		form.Set("password_confirm", "short")
		rec := doForm(http.MethodPost, "/signup", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin role rejected", func(t *testing.T) {
		form := validForm("mallory")
		form.Set("role", user.RoleAdmin)
		rec := doForm(http.MethodPost, "/signup", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_login(t *testing.T) {
	signup(t, "ama", user.RoleStudentTeacher)

	t.Run("ok", func(t *testing.T) {
		rec := doForm(http.MethodPost, "/login", url.Values{
			"username": {"ama"},
			"password": {testPassword},
		})
		checkRedirect(t, rec, http.StatusSeeOther, "/dashboard")
		sessionCookie(t, rec)
	})

	t.Run("next path honored", func(t *testing.T) {
		rec := doForm(http.MethodPost, "/login", url.Values{
			"username": {"ama"},
			"password": {testPassword},
			"next":     {"/lesson/3"},
		})
		checkRedirect(t, rec, http.StatusSeeOther, "/lesson/3")
	})

	t.Run("offsite next discarded", func(t *testing.T) {
		rec := doForm(http.MethodPost, "/login", url.Values{
			"username": {"ama"},
			"password": {testPassword},
			"next":     {"//evil.example.com/"},
		})
		checkRedirect(t, rec, http.StatusSeeOther, "/dashboard")
	})

	// a bad password and an unknown username are the same failure
	t.Run("bad password", func(t *testing.T) {
		rec := doForm(http.MethodPost, "/login", url.Values{
			"username": {"ama"},
			"password": {"wrong-password"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid username or password")
	})
	t.Run("unknown username", func(t *testing.T) {
		rec := doForm(http.MethodPost, "/login", url.Values{
			"username": {"nobody"},
			"password": {testPassword},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid username or password")
	})
}

func Test_logout(t *testing.T) {
	cookie := signup(t, "abena", user.RoleStudentTeacher)

	rec := doGet("/logout", cookie)
	checkRedirect(t, rec, http.StatusSeeOther, "/login")

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == echoapi.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie not cleared")
}

func Test_continueAsGuest(t *testing.T) {
	rec := doForm(http.MethodPost, "/continue-as-guest", nil)
	checkRedirect(t, rec, http.StatusSeeOther, "/")
	cookie := sessionCookie(t, rec)

	// a guest session reaches the home page as a guest
	home := doGet("/", cookie)
	require.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), `"is_guest":true`)
}

func Test_loginForm(t *testing.T) {
	rec := doGet("/login?next=%2Fdashboard&notice=hello")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/dashboard", body["next"])
	assert.Equal(t, "hello", body["notice"])
}

func Test_signupForm(t *testing.T) {
	rec := doGet("/signup")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, role := range user.SignupRoles {
		assert.True(t, strings.Contains(rec.Body.String(), role))
	}
}
