package tests

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	echoapi "github.com/youwenshao/staffroom/apps/api/echo"
	"github.com/youwenshao/staffroom/core"
	"github.com/youwenshao/staffroom/core/plan"
	"github.com/youwenshao/staffroom/core/user"
	emailsvc "github.com/youwenshao/staffroom/services/email"
	logsvc "github.com/youwenshao/staffroom/services/logger"
	dummydb "github.com/youwenshao/staffroom/storage/database/dummy"
	"github.com/youwenshao/staffroom/storage/object"
)

const testPassword = "s3cretpwd!"

var (
	app      echoapi.Server
	usrRepo  user.Repository
	planRepo plan.Repository
	usrSvc   *user.Service
	planSvc  *plan.Service
)

func TestMain(m *testing.M) {
	conf := &core.Config{
		TestMode:  true,
		Env:       "test",
		AppName:   "staffroom",
		SecretKey: "test-secret-key",
		Server:    core.ServerConfig{SessionExpirationDelta: time.Hour},
	}

	// set up DB & repos
	db := dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)
	planRepo = dummydb.NewPlanRepository(db)

	// set up services
	appLogger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	mailSvc := emailsvc.NewConsoleService(conf)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	planSvc = plan.NewService(planRepo)
	uploader := object.NewUploader(nil, conf, appLogger)

	// set up server
	app = echoapi.NewServer(
		&echoapi.Options{
			Conf:           conf,
			Logger:         appLogger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			PlanSvc:        planSvc,
			Uploader:       uploader,
		},
	)

	os.Exit(m.Run())
}

func doForm(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func doGet(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

// sessionCookie extracts the session cookie set on rec, failing the test
// when none was set.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == echoapi.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// signup registers a fresh account through the API and returns its session
// cookie. Signup only covers self-service roles; admins are seeded via
// seedUser.
func signup(t *testing.T, username, role string) *http.Cookie {
	t.Helper()
	rec := doForm(http.MethodPost, "/signup", url.Values{
		"username":         {username},
		"password":         {testPassword},
		"password_confirm": {testPassword},
		"role":             {role},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("signup(%s): code = %d, body = %s", username, rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

// seedUser creates a user directly in the repo, bypassing signup's role
// restrictions, and returns a session cookie obtained via login.
func seedUser(t *testing.T, username, role string) *http.Cookie {
	t.Helper()
	usr := user.User{Username: username, Role: role, CreatedAt: time.Now().UTC()}
	if err := usr.SetPassword(testPassword); err != nil {
		t.Fatalf("seedUser(%s): %v", username, err)
	}
	if _, err := usrRepo.CreateUser(context.Background(), usr); err != nil {
		t.Fatalf("seedUser(%s): %v", username, err)
	}
	return login(t, username, testPassword)
}

func login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := doForm(http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login(%s): code = %d, body = %s", username, rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func guestSession(t *testing.T) *http.Cookie {
	t.Helper()
	rec := doForm(http.MethodPost, "/continue-as-guest", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("continue-as-guest: code = %d", rec.Code)
	}
	return sessionCookie(t, rec)
}

func checkRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, wantLocation string) {
	t.Helper()
	if rec.Code != wantCode {
		t.Errorf("code = %d; want %d", rec.Code, wantCode)
	}
	if loc := rec.Header().Get("Location"); loc != wantLocation {
		t.Errorf("Location = %q; want %q", loc, wantLocation)
	}
}
