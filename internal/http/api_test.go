package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"homestock/internal/http/handlers"
	applog "homestock/internal/log"
	"homestock/internal/repos"
	"homestock/internal/services"
)

var now = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type api struct {
	t    *testing.T
	app  *fiber.App
	db   *sqlx.DB
	deps *handlers.Deps
}

// newAPI builds the full route table over a private in-memory database.
func newAPI(t *testing.T) *api {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler, BodyLimit: 1 << 20})
	app.Use(requestid.New())
	app.Use(applog.Timer())
	deps := handlers.NewDeps(db, services.FixedClock(now))
	handlers.Routes(app, deps)
	return &api{t: t, app: app, db: db, deps: deps}
}

// call sends body as JSON (when non-nil) with the given session cookie.
func (a *api) call(method, path, sid string, body any) (int, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

// user registers and logs in, returning the session id.
func (a *api) user(email string) string {
	a.t.Helper()
	status, body := a.call("POST", "/auth/register", "", map[string]any{
		"email": email, "name": "Test User", "password": "Passw0rd!",
	})
	require.Equal(a.t, http.StatusCreated, status, string(body))

	sid := "sid-" + email
	status, body = a.call("POST", "/auth/login", sid, map[string]any{"email": email, "password": "Passw0rd!"})
	require.Equal(a.t, http.StatusOK, status, string(body))
	return sid
}

func (a *api) home(sid string) int64 {
	a.t.Helper()
	status, body := a.call("POST", "/homes", sid, map[string]any{"name": "Flat"})
	require.Equal(a.t, http.StatusCreated, status, string(body))
	return decode[struct{ ID int64 }](a.t, body).ID
}

// product creates a category, subcategory and product in the household.
func (a *api) product(sid string, homeID int64, name string) int64 {
	a.t.Helper()
	status, body := a.call("POST", "/categories", sid, map[string]any{"homeId": homeID, "name": "Pantry"})
	require.Equal(a.t, http.StatusCreated, status, string(body))
	catID := decode[struct{ ID int64 }](a.t, body).ID

	status, body = a.call("POST", "/subcategories", sid, map[string]any{"categoryId": catID, "name": "Pasta"})
	require.Equal(a.t, http.StatusCreated, status, string(body))
	subID := decode[struct{ ID int64 }](a.t, body).ID

	status, body = a.call("POST", "/products", sid, map[string]any{
		"homeId": homeID, "subcategoryId": subID, "name": name, "picture": name + ".png",
	})
	require.Equal(a.t, http.StatusCreated, status, string(body))
	return decode[services.ProductView](a.t, body).ID
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}
