package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedaai/veda"
	"github.com/vedaai/veda/auth"
)

// fakeServer mimics the auth endpoints with a single known account.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, code int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("token")
		if err != nil || c.Value != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"username": "asha"})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if req.Email != "asha@example.com" || req.Password != "pw" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "secret", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Email, Password string }
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username == "taken" {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *auth.Client {
	t.Helper()
	jar, err := auth.NewJar()
	require.NoError(t, err)
	return auth.New(auth.WithBaseURL(srv.URL), auth.WithHTTPClient(&http.Client{Jar: jar}))
}

func TestClient_LoginAuthorizeLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClient(t, fakeServer(t))

	_, err := c.Authorize(ctx)
	assert.ErrorIs(t, err, veda.ErrUnauthorized, "no cookie yet")

	msg, err := c.Login(ctx, veda.Credentials{Email: "asha@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", msg)

	id, err := c.Authorize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "asha", id.Username)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Authorize(ctx)
	assert.ErrorIs(t, err, veda.ErrUnauthorized, "cookie cleared by logout")
}

func TestClient_LoginRejected(t *testing.T) {
	t.Parallel()
	c := newClient(t, fakeServer(t))

	_, err := c.Login(context.Background(), veda.Credentials{Email: "asha@example.com", Password: "wrong"})
	var se *auth.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "Invalid credentials", se.Message)
	assert.NotErrorIs(t, err, veda.ErrUnauthorized)
}

func TestClient_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClient(t, fakeServer(t))

	msg, err := c.Register(ctx, veda.Registration{Username: "ravi", Email: "ravi@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "User registered", msg)

	_, err = c.Register(ctx, veda.Registration{Username: "taken", Email: "t@example.com", Password: "pw"})
	var se *auth.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Contains(t, err.Error(), "User already exists")
}

func TestClient_AuthorizeWithoutUsername(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	id, err := auth.New(auth.WithBaseURL(srv.URL)).Authorize(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id.Username)
	assert.Equal(t, veda.GuestName, id.DisplayName())
}

func TestClient_Forbidden(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := auth.New(auth.WithBaseURL(srv.URL + "/")).Authorize(context.Background())
	assert.ErrorIs(t, err, veda.ErrUnauthorized)
	var se *auth.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "forbidden", se.Message)
}

func TestClient_ConnectionError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := auth.New(auth.WithBaseURL(url)).Authorize(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, veda.ErrUnauthorized)
}
