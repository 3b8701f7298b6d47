package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medilink-client/internal/security"
	"medilink-client/internal/session"
	"medilink-client/internal/storage"
)

func loggedIn(t *testing.T) (*session.Provider, string) {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "role": "USER"}).SignedString([]byte("k"))
	require.NoError(t, err)
	p := session.NewProvider(storage.NewMemoryTokenStore(), security.NewIdentityResolver())
	_, err = p.Login(context.Background(), tok)
	require.NoError(t, err)
	return p, tok
}

type redirectCounter struct{ n atomic.Int32 }

func (r *redirectCounter) RedirectToLogin() { r.n.Add(1) }

func TestClient_AttachesHeaders(t *testing.T) {
	p, tok := loggedIn(t)

	r := mux.NewRouter()
	r.HandleFunc("/api/equipments/{id}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer "+tok, req.Header.Get("Authorization"))
		assert.NotEmpty(t, req.Header.Get("X-Request-Id"))
		assert.Equal(t, "7", mux.Vars(req)["id"])
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": "Ventilator"})
	}).Methods(http.MethodGet)
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", time.Second, p, nil)
	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, c.Get(context.Background(), "/equipments/7", nil, &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Ventilator", out.Name)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	p := session.NewProvider(storage.NewMemoryTokenStore(), security.NewIdentityResolver())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Empty(t, req.Header.Get("Authorization"))
		assert.Equal(t, "ventilator", req.URL.Query().Get("type"))
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, p, nil)
	var out []map[string]any
	require.NoError(t, c.Get(context.Background(), "/equipments/search", url.Values{"type": {"ventilator"}}, &out))
	assert.Empty(t, out)
}

func TestClient_ConcurrentUnauthorizedRedirectsOnce(t *testing.T) {
	p, _ := loggedIn(t)
	nav := &redirectCounter{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, p, nav)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Get(context.Background(), "/bookings", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), nav.n.Load())
	assert.Equal(t, session.Anonymous, p.State())
	assert.Empty(t, p.Token())
}

func TestClient_AnonymousUnauthorizedDoesNotRedirect(t *testing.T) {
	p := session.NewProvider(storage.NewMemoryTokenStore(), security.NewIdentityResolver())
	nav := &redirectCounter{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, p, nav).Get(context.Background(), "/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.NotErrorIs(t, err, ErrAuthorizationExpired)
	assert.Equal(t, int32(0), nav.n.Load())
}

func TestClient_ForbiddenEndsSession(t *testing.T) {
	p, _ := loggedIn(t)
	nav := &redirectCounter{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, p, nav).Delete(context.Background(), "/equipments/3")
	assert.ErrorIs(t, err, ErrAuthorizationExpired)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Equal(t, int32(1), nav.n.Load())
	assert.Equal(t, session.Anonymous, p.State())
}

func TestClient_CatalogueUnauthorizedEndsSession(t *testing.T) {
	for _, path := range []string{"/equipments", "/equipments/4", "/equipments/search"} {
		t.Run(path, func(t *testing.T) {
			p, _ := loggedIn(t)
			nav := &redirectCounter{}

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer srv.Close()

			err := NewClient(srv.URL, time.Second, p, nav).Get(context.Background(), path, nil, nil)
			assert.ErrorIs(t, err, ErrAuthorizationExpired)
			assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
			assert.Equal(t, int32(1), nav.n.Load())
			assert.Equal(t, session.Anonymous, p.State())
			assert.Empty(t, p.Token())
		})
	}
}

func TestClient_CredentialsUnauthorizedKeepsSession(t *testing.T) {
	p, _ := loggedIn(t)
	nav := &redirectCounter{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, p, nav).Post(context.Background(), "/auth/login", map[string]string{"email": "a"}, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthorizationExpired)

	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, "Invalid credentials", ne.Message)
	assert.Equal(t, int32(0), nav.n.Load())
	assert.Equal(t, session.Authenticated, p.State())
}

func TestClient_PassesThroughOtherFailures(t *testing.T) {
	p, _ := loggedIn(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "no such order", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, p, nil).Get(context.Background(), "/payments/9", nil, nil)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "no such order")
	assert.Equal(t, session.Authenticated, p.State())
}

func TestClient_Unreachable(t *testing.T) {
	p, _ := loggedIn(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	err := NewClient(addr, time.Second, p, nil).Get(context.Background(), "/equipments", nil, nil)
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, 0, ne.StatusCode)
	assert.False(t, IsNotFound(err))
}
