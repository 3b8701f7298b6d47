package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medilink-client/internal/domain"
)

type fakeBackend struct {
	token    string
	rejected atomic.Bool
	booked   atomic.Int32
}

func newFakeBackend(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-1",
		"name":  "Ward Admin",
		"email": "ward@example.org",
		"role":  "HOSPITAL_ADMIN",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	fb := &fakeBackend{token: tok}

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	authorized := func(r *http.Request) bool {
		return !fb.rejected.Load() && r.Header.Get("Authorization") == "Bearer "+fb.token
	}
	ventilator := domain.Equipment{ID: 1, Name: "Ventilator", Type: "respiratory", Location: "Pune", Price: 1500, Availability: true, OwnerID: "u-1"}

	r := mux.NewRouter()
	r.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "ward@example.org" || creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": fb.token})
	}).Methods("POST")
	r.HandleFunc("/equipments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Equipment{
			ventilator,
			{ID: 2, Name: "Wheelchair", Type: "mobility", Location: "Mumbai", Price: 200, OwnerID: "u-2"},
		})
	}).Methods("GET")
	r.HandleFunc("/equipments/{id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != "1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Equipment not found"})
			return
		}
		writeJSON(w, http.StatusOK, ventilator)
	}).Methods("GET")
	r.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var b domain.Booking
		json.NewDecoder(r.Body).Decode(&b)
		b.ID = fmt.Sprintf("b-%d", fb.booked.Add(1))
		b.UserID = r.Header.Get("X-User-Id")
		writeJSON(w, http.StatusCreated, b)
	}).Methods("POST")
	r.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, []domain.Booking{
			{ID: "b-9", EquipmentID: 1, EquipmentName: "Ventilator", StartDate: "2024-03-01", EndDate: "2024-03-03", TotalPrice: 4500, Status: domain.BookingStatusPending},
		})
	}).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, fb
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf("api:\n  base_url: %s\nsession:\n  store: file\n  path: %s\nlog:\n  level: error\n", baseURL, filepath.Join(dir, "session"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCLI_SessionLifecycle(t *testing.T) {
	srv, fb := newFakeBackend(t)
	cfg := writeTestConfig(t, srv.URL)

	code, out, _ := runCLI(t, "", "--config", cfg, "whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Not signed in")

	code, _, errOut := runCLI(t, "wrong\n", "--config", cfg, "login", "--email", "ward@example.org")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: invalid email or password")

	code, out, _ = runCLI(t, "secret\n", "--config", cfg, "login", "--email", "ward@example.org")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Signed in as Ward Admin (HOSPITAL_ADMIN)")

	// the token survives into the next process
	code, out, _ = runCLI(t, "", "--config", cfg, "whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "ward@example.org")

	code, out, _ = runCLI(t, "", "--config", cfg, "bookings", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "b-9")
	assert.Contains(t, out, "4500.00")

	// backend stops accepting the token
	fb.rejected.Store(true)
	code, out, errOut = runCLI(t, "", "--config", cfg, "bookings", "list")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Run 'medilink login'")
	assert.NotContains(t, errOut, "Error:")

	code, out, _ = runCLI(t, "", "--config", cfg, "whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Not signed in")
}

func TestCLI_EquipmentAndBooking(t *testing.T) {
	srv, fb := newFakeBackend(t)
	cfg := writeTestConfig(t, srv.URL)

	code, out, _ := runCLI(t, "", "--config", cfg, "equipment", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Ventilator")
	assert.Contains(t, out, "Wheelchair")
	assert.Contains(t, out, "1500.00")

	code, _, errOut := runCLI(t, "", "--config", cfg, "equipment", "get", "7")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, errOut, "Equipment not found")

	code, _, errOut = runCLI(t, "", "--config", cfg, "equipment", "get", "abc")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `invalid equipment id "abc"`)

	// booking needs a session
	code, _, errOut = runCLI(t, "", "--config", cfg, "book", "1", "--from", "2024-03-01", "--to", "2024-03-03")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
	assert.Equal(t, int32(0), fb.booked.Load())

	code, _, _ = runCLI(t, "secret\n", "--config", cfg, "login", "--email", "ward@example.org")
	require.Equal(t, 0, code)

	code, _, errOut = runCLI(t, "", "--config", cfg, "book", "1", "--from", "2024-03-05", "--to", "2024-03-01")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
	assert.Equal(t, int32(0), fb.booked.Load())

	code, out, _ = runCLI(t, "", "--config", cfg, "book", "1", "--from", "2024-03-01", "--to", "2024-03-03")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Booked Ventilator from 2024-03-01 to 2024-03-03 (3 days, total 4500.00)")
	assert.Contains(t, out, "b-1")
	assert.Equal(t, int32(1), fb.booked.Load())
}

func TestCLI_BadConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: failed to read config file")
}

func TestCLI_Watch(t *testing.T) {
	srv, _ := newFakeBackend(t)
	cfg := writeTestConfig(t, srv.URL)

	code, out, _ := runCLI(t, "", "--config", cfg, "watch", "--run-once", "refresh-inventory")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Ventilator")

	code, _, errOut := runCLI(t, "", "--config", cfg, "watch")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no jobs scheduled")

	code, _, errOut = runCLI(t, "", "--config", cfg, "watch", "--run-once", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown job "nope"`)
}

func TestApp_ReadSecretKeepsWhitespace(t *testing.T) {
	var errOut bytes.Buffer
	a := &app{in: strings.NewReader("  nurse@example.com \r\n pa ss \r\nlast"), errOut: &errOut}

	email, err := a.readLine()
	require.NoError(t, err)
	assert.Equal(t, "nurse@example.com", email)

	password, err := a.readSecret("Password: ")
	require.NoError(t, err)
	assert.Equal(t, " pa ss ", password)
	assert.Equal(t, "Password: ", errOut.String())

	// final line without a terminator
	password, err = a.readSecret("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "last", password)

	_, err = a.readSecret("Password: ")
	assert.Error(t, err)
}
