package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func tokenInfoServer(t *testing.T, status int, body map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") == "" {
			t.Error("id_token query parameter not forwarded")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, "{")
		first := true
		for k, v := range body {
			if !first {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, "%q:%q", k, v)
			first = false
		}
		fmt.Fprint(w, "}")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func validTokenInfo() map[string]string {
	return map[string]string{
		"iss":     "https://accounts.google.com",
		"aud":     "client-123",
		"sub":     "google-sub-1",
		"email":   "u@example.com",
		"name":    "Test User",
		"picture": "https://example.com/p.png",
		"exp":     strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}
}

func newTestVerifier(endpoint string) *GoogleVerifier {
	v := NewGoogleVerifier("client-123")
	v.endpoint = endpoint
	return v
}

func TestGoogleVerifySuccess(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusOK, validTokenInfo())
	v := newTestVerifier(srv.URL)

	ident, err := v.Verify(context.Background(), "a.b.c")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ident.Subject != "google-sub-1" || ident.Email != "u@example.com" {
		t.Fatalf("identity = %+v", ident)
	}
	if ident.Name != "Test User" || ident.Picture != "https://example.com/p.png" {
		t.Fatalf("identity = %+v", ident)
	}
}

func TestGoogleVerifyRejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		mutate func(map[string]string)
	}{
		{"non-200 status", http.StatusBadRequest, nil},
		{"audience mismatch", http.StatusOK, func(ti map[string]string) { ti["aud"] = "someone-else" }},
		{"bad issuer", http.StatusOK, func(ti map[string]string) { ti["iss"] = "evil.example.com" }},
		{"expired", http.StatusOK, func(ti map[string]string) {
			ti["exp"] = strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10)
		}},
		{"unparseable exp", http.StatusOK, func(ti map[string]string) { ti["exp"] = "soon" }},
		{"no email", http.StatusOK, func(ti map[string]string) { ti["email"] = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := validTokenInfo()
			if tt.mutate != nil {
				tt.mutate(ti)
			}
			srv := tokenInfoServer(t, tt.status, ti)
			v := newTestVerifier(srv.URL)

			if _, err := v.Verify(context.Background(), "a.b.c"); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestGoogleVerifyEmptyCredential(t *testing.T) {
	v := NewGoogleVerifier("client-123")
	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
