package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type fakeVerifier struct {
	claims *Claims
	err    error
	seen   string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*Claims, error) {
	f.seen = token
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "no header", header: "", want: ""},
		{name: "bearer token", header: "Bearer abc123", want: "abc123"},
		{name: "wrong scheme", header: "Basic abc123", want: ""},
		{name: "bearer with extra space", header: "Bearer  abc123", want: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireUser_InjectsClaims(t *testing.T) {
	verifier := &fakeVerifier{claims: &Claims{UserID: "sub-1", Email: "a@b.c"}}

	var got *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	})

	r := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
	r.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()

	RequireUser(verifier, zap.NewNop())(next).ServeHTTP(rr, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if verifier.seen != "tok" {
		t.Errorf("verifier saw token %q, want %q", verifier.seen, "tok")
	}
	if got == nil || got.UserID != "sub-1" {
		t.Errorf("claims in context: got %+v, want UserID sub-1", got)
	}
}

func TestRequireUser_MissingToken(t *testing.T) {
	verifier := &fakeVerifier{claims: &Claims{UserID: "sub-1"}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	})

	r := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
	rr := httptest.NewRecorder()

	RequireUser(verifier, zap.NewNop())(next).ServeHTTP(rr, r)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if body["status"] != "UNAUTHORIZED" {
		t.Errorf("status field: got %v, want UNAUTHORIZED", body["status"])
	}
}

func TestRequireUser_InvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("token expired")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an invalid token")
	})

	r := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
	r.Header.Set("Authorization", "Bearer expired")
	rr := httptest.NewRecorder()

	RequireUser(verifier, zap.NewNop())(next).ServeHTTP(rr, r)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}
