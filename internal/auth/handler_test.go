package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_Register(t *testing.T) {
	h := NewHandler(newTestService())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"ok", `{"email":"Bo@Example.com","password":"password1","displayName":"Bo"}`, http.StatusCreated},
		{"duplicate", `{"email":"bo@example.com","password":"password1","displayName":"Bo"}`, http.StatusConflict},
		{"short password", `{"email":"c@example.com","password":"short","displayName":"C"}`, http.StatusBadRequest},
		{"missing fields", `{"email":"d@example.com"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestHandler_LoginAndMe(t *testing.T) {
	s := newTestService()
	h := NewHandler(s)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"email":"eve@example.com","password":"password1","displayName":"Eve"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"eve@example.com","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"eve@example.com","password":"password1"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var res AuthResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}

	me := s.AuthMiddleware(http.HandlerFunc(h.Me))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rec = httptest.NewRecorder()
	me.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"displayName":"Eve"`) {
		t.Errorf("me = %d %s", rec.Code, rec.Body)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	s := newTestService()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler reached")
	})
	mw := s.AuthMiddleware(next)

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer bogus"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d", header, rec.Code)
		}
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	s := newTestService()
	token, err := s.issueToken("user_7")
	if err != nil {
		t.Fatal(err)
	}

	var seen string
	mw := s.OptionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"anonymous", "/", "", ""},
		{"header", "/", "Bearer " + token, "user_7"},
		{"query", "/?token=" + token, "", "user_7"},
		{"bad token stays anonymous", "/?token=junk", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = "unset"
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			mw.ServeHTTP(httptest.NewRecorder(), req)
			if seen != tt.want {
				t.Errorf("user = %q, want %q", seen, tt.want)
			}
		})
	}
}
