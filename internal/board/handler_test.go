package board

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/canvasedit/internal/auth"
	"github.com/inamate/canvasedit/internal/preview"
)

// asUser stands in for the token middleware: X-User becomes the caller.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-User"); id != "" {
			r = r.WithContext(auth.WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func newRouter(svc *Service) *mux.Router {
	h := NewHandler(svc, preview.NewRenderer(nil, 256))
	r := mux.NewRouter()
	r.Use(asUser)
	h.Routes(r.PathPrefix("/api/boards").Subrouter())
	r.HandleFunc("/boards/{boardId}/preview.png", h.Preview).Methods(http.MethodGet)
	return r
}

func do(r http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_BoardLifecycle(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f.svc)

	rec := do(r, http.MethodPost, "/api/boards", "user_owner", `{"name":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d", rec.Code)
	}

	rec = do(r, http.MethodPost, "/api/boards", "user_owner", `{"name":"Sketch"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created Board
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	base := "/api/boards/" + created.ID

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		want   int
	}{
		{"list", http.MethodGet, "/api/boards", "user_owner", "", http.StatusOK},
		{"get as owner", http.MethodGet, base, "user_owner", "", http.StatusOK},
		{"get as stranger", http.MethodGet, base, "user_guest", "", http.StatusForbidden},
		{"get missing", http.MethodGet, "/api/boards/board_nope", "user_owner", "", http.StatusForbidden},
		{"invite unknown", http.MethodPost, base + "/invite", "user_owner", `{"email":"x@example.com"}`, http.StatusNotFound},
		{"invite guest", http.MethodPost, base + "/invite", "user_owner", `{"email":"Guest@Example.com"}`, http.StatusCreated},
		{"invite again", http.MethodPost, base + "/invite", "user_owner", `{"email":"guest@example.com"}`, http.StatusConflict},
		{"members", http.MethodGet, base + "/members", "user_guest", "", http.StatusOK},
		{"snapshot", http.MethodGet, base + "/snapshot", "user_guest", "", http.StatusOK},
		{"remove owner", http.MethodDelete, base + "/members/user_owner", "user_owner", "", http.StatusBadRequest},
		{"delete as guest", http.MethodDelete, base, "user_guest", "", http.StatusForbidden},
		{"delete", http.MethodDelete, base, "user_owner", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.method, tt.path, tt.user, tt.body)
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestHandler_Preview(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f.svc)

	rec := do(r, http.MethodGet, "/boards/"+playground+"/preview.png", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("playground preview = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Error("body is not a PNG")
	}

	meta, _ := f.svc.Create(context.Background(), "Private", "user_owner")
	if rec := do(r, http.MethodGet, "/boards/"+meta.ID+"/preview.png", "", ""); rec.Code != http.StatusForbidden {
		t.Errorf("anonymous private preview = %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/boards/"+meta.ID+"/preview.png", "user_owner", ""); rec.Code != http.StatusOK {
		t.Errorf("owner preview = %d", rec.Code)
	}
}
