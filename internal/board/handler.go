package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/canvasedit/internal/auth"
	"github.com/inamate/canvasedit/internal/preview"
)

type Handler struct {
	service  *Service
	previews *preview.Renderer
}

func NewHandler(service *Service, previews *preview.Renderer) *Handler {
	return &Handler{service: service, previews: previews}
}

// Routes mounts the member API on r. Every route expects an authenticated
// user in the request context.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("", h.Create).Methods(http.MethodPost)
	r.HandleFunc("", h.List).Methods(http.MethodGet)
	r.HandleFunc("/{boardId}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/{boardId}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/{boardId}/invite", h.Invite).Methods(http.MethodPost)
	r.HandleFunc("/{boardId}/members", h.ListMembers).Methods(http.MethodGet)
	r.HandleFunc("/{boardId}/members/{userId}", h.RemoveMember).Methods(http.MethodDelete)
	r.HandleFunc("/{boardId}/snapshot", h.GetSnapshot).Methods(http.MethodGet)
}

type createRequest struct {
	Name string `json:"name"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	board, err := h.service.Create(r.Context(), req.Name, userID)
	if err != nil {
		slog.Error("create board failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, board)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Get(r.Context(), mux.Vars(r)["boardId"], auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		slog.Error("list boards failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), mux.Vars(r)["boardId"], auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	err := h.service.InviteByEmail(r.Context(), mux.Vars(r)["boardId"], auth.UserIDFromContext(r.Context()), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "invited"})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), mux.Vars(r)["boardId"], auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.service.RemoveMember(r.Context(), vars["boardId"], auth.UserIDFromContext(r.Context()), vars["userId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), mux.Vars(r)["boardId"], auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Preview serves the board as a PNG. The user is optional: the playground
// renders for anyone, other boards only for members.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), mux.Vars(r)["boardId"], auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.previews.WritePNG(r.Context(), &buf, snap.Board); err != nil {
		slog.Error("render preview failed", "board", snap.Board.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotMember):
		writeError(w, http.StatusForbidden, "not a board member")
	case errors.Is(err, ErrAlreadyMember):
		writeError(w, http.StatusConflict, "already a board member")
	case errors.Is(err, ErrRemoveOwner):
		writeError(w, http.StatusBadRequest, "cannot remove board owner")
	default:
		slog.Error("service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
