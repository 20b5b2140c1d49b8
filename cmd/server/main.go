package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/inamate/canvasedit/internal/auth"
	"github.com/inamate/canvasedit/internal/board"
	"github.com/inamate/canvasedit/internal/collab"
	"github.com/inamate/canvasedit/internal/config"
	"github.com/inamate/canvasedit/internal/db"
	mw "github.com/inamate/canvasedit/internal/middleware"
	"github.com/inamate/canvasedit/internal/preview"
	"github.com/inamate/canvasedit/internal/typeid"
)

// playgroundBoardID is open to anonymous users and never persisted.
const playgroundBoardID = "board_playground"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeStore()

	authService := auth.NewService(store, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	boardService := board.NewService(store, playgroundBoardID)
	hub := collab.NewHub(boardService.LoadBoard, boardService.SaveBoard, cfg.EngineOptions()...)
	boardService.SetLive(hub)

	previews := preview.NewRenderer(preview.NewTextRenderer(), cfg.PreviewMaxSize)
	boardHandler := board.NewHandler(boardService, previews)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// Previews accept an optional token so <img> tags can pass ?token=.
	r.Handle("/boards/{boardId}/preview.png",
		authService.OptionalAuthMiddleware(http.HandlerFunc(boardHandler.Preview))).Methods(http.MethodGet)

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	boardHandler.Routes(api.PathPrefix("/boards").Subrouter())

	wsOrigins := originPatterns(cfg.Origins())
	r.HandleFunc("/ws/board/{boardId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, boardService, wsOrigins)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		return hub.Autosave(gctx, cfg.SaveInterval)
	})
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore connects to Postgres when a URL is configured and falls back to
// an in-memory store otherwise.
func openStore(ctx context.Context, databaseURL string) (db.Store, func(), error) {
	if databaseURL == "" {
		slog.Warn("DATABASE_URL not set, boards live in memory only")
		return db.NewMemoryStore(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db.NewPgStore(pool), pool.Close, nil
}

// originPatterns converts allowed origins into the host patterns the
// WebSocket handshake checks.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			out = append(out, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		}
	}
	return out
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, boards *board.Service, origins []string) {
	boardID := mux.Vars(r)["boardId"]

	var userID, displayName string
	if boards.IsPlayground(boardID) {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		if err := typeid.Validate(boardID, typeid.PrefixBoard); err != nil {
			http.Error(w, "invalid board id", http.StatusBadRequest)
			return
		}

		token := auth.TokenFromRequest(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if err := boards.CheckMembership(r.Context(), boardID, userID); err != nil {
			if errors.Is(err, board.ErrNotMember) {
				http.Error(w, "not a board member", http.StatusForbidden)
				return
			}
			slog.Error("check membership", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, userID, displayName, boardID, uuid.New().String())

	ctx := r.Context()
	if err := hub.Register(ctx, client); err != nil {
		slog.Warn("register client", "board", boardID, "error", err)
		conn.Close(websocket.StatusTryAgainLater, "board unavailable")
		return
	}

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
