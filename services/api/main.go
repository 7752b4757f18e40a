package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PriyaG26/Chat-app/internal/config"
	"github.com/PriyaG26/Chat-app/internal/fileserver"
	"github.com/PriyaG26/Chat-app/internal/handler"
	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/middleware"
	"github.com/PriyaG26/Chat-app/internal/presence"
	"github.com/PriyaG26/Chat-app/internal/repository"
	"github.com/PriyaG26/Chat-app/internal/service"
	"github.com/PriyaG26/Chat-app/internal/startup"
	"github.com/PriyaG26/Chat-app/internal/storage"
	"github.com/PriyaG26/Chat-app/internal/storage/memory"
	"github.com/PriyaG26/Chat-app/internal/ws"
	"github.com/PriyaG26/Chat-app/migrations"
)

func main() {
	logger.SetPrefix("api")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	dev := flag.Bool("dev", false, "start with embedded PostgreSQL (no external DB or Redis required)")
	flag.Parse()

	logger.Info("starting API service")
	cfg := config.Load()

	var embeddedDB *embeddedpostgres.EmbeddedPostgres
	if *dev {
		var err error
		embeddedDB, err = startEmbeddedPostgres(cfg)
		if err != nil {
			logger.Errorf("embedded postgres: %v", err)
			os.Exit(1)
		}
		defer func() {
			logger.Info("stopping embedded postgres...")
			if err := embeddedDB.Stop(); err != nil {
				logger.Errorf("embedded postgres stop: %v", err)
			}
		}()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		logger.Errorf("parse db config: %v", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConnections())
	poolCfg.MinConns = 4

	pool := startup.ConnectDBWithRetry(poolCfg, 60*time.Second)
	defer pool.Close()

	runMigrations(pool)
	if *migrate && !*dev {
		return
	}
	logger.Info("database connected, migrations applied")

	// In dev mode session secrets live in memory; otherwise they are shared
	// through Redis so restarts do not log everyone out.
	var secrets storage.SessionSecretStore
	if *dev {
		secrets = memory.New()
	} else {
		secrets = startup.ConnectRedisWithRetry(cfg.Redis.URL, 60*time.Second)
	}
	defer secrets.Close()

	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)

	registry := presence.NewRegistry()
	router := ws.NewRouter(registry, groupRepo)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := ws.NewHub(registry, userRepo, cfg.MaxWSConnections)

	var hubWg sync.WaitGroup
	hubWg.Add(1)
	go func() {
		defer hubWg.Done()
		hub.Run(hubCtx)
	}()

	ingest := service.NewIngest(msgRepo, userRepo, groupRepo, router)
	files := fileserver.New(cfg.UploadDir, cfg.MaxUploadSize)

	authH := handler.NewAuthHandler(userRepo, sessionRepo, secrets)
	userH := handler.NewUserHandler(userRepo)
	groupH := handler.NewGroupHandler(groupRepo)
	msgH := handler.NewMessageHandler(msgRepo, groupRepo, ingest)
	fileH := handler.NewFileHandler(files, cfg.MaxUploadSize)
	wsH := handler.NewWSHandler(hub, splitOrigins(cfg.CORSAllowedOrigins))

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.RecoverJSON)
	// Do not compress WebSocket upgrades; the wrapped ResponseWriter loses
	// http.Hijacker and the upgrade fails with a 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, req)
				return
			}
			chimw.Compress(5)(next).ServeHTTP(w, req)
		})
	})
	r.Use(middleware.RequestLog)
	r.Use(middleware.RateLimitAPI)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-Id", "X-Timestamp", "X-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); w.Write([]byte("ok")) })

	r.Post("/api/auth/register", authH.Register)
	r.Post("/api/auth/login", authH.Login)
	r.Get("/api/files/{filename}", fileH.Serve)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessionRepo, secrets))
		r.Post("/api/auth/logout", authH.Logout)
		r.Get("/api/users/me", userH.GetMe)
		r.Get("/api/messages/users", userH.GetSidebarUsers)
		r.Get("/api/groups", groupH.ListMyGroups)
		r.Post("/api/groups", groupH.CreateGroup)
		r.Get("/api/messages/group/{groupId}", msgH.GetGroupMessages)
		r.Post("/api/messages/send/group/{groupId}", msgH.SendGroup)
		r.Post("/api/messages/send/{userId}", msgH.SendDirect)
		r.Get("/api/messages/{userId}", msgH.GetDirectMessages)
		r.Post("/api/files/upload", fileH.Upload)
		r.Get("/ws", wsH.ServeWS)
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var srvWg sync.WaitGroup
	errCh := make(chan error, 1)
	srvWg.Add(1)
	go func() {
		defer srvWg.Done()
		logger.Infof("server listening on %s", cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	logger.Info("server stopped accepting connections")
	hubCancel()
	hubWg.Wait()
	logger.Info("hub stopped")
	srvWg.Wait()
	logger.Info("server goroutine exited")
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}

func runMigrations(pool *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := migrations.Files.ReadDir(".")
	if err != nil {
		logger.Errorf("list migrations: %v", err)
		os.Exit(1)
	}
	// fs.ReadDir returns entries sorted by name, so 001, 002, ... run in order.
	for _, e := range entries {
		data, err := migrations.Files.ReadFile(e.Name())
		if err != nil {
			logger.Errorf("read migration %s: %v", e.Name(), err)
			os.Exit(1)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			logger.Errorf("run migration %s: %v", e.Name(), err)
			os.Exit(1)
		}
	}
	logger.Info("migrations applied")
}

func startEmbeddedPostgres(cfg *config.Config) (*embeddedpostgres.EmbeddedPostgres, error) {
	const (
		port     = 5432
		user     = "chat"
		password = "chat_secret"
		database = "chat"
	)

	dataDir := filepath.Join(".", ".pgdata")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Username(user).
			Password(password).
			Database(database).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), "embedded-pg-runtime")),
	)

	logger.Info("starting embedded PostgreSQL...")
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	cfg.Database.URL = fmt.Sprintf(
		"postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		user, password, port, database,
	)
	logger.Infof("embedded PostgreSQL running on port %d", port)
	return db, nil
}
