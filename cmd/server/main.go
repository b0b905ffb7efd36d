package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"roomhub/internal/chat"
	"roomhub/internal/config"
	"roomhub/internal/db"
	myMiddleware "roomhub/internal/middleware"
	"roomhub/internal/peers"
	"roomhub/internal/presence"
	"roomhub/internal/user"
	"roomhub/internal/web"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Config & Flags
	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// 2. Peer server directory (file, Redis or Postgres)
	store, closeStore := openPeerStore(cfg)
	defer closeStore()
	directory := peers.NewDirectory(store)
	servers := directory.Servers(context.Background())
	log.Printf("✅ Peer servers: %v", servers)

	// 3. Presence core
	registry := presence.NewRegistry()
	room := chat.NewRoom(registry, presence.NewMembership(presence.DefaultRoom), chat.NewClassifier(nil))
	hub := chat.NewHub(room)
	go hub.Run()

	chatHandler := chat.NewHandler(hub, cfg.SendBuffer, cfg.MaxMessageSize)
	userHandler := user.NewHandler(user.NewService(registry))
	peerHandler := peers.NewHandler(directory)
	pageHandler := web.NewHandler(registry)
	originGuard := myMiddleware.NewOriginGuard(cfg.AllowedOrigins)

	// 4. Define Routes
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", pageHandler.Index)
	r.Get("/login", pageHandler.Login)
	r.Get("/chat", pageHandler.Chat)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/api/servers", peerHandler.ListServers)
	r.Post("/api/validate_nickname", userHandler.ValidateNickname)

	r.With(originGuard.Handle).Get("/ws", chatHandler.ServeWs)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("🚀 Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	hub.Stop()
	log.Println("✅ Shutdown complete")
}

func openPeerStore(cfg config.Config) (peers.Store, func()) {
	switch cfg.PeerStore {
	case config.StoreRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		log.Println("✅ Connected to Redis")
		return peers.NewRedisStore(redisClient, peers.DefaultRedisKey), func() { redisClient.Close() }

	case config.StorePostgres:
		database, err := db.NewDatabase(cfg.DSN)
		if err != nil {
			log.Fatalf("❌ Failed to connect to DB: %v", err)
		}
		log.Println("✅ Connected to PostgreSQL")
		if err := database.AutoMigrate(); err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}
		log.Println("✅ Database Schema Initialized")
		return peers.NewPostgresStore(database.Conn), func() { database.Close() }
	}

	return peers.NewFileStore(cfg.PeerConfig), func() {}
}
