package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"todo-records/internal/cache"
	"todo-records/internal/config"
	"todo-records/internal/database"
	"todo-records/internal/repository"
	"todo-records/internal/server"
	"todo-records/internal/service"

	"github.com/redis/go-redis/v9"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, rdb *redis.Client, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server gets 5 seconds to finish in-flight requests.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
		}
	}

	if dbService != nil {
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		}
	}

	log.Println("Server exiting")
	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.RunMigrations(cfg.DB.DSN, cfg.DB.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	dbService, err := database.New(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Cache is optional: without REDIS_ADDR every read goes to the store.
	var rdb *redis.Client
	var todoCache *cache.TodoCache
	if cfg.Redis.Addr != "" {
		rdb, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		todoCache = cache.NewTodoCache(rdb, cfg.Redis.CacheTTL)
		log.Printf("Todo cache enabled (redis %s, ttl %s)", cfg.Redis.Addr, cfg.Redis.CacheTTL)
	}

	todoRepo := repository.NewGormTodoRepository(dbService.GetDB())
	todoService := service.NewTodoService(todoRepo, todoCache)
	apiServer := server.NewServer(cfg, todoService, dbService)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, rdb, done)

	log.Printf("Starting server on %s", apiServer.Addr)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
