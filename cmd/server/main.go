package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dylanbaghel/devcamper-api/internal/config"
	"github.com/dylanbaghel/devcamper-api/internal/db"
	"github.com/dylanbaghel/devcamper-api/internal/server"

	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedFlag        = flag.Bool("seed", false, "Import the sample data from _data/ and exit")
	destroyFlag     = flag.Bool("destroy", false, "Delete all data and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	switch {
	case *migrateOnlyFlag:
		log.Println("migrations completed; exiting as requested")
		return
	case *seedFlag:
		if err := db.Seed(dbConn, "_data"); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		log.Println("sample data imported")
		return
	case *destroyFlag:
		if err := db.Destroy(dbConn); err != nil {
			log.Fatalf("destroy failed: %v", err)
		}
		log.Println("all data deleted")
		return
	}

	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn, cfg)}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
