package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"leadflow/cache"
	"leadflow/channel"
	"leadflow/db"
	"leadflow/engine"
	"leadflow/goal"
	"leadflow/lead"
	"leadflow/mirror"
	"leadflow/photo"
	"leadflow/session"
	"leadflow/task"
)

func main() {
	ctx := context.Background()
	log := logrus.WithField("component", "bootstrap")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// The mirror is optional. Without DATABASE_URL the engine runs purely
	// in memory.
	var writer *mirror.Writer
	if connString := os.Getenv("DATABASE_URL"); connString != "" {
		pool, err := db.NewPool(ctx, connString)
		if err != nil {
			log.Fatalf("bootstrap database pool: %v", err)
		}
		defer pool.Close()

		pg := mirror.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("bootstrap mirror schema: %v", err)
		}
		writer = mirror.NewWriter(pg, 3*time.Second)
		defer writer.Close()
		log.Info("postgres mirror enabled")
	} else {
		log.Info("no DATABASE_URL, running in memory only")
	}

	var sessions *cache.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		sessions = cache.New(addr)
		defer sessions.Close()
		if err := sessions.Ping(ctx); err != nil {
			log.Warnf("redis unreachable, cache disabled: %v", err)
		} else {
			log.Info("redis cache enabled")
		}
	}

	var blobs photo.BlobStore
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		store, err := photo.NewMinioStore(ctx, endpoint,
			os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"),
			envOr("MINIO_BUCKET", "lead-photos"), os.Getenv("MINIO_USE_SSL") == "true")
		if err != nil {
			log.Warnf("minio unreachable, photo blobs disabled: %v", err)
		} else {
			blobs = store
			log.Info("minio photo store enabled")
		}
	}

	leads := lead.NewStore(writer)
	tasks := task.NewDispatcher(writer)
	core := engine.New(leads, tasks)
	channels := channel.NewDirectory(writer)
	photos := photo.NewLibrary(blobs)
	users := session.NewManager(jwtSecret, writer, sessions)
	goals := goal.NewTracker(leads, sessions)

	if os.Getenv("SEED_DEMO_ACCOUNTS") == "true" {
		if err := session.SeedDemoAccounts(ctx, users); err != nil {
			log.Fatalf("seed demo accounts: %v", err)
		}
		log.Info("demo accounts seeded")
	}

	log.WithFields(logrus.Fields{
		"engine":   core != nil,
		"photos":   photos != nil,
		"goals":    goals != nil,
		"channels": len(channels.ListVisible(ctx, "System")),
		"users":    len(users.ListUsers(ctx)),
	}).Info("lead lifecycle engine ready")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
