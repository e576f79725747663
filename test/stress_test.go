package test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"leadflow/channel"
	"leadflow/db"
	"leadflow/engine"
	"leadflow/lead"
	"leadflow/mirror"
	"leadflow/task"
	"leadflow/test/actors"
	"leadflow/test/chaos"
	"leadflow/test/infra"
	"leadflow/test/oracles"
)

var (
	flDuration    = flag.Duration("duration", 60*time.Second, "how long to run stress")
	flConcurrency = flag.Int("concurrency", 8, "number of concurrent canvassers")
	flSeed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flDSN         = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")
)

func TestLeadLifecycleConcurrency(t *testing.T) {
	flag.Parse()
	seed := *flSeed
	rand.Seed(seed)

	ctx, cancel := context.WithTimeout(context.Background(), *flDuration+60*time.Second)
	defer cancel()

	var (
		pgC *infra.PGContainer
		dsn string
		err error
	)
	switch {
	case *flDSN != "":
		dsn = *flDSN
		pgC = &infra.PGContainer{}
	case os.Getenv("STRESS_TEST_PG_DSN") != "":
		dsn = os.Getenv("STRESS_TEST_PG_DSN")
		pgC = &infra.PGContainer{}
	case dockerAvailable(ctx):
		pgC, dsn, err = infra.StartPostgres16(ctx, "")
		if err != nil {
			t.Fatalf("start postgres: %v", err)
		}
	default:
		t.Skip("no Docker and no STRESS_TEST_PG_DSN, skipping stress run")
	}
	defer pgC.Terminate(context.Background())

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("open mirror pool: %v", err)
	}
	defer pool.Close()

	pg := mirror.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure mirror schema: %v", err)
	}

	writer := mirror.NewWriter(pg, 3*time.Second)
	leads := lead.NewStore(writer)
	tasks := task.NewDispatcher(writer)
	channels := channel.NewDirectory(writer)
	eng := engine.New(leads, tasks)

	g, ctx2 := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	for i := 0; i < *flConcurrency; i++ {
		name := fmt.Sprintf("canvasser-%d", i)
		g.Go(func() error { return actors.Canvasser(ctx2, eng, name, stop) })
	}
	// two confirmers racing over the same open tasks
	g.Go(func() error { return actors.Confirmer(ctx2, eng, "confirmer-a", stop) })
	g.Go(func() error { return actors.Confirmer(ctx2, eng, "confirmer-b", stop) })
	// two managers racing field updates
	g.Go(func() error { return actors.Editor(ctx2, eng, "manager-a", stop) })
	g.Go(func() error { return actors.Editor(ctx2, eng, "manager-b", stop) })
	g.Go(func() error { return actors.Messenger(ctx2, channels, "manager-a", stop) })

	go chaos.TerminateRandomBackend(ctx2, pool, stop)

	deadline := time.Now().Add(*flDuration)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var failed bool
loop:
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			// In-memory invariants only while chaos runs; mirror counts
			// are checked after the writer drains.
			name, detail, err := oracles.Run(ctx2, eng, nil, false)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					break loop
				}
				t.Fatalf("oracle error: %v", err)
			}
			if name != "" {
				failed = true
				t.Fatalf("Oracle %s failed: %s (seed=%d)", name, detail, seed)
			}
		}
	}

	close(stop)
	if err := g.Wait(); err != nil && !failed {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("actors errored: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Logf("mirror drain warning: %v", err)
	}

	name, detail, err := oracles.Run(context.Background(), eng, pool, true)
	if err != nil {
		t.Fatalf("final oracle error: %v", err)
	}
	if name != "" {
		t.Fatalf("Final oracle %s failed: %s (seed=%d)", name, detail, seed)
	}
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}
