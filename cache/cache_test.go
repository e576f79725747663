package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := New(srv.Addr())
	t.Cleanup(func() { client.Close() })
	return client, srv
}

func TestSetGetDelete(t *testing.T) {
	client, _ := setupTestCache(t)
	ctx := context.Background()

	client.Set(ctx, "goal:Jo", []byte(`{"count":3}`), time.Minute)
	if got := client.Get(ctx, "goal:Jo"); string(got) != `{"count":3}` {
		t.Fatalf("unexpected value: %q", got)
	}

	client.Delete(ctx, "goal:Jo")
	if got := client.Get(ctx, "goal:Jo"); got != nil {
		t.Fatalf("expected miss after delete, got %q", got)
	}
}

func TestErrorsBehaveLikeMisses(t *testing.T) {
	client, srv := setupTestCache(t)
	ctx := context.Background()

	client.Set(ctx, "k", []byte("v"), time.Minute)
	srv.Close()

	if got := client.Get(ctx, "k"); got != nil {
		t.Fatalf("expected miss when redis is down, got %q", got)
	}
	// Writes against a dead server must not panic or surface errors.
	client.Set(ctx, "k2", []byte("v2"), time.Minute)
	client.Delete(ctx, "k")
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *Client
	ctx := context.Background()

	client.Set(ctx, "k", []byte("v"), time.Minute)
	if got := client.Get(ctx, "k"); got != nil {
		t.Fatalf("nil client must behave like a permanent miss, got %q", got)
	}
	client.Delete(ctx, "k")
	if err := client.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
