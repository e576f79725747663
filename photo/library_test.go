package photo

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingBlobStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *recordingBlobStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	return nil
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(nil)

	if _, err := lib.Add(ctx, "", []byte("img"), "Jo"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing lead id, got %v", err)
	}
	if _, err := lib.Add(ctx, "lead-1", nil, "Jo"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty payload, got %v", err)
	}
}

func TestAddAndListByLead(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(nil)

	first, err := lib.Add(ctx, "lead-1", []byte("front"), "Jo")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := lib.Add(ctx, "lead-1", []byte("back"), "Jo"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := lib.Add(ctx, "lead-2", []byte("other"), "Jo"); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := lib.ListByLead(ctx, "lead-1")
	if len(got) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(got))
	}
	if string(got[0].Data) != "front" || string(got[1].Data) != "back" {
		t.Fatal("expected attachments in upload order")
	}

	fetched, err := lib.Get(ctx, "lead-1", first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.UploadedBy != "Jo" {
		t.Fatalf("expected uploader Jo, got %q", fetched.UploadedBy)
	}

	if _, err := lib.Get(ctx, "lead-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBlobStoreReceivesCopies(t *testing.T) {
	ctx := context.Background()
	blobs := &recordingBlobStore{}
	lib := NewLibrary(blobs)

	att, err := lib.Add(ctx, "lead-1", []byte("img"), "Jo")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	blobs.mu.Lock()
	defer blobs.mu.Unlock()
	if len(blobs.keys) != 1 {
		t.Fatalf("expected 1 blob upload, got %d", len(blobs.keys))
	}
	want := "leads/lead-1/" + att.ID
	if blobs.keys[0] != want {
		t.Fatalf("expected key %q, got %q", want, blobs.keys[0])
	}
}

func TestBlobStoreFailureDoesNotFailUpload(t *testing.T) {
	ctx := context.Background()
	blobs := &recordingBlobStore{err: errors.New("bucket unreachable")}
	lib := NewLibrary(blobs)

	if _, err := lib.Add(ctx, "lead-1", []byte("img"), "Jo"); err != nil {
		t.Fatalf("expected upload to succeed despite blob failure, got %v", err)
	}
	if got := lib.ListByLead(ctx, "lead-1"); len(got) != 1 {
		t.Fatalf("expected attachment kept in memory, got %d", len(got))
	}
}
