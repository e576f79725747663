// Package photo stores lead photo attachments. Bytes are kept in memory as
// the source of truth; a blob store, when configured, receives best-effort
// copies for durability.
package photo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrValidation = errors.New("photo: validation failed")
	ErrNotFound   = errors.New("photo: not found")
)

// Attachment is one photo tied to a lead.
type Attachment struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"leadId"`
	Data       []byte    `json:"-"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// BlobStore receives durable copies of attachment bytes.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Library indexes attachments by lead.
type Library struct {
	mu     sync.RWMutex
	byLead map[string][]Attachment

	blobs BlobStore
	log   *logrus.Entry

	idGenerator func() string
	now         func() time.Time
}

// NewLibrary builds a library. blobs may be nil for memory-only operation.
func NewLibrary(blobs BlobStore) *Library {
	return &Library{
		byLead:      make(map[string][]Attachment),
		blobs:       blobs,
		log:         logrus.WithField("component", "photo"),
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
}

func (l *Library) WithIDGenerator(gen func() string) *Library {
	l.idGenerator = gen
	return l
}

func (l *Library) WithClock(now func() time.Time) *Library {
	l.now = now
	return l
}

// Add attaches a photo to a lead. A blob store failure is logged and does
// not fail the upload.
func (l *Library) Add(ctx context.Context, leadID string, data []byte, uploadedBy string) (Attachment, error) {
	if leadID == "" {
		return Attachment{}, fmt.Errorf("photo: add: lead id is required: %w", ErrValidation)
	}
	if len(data) == 0 {
		return Attachment{}, fmt.Errorf("photo: add: empty payload: %w", ErrValidation)
	}

	att := Attachment{
		ID:         l.idGenerator(),
		LeadID:     leadID,
		Data:       append([]byte(nil), data...),
		UploadedBy: uploadedBy,
		UploadedAt: l.now(),
	}

	l.mu.Lock()
	l.byLead[leadID] = append(l.byLead[leadID], att)
	l.mu.Unlock()

	if l.blobs != nil {
		key := blobKey(leadID, att.ID)
		if err := l.blobs.Put(ctx, key, att.Data); err != nil {
			l.log.WithFields(logrus.Fields{"lead": leadID, "key": key}).Warnf("blob upload dropped: %v", err)
		}
	}
	return att, nil
}

// ListByLead returns a lead's attachments in upload order.
func (l *Library) ListByLead(ctx context.Context, leadID string) []Attachment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Attachment(nil), l.byLead[leadID]...)
}

// Get returns one attachment.
func (l *Library) Get(ctx context.Context, leadID, photoID string) (Attachment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, att := range l.byLead[leadID] {
		if att.ID == photoID {
			return att, nil
		}
	}
	return Attachment{}, fmt.Errorf("photo: get %q: %w", photoID, ErrNotFound)
}

func blobKey(leadID, photoID string) string {
	return "leads/" + leadID + "/" + photoID
}
