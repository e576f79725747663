package mirror

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout     = 3 * time.Second
	defaultConcurrency = 8
)

// Writer fans out mirror writes asynchronously. Failures are logged and
// swallowed; callers observe nothing. A nil *Writer is valid and means
// pure in-memory mode.
type Writer struct {
	mirror  Mirror
	timeout time.Duration
	group   *errgroup.Group
	log     *logrus.Entry
}

// NewWriter wraps a Mirror with bounded-timeout asynchronous dispatch.
func NewWriter(m Mirror, timeout time.Duration) *Writer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	group := &errgroup.Group{}
	group.SetLimit(defaultConcurrency)
	return &Writer{
		mirror:  m,
		timeout: timeout,
		group:   group,
		log:     logrus.WithField("component", "mirror"),
	}
}

// Insert mirrors a newly created document, fire-and-forget.
func (w *Writer) Insert(collection Collection, id string, doc any) {
	w.dispatch("insert", collection, id, doc, func(ctx context.Context) error {
		return w.mirror.Insert(ctx, collection, id, doc)
	})
}

// Update mirrors the current state of an existing document, fire-and-forget.
func (w *Writer) Update(collection Collection, id string, doc any) {
	w.dispatch("update", collection, id, doc, func(ctx context.Context) error {
		return w.mirror.Update(ctx, collection, id, doc)
	})
}

// dispatch must never block the caller: when all workers are busy behind a
// slow remote the write is shed, like any other mirror failure.
func (w *Writer) dispatch(verb string, collection Collection, id string, _ any, call func(context.Context) error) {
	if w == nil || w.mirror == nil {
		return
	}
	started := w.group.TryGo(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		if err := call(ctx); err != nil {
			w.log.WithFields(logrus.Fields{
				"verb":       verb,
				"collection": collection,
				"id":         id,
			}).Warnf("mirror write dropped: %v", err)
		}
		return nil
	})
	if !started {
		w.log.WithFields(logrus.Fields{
			"verb":       verb,
			"collection": collection,
			"id":         id,
		}).Warn("mirror write dropped: writer saturated")
	}
}

// Close waits for in-flight writes to drain.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	return w.group.Wait()
}
