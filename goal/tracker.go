// Package goal computes canvasser progress against their weekly lead goal.
// The count is always recomputed from lead creation timestamps; the Redis
// snapshot exists only for cheap dashboard reads and is never authoritative.
package goal

import (
	"context"
	"encoding/json"
	"time"

	"leadflow/access"
	"leadflow/cache"
	"leadflow/lead"
)

// window is the sliding lookback, not a calendar week. A lead created seven
// days and one second ago falls outside it.
const window = 7 * 24 * time.Hour

const snapshotTTL = 15 * time.Minute

// WeeklyLeadCount counts leads created by displayName within the sliding
// seven-day window ending at now, bounds inclusive.
func WeeklyLeadCount(displayName string, leads []lead.Lead, now time.Time) int {
	weekAgo := now.Add(-window)
	count := 0
	for _, l := range leads {
		if l.CreatedBy != displayName {
			continue
		}
		if l.CreatedAt.Before(weekAgo) || l.CreatedAt.After(now) {
			continue
		}
		count++
	}
	return count
}

// ProgressRatio maps a count onto [0, 1]. A zero goal reads as 0% rather
// than dividing by zero.
func ProgressRatio(count, weeklyGoal int) float64 {
	if weeklyGoal <= 0 {
		return 0
	}
	ratio := float64(count) / float64(weeklyGoal)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Snapshot is one computed progress reading.
type Snapshot struct {
	Count      int       `json:"count"`
	Goal       int       `json:"goal"`
	Ratio      float64   `json:"ratio"`
	ComputedAt time.Time `json:"computedAt"`
}

// CacheKey names the session-scoped snapshot entry for a canvasser.
func CacheKey(displayName string) string {
	return "goal:" + displayName
}

// Tracker reads the lead store and publishes snapshots to the cache.
type Tracker struct {
	store *lead.Store
	cache *cache.Client
	now   func() time.Time
}

// NewTracker builds a tracker. snapshots may be nil to disable caching.
func NewTracker(store *lead.Store, snapshots *cache.Client) *Tracker {
	return &Tracker{store: store, cache: snapshots, now: time.Now}
}

func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Progress recomputes the canvasser's current weekly progress and refreshes
// the cached snapshot best-effort.
func (t *Tracker) Progress(ctx context.Context, displayName, userID string, weeklyGoal int) Snapshot {
	now := t.now()
	mine := t.store.List(ctx, displayName, userID, access.RoleCanvasser, lead.FilterMine)
	count := WeeklyLeadCount(displayName, mine, now)
	snap := Snapshot{
		Count:      count,
		Goal:       weeklyGoal,
		Ratio:      ProgressRatio(count, weeklyGoal),
		ComputedAt: now,
	}
	if payload, err := json.Marshal(snap); err == nil {
		t.cache.Set(ctx, CacheKey(displayName), payload, snapshotTTL)
	}
	return snap
}

// Cached returns the last published snapshot, if any survives in the cache.
func (t *Tracker) Cached(ctx context.Context, displayName string) (Snapshot, bool) {
	payload := t.cache.Get(ctx, CacheKey(displayName))
	if payload == nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}
