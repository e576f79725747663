package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadflow/access"
	"leadflow/audit"
	"leadflow/geo"
	"leadflow/mirror"
)

var (
	// ErrValidation signals missing or malformed input.
	ErrValidation = errors.New("lead: validation failed")
	// ErrPermissionDenied signals the actor's role lacks rights for the field or lead.
	ErrPermissionDenied = errors.New("lead: permission denied")
	// ErrNotFound signals an unknown lead id.
	ErrNotFound = errors.New("lead: not found")
)

// Store owns all Lead entities. State is held in memory as the source of
// truth; the mirror writer replicates it best-effort. Mutation and audit
// append happen under one lock so no reader observes one without the other.
type Store struct {
	mu          sync.RWMutex
	leads       map[string]*Lead
	order       []string
	mirror      *mirror.Writer
	resolver    geo.Resolver
	idGenerator func() string
	now         func() time.Time
}

// NewStore builds a lead store. writer may be nil for pure in-memory mode.
func NewStore(writer *mirror.Writer) *Store {
	return &Store{
		leads:       make(map[string]*Lead),
		mirror:      writer,
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
}

// WithResolver attaches the geocoding collaborator used to canonicalize
// submitted addresses.
func (s *Store) WithResolver(resolver geo.Resolver) *Store {
	s.resolver = resolver
	return s
}

func (s *Store) WithIDGenerator(gen func() string) *Store {
	s.idGenerator = gen
	return s
}

func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create validates and records a new lead. The caller contract is that every
// successful Create is followed by a task dispatch for the confirmation team.
func (s *Store) Create(ctx context.Context, form FormData, createdBy string) (Lead, error) {
	if strings.TrimSpace(form.Name) == "" {
		return Lead{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(form.Address) == "" {
		return Lead{}, fmt.Errorf("%w: address is required", ErrValidation)
	}
	if strings.TrimSpace(form.FoundationType) == "" {
		return Lead{}, fmt.Errorf("%w: foundation type is required", ErrValidation)
	}

	address := form.Address
	if s.resolver != nil {
		// Canonicalization is best-effort; the submitted address survives a
		// provider failure.
		if loc, err := s.resolver.Resolve(ctx, form.Address); err == nil && loc.CanonicalAddress != "" {
			address = loc.CanonicalAddress
		}
	}

	now := s.now()
	created := &Lead{
		ID:             s.idGenerator(),
		Name:           form.Name,
		Phone:          form.Phone,
		Email:          form.Email,
		Address:        address,
		FoundationType: form.FoundationType,
		SourceOfLead:   form.SourceOfLead,
		Notes:          form.Notes,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		Status:         "new",
		History:        audit.NewTrail(createdBy, "homeowner created", now),
	}

	s.mu.Lock()
	s.leads[created.ID] = created
	s.order = append(s.order, created.ID)
	doc := docFromLead(created)
	s.mu.Unlock()

	s.mirror.Insert(mirror.CollectionLeads, created.ID, doc)

	return *created, nil
}

// UpdateField replaces one field and appends the matching audit entry.
func (s *Store) UpdateField(ctx context.Context, id, field string, value any, actorName string, role access.Role) (Lead, error) {
	if !access.CanEditField(role, field) {
		return Lead{}, fmt.Errorf("%w: role %s cannot edit %s", ErrPermissionDenied, role, field)
	}

	s.mu.Lock()
	current, ok := s.leads[id]
	if !ok {
		s.mu.Unlock()
		return Lead{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	accessor, ok := leadFields[field]
	if !ok {
		s.mu.Unlock()
		return Lead{}, fmt.Errorf("%w: unknown field %q", ErrValidation, field)
	}

	oldValue := accessor.get(current)
	if err := accessor.set(current, value); err != nil {
		s.mu.Unlock()
		return Lead{}, fmt.Errorf("%w: field %q %s", ErrValidation, field, err)
	}
	current.History.AppendChange(actorName, field, oldValue, accessor.get(current), s.now())

	updated := *current
	doc := docFromLead(current)
	s.mu.Unlock()

	s.mirror.Update(mirror.CollectionLeads, id, doc)

	return updated, nil
}

// Get returns a single lead subject to the access policy.
func (s *Store) Get(ctx context.Context, id, actorName, actorID string, role access.Role) (Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current, ok := s.leads[id]
	if !ok {
		return Lead{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !s.visible(current, actorName, actorID, role) {
		return Lead{}, fmt.Errorf("%w: role %s cannot view this lead", ErrPermissionDenied, role)
	}
	return *current, nil
}

// History returns the lead's audit trail, oldest first.
func (s *Store) History(ctx context.Context, id string) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current, ok := s.leads[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return current.History.Entries(), nil
}

// List returns visible leads in insertion order, narrowed by filter.
// Canvassers only ever see their own leads; sales reps only assigned ones.
func (s *Store) List(ctx context.Context, actorName, actorID string, role access.Role, filter Filter) []Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Lead, 0, len(s.order))
	for _, id := range s.order {
		current := s.leads[id]
		if !s.visible(current, actorName, actorID, role) {
			continue
		}
		if !matches(current, filter, actorName) {
			continue
		}
		out = append(out, *current)
	}
	return out
}

func (s *Store) visible(l *Lead, actorName, actorID string, role access.Role) bool {
	if role == access.RoleCanvasser {
		return l.CreatedBy == actorName
	}
	return access.CanAccessLead(role, actorID, l.AssignedRepID)
}

func matches(l *Lead, filter Filter, actorName string) bool {
	switch filter {
	case FilterUnpurchased:
		return !l.Purchased
	case FilterPurchased:
		return l.Purchased
	case FilterMine:
		return l.CreatedBy == actorName
	case FilterVerified:
		return l.Verified
	case FilterInspectionScheduled:
		return l.InspectionScheduled
	default:
		return true
	}
}

func docFromLead(l *Lead) map[string]any {
	history := make([]map[string]any, 0, l.History.Len())
	for _, entry := range l.History.Entries() {
		history = append(history, map[string]any{
			"timestamp": entry.At.Format(time.RFC3339Nano),
			"changedBy": entry.ChangedBy,
			"action":    entry.Action,
			"field":     entry.Field,
			"oldValue":  entry.OldValue,
			"newValue":  entry.NewValue,
		})
	}
	return map[string]any{
		"id":                  l.ID,
		"name":                l.Name,
		"phone":               l.Phone,
		"email":               l.Email,
		"address":             l.Address,
		"foundationType":      l.FoundationType,
		"sourceOfLead":        l.SourceOfLead,
		"notes":               l.Notes,
		"inspectionDate":      l.InspectionDate,
		"workStartDate":       l.WorkStartDate,
		"workEndDate":         l.WorkEndDate,
		"workNotes":           l.WorkNotes,
		"assignedRepId":       l.AssignedRepID,
		"createdBy":           l.CreatedBy,
		"createdAt":           l.CreatedAt.Format(time.RFC3339Nano),
		"verified":            l.Verified,
		"inspectionScheduled": l.InspectionScheduled,
		"purchased":           l.Purchased,
		"status":              l.Status,
		"history":             history,
	}
}
