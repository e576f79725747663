// Package channel implements team messaging: a directory of channels with
// membership-scoped reads and append-only message history.
package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadflow/mirror"
)

var (
	ErrValidation = errors.New("channel: validation failed")
	ErrNotFound   = errors.New("channel: not found")
	ErrNotMember  = errors.New("channel: sender is not a member")
)

// DefaultChannelName is created on startup and open to everyone.
const DefaultChannelName = "Everyone"

// Directory holds all channels in memory and mirrors them best-effort.
type Directory struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	order    []string

	mirror      *mirror.Writer
	idGenerator func() string
	now         func() time.Time
}

// NewDirectory builds a directory pre-seeded with the open default channel.
// writer may be nil for pure in-memory operation.
func NewDirectory(writer *mirror.Writer) *Directory {
	d := &Directory{
		channels:    make(map[string]*Channel),
		mirror:      writer,
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
	d.seedDefault()
	return d
}

func (d *Directory) WithIDGenerator(gen func() string) *Directory {
	d.idGenerator = gen
	return d
}

func (d *Directory) WithClock(now func() time.Time) *Directory {
	d.now = now
	return d
}

func (d *Directory) seedDefault() {
	ch := &Channel{
		ID:        d.idGenerator(),
		Name:      DefaultChannelName,
		Members:   []string{MembersAll},
		Messages:  []Message{},
		CreatedBy: "System",
		CreatedAt: d.now(),
	}
	d.channels[ch.ID] = ch
	d.order = append(d.order, ch.ID)
}

// Create adds a channel. The creator is always a member even when omitted
// from the member list.
func (d *Directory) Create(ctx context.Context, name string, members []string, createdBy string) (Channel, error) {
	if strings.TrimSpace(name) == "" {
		return Channel{}, fmt.Errorf("channel: create: name is required: %w", ErrValidation)
	}
	if len(members) == 0 {
		return Channel{}, fmt.Errorf("channel: create: at least one member is required: %w", ErrValidation)
	}
	// Only the seeded default channel is open; user-created channels name
	// their members explicitly.
	for _, m := range members {
		if m == MembersAll {
			return Channel{}, fmt.Errorf("channel: create: %q is reserved: %w", MembersAll, ErrValidation)
		}
	}

	memberList := make([]string, 0, len(members)+1)
	memberList = append(memberList, members...)
	ch := Channel{Members: memberList}
	if !ch.HasMember(createdBy) {
		memberList = append(memberList, createdBy)
	}

	d.mu.Lock()
	created := &Channel{
		ID:        d.idGenerator(),
		Name:      strings.TrimSpace(name),
		Members:   memberList,
		Messages:  []Message{},
		CreatedBy: createdBy,
		CreatedAt: d.now(),
	}
	d.channels[created.ID] = created
	d.order = append(d.order, created.ID)
	snapshot := cloneChannel(created)
	d.mu.Unlock()

	d.mirror.Insert(mirror.CollectionChannels, snapshot.ID, docFromChannel(snapshot))
	return snapshot, nil
}

// Post appends a message to a channel the sender belongs to.
func (d *Directory) Post(ctx context.Context, channelID, text, sender string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, fmt.Errorf("channel: post: text is required: %w", ErrValidation)
	}

	d.mu.Lock()
	ch, ok := d.channels[channelID]
	if !ok {
		d.mu.Unlock()
		return Message{}, fmt.Errorf("channel: post: %q: %w", channelID, ErrNotFound)
	}
	if !ch.HasMember(sender) {
		d.mu.Unlock()
		return Message{}, fmt.Errorf("channel: post: %q in %q: %w", sender, ch.Name, ErrNotMember)
	}
	msg := Message{
		ID:        d.idGenerator(),
		Text:      text,
		Sender:    sender,
		Timestamp: d.now(),
	}
	ch.Messages = append(ch.Messages, msg)
	snapshot := cloneChannel(ch)
	d.mu.Unlock()

	d.mirror.Update(mirror.CollectionChannels, snapshot.ID, docFromChannel(snapshot))
	return msg, nil
}

// Get returns a channel visible to displayName.
func (d *Directory) Get(ctx context.Context, channelID, displayName string) (Channel, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return Channel{}, fmt.Errorf("channel: get: %q: %w", channelID, ErrNotFound)
	}
	if !ch.HasMember(displayName) {
		return Channel{}, fmt.Errorf("channel: get: %q in %q: %w", displayName, ch.Name, ErrNotMember)
	}
	return cloneChannel(ch), nil
}

// ListVisible returns, in creation order, every channel displayName belongs to.
func (d *Directory) ListVisible(ctx context.Context, displayName string) []Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()

	visible := make([]Channel, 0, len(d.order))
	for _, id := range d.order {
		ch := d.channels[id]
		if ch.HasMember(displayName) {
			visible = append(visible, cloneChannel(ch))
		}
	}
	return visible
}

// Messages returns the channel history in posting order.
func (d *Directory) Messages(ctx context.Context, channelID, displayName string) ([]Message, error) {
	ch, err := d.Get(ctx, channelID, displayName)
	if err != nil {
		return nil, err
	}
	return ch.Messages, nil
}

func cloneChannel(ch *Channel) Channel {
	out := *ch
	out.Members = append([]string(nil), ch.Members...)
	out.Messages = append([]Message(nil), ch.Messages...)
	return out
}

func docFromChannel(ch Channel) map[string]any {
	messages := make([]map[string]any, 0, len(ch.Messages))
	for _, m := range ch.Messages {
		messages = append(messages, map[string]any{
			"id":        m.ID,
			"text":      m.Text,
			"sender":    m.Sender,
			"timestamp": m.Timestamp.Format(time.RFC3339Nano),
		})
	}
	return map[string]any{
		"id":        ch.ID,
		"name":      ch.Name,
		"members":   ch.Members,
		"messages":  messages,
		"createdBy": ch.CreatedBy,
		"createdAt": ch.CreatedAt.Format(time.RFC3339Nano),
	}
}
