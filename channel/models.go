package channel

import "time"

// MembersAll marks a channel as readable and writable by every user.
const MembersAll = "all"

// Message is one chat entry inside a channel.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Channel is a named conversation. Members holds display names, or the
// single MembersAll sentinel for open channels.
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	Messages  []Message `json:"messages"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsOpen reports whether the channel admits every user.
func (c Channel) IsOpen() bool {
	for _, m := range c.Members {
		if m == MembersAll {
			return true
		}
	}
	return false
}

// HasMember reports whether displayName may read and post in the channel.
func (c Channel) HasMember(displayName string) bool {
	if c.IsOpen() {
		return true
	}
	for _, m := range c.Members {
		if m == displayName {
			return true
		}
	}
	return false
}
