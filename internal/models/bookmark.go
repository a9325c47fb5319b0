package models

import "time"

// Bookmark is one persisted bookmark record read from the on-chain store.
// Kind is the tag stored alongside the record; routing is decided from the
// ContentID prefix, so a stale Kind never changes where the id resolves.
type Bookmark struct {
	ContentID string    `json:"content_id"`
	Kind      string    `json:"kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}

// ContentSource identifies which registry a resolved item came from.
type ContentSource string

const (
	SourceNative    ContentSource = "native"
	SourceCommunity ContentSource = "community"
	SourcePortfolio ContentSource = "portfolio"
)

// ContentDescriptor is the normalized result of resolving a bookmark,
// recomputed on every view.
type ContentDescriptor struct {
	Title     string        `json:"title"`
	Summary   string        `json:"summary,omitempty"`
	Author    string        `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
	Category  string        `json:"category,omitempty"`
	Location  string        `json:"location,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Source    ContentSource `json:"source"`
}
