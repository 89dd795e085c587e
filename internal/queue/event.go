// Package queue defines the domain events exchanged over the message broker
// and the consumer that records them.
package queue

// Queue names; each event type has its own durable queue.
const (
	ApplicationSubmittedQueue = "application.submitted"
	CastingPublishedQueue     = "casting.published"
)

// ApplicationSubmittedEvent is published after a performer applies to a
// casting.
type ApplicationSubmittedEvent struct {
	ApplicationID uint64 `json:"application_id"`
	PerformerID   uint64 `json:"performer_id"`
	CastingID     uint64 `json:"casting_id"`
	CastingTitle  string `json:"casting_title"`
	SentAt        string `json:"sent_at"`
}

// CastingPublishedEvent is published when a casting director creates a
// casting.
type CastingPublishedEvent struct {
	CastingID    uint64 `json:"casting_id"`
	DirectorID   uint64 `json:"director_id"`
	ProductionID uint64 `json:"production_id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Deadline     string `json:"deadline"`
	PublishedAt  string `json:"published_at"`
}
