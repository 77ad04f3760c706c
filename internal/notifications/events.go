package notifications

import "github.com/clearforum/backend/internal/models"

// Content describes the content item a domain event is about, as supplied by
// the owning content module. Title and URL are display values for the
// discussion the item belongs to; Position is the item's monotonic ordering
// value within its container (a post's position in its topic).
type Content struct {
	Kind     models.EntityKind
	ID       uint
	Title    string
	URL      string
	Position int
}

// Ref returns the content item as a TargetRef.
func (c Content) Ref() models.TargetRef {
	return models.TargetRef{Kind: c.Kind, ID: c.ID}
}

// ContentCreatedEvent is raised by a content module when a new item exists:
// a topic in a forum, a post in a topic, a reaction on an article, a note on
// a tutorial. Parent is the container the item was created in (the forum for
// a topic, the topic for a post, ...). TagIDs carries the topic's tags when
// the created item is a topic.
type ContentCreatedEvent struct {
	Content Content
	Parent  models.TargetRef
	TagIDs  []uint
	ActorID uint
}

// ContentReadEvent is raised when a profile reads a container: their
// notifications about it flip to read.
type ContentReadEvent struct {
	Target   models.TargetRef
	ReaderID uint
}

// AnswerUnreadEvent is raised when a profile explicitly marks a single
// answer as unread again. It resurfaces a notification without email.
// AuthorID is the answer's author, recorded as the notification sender.
type AnswerUnreadEvent struct {
	Answer   Content
	Parent   models.TargetRef
	AuthorID uint
	ReaderID uint
}

// ContentPublishedEvent is raised when a publication (article, tutorial) is
// republished. It fans out to publication-update subscribers of the content
// itself.
type ContentPublishedEvent struct {
	Content Content
	ActorID uint
}
