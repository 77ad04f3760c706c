package models

import "fmt"

// EntityKind identifies the type of an entity a subscription watches or a
// notification points at. Together with a numeric ID it replaces the
// polymorphic references used between the content domains and this engine.
type EntityKind string

const (
	EntityForum    EntityKind = "forum"
	EntityTag      EntityKind = "tag"
	EntityTopic    EntityKind = "topic"
	EntityPost     EntityKind = "post"
	EntityArticle  EntityKind = "article"
	EntityReaction EntityKind = "reaction"
	EntityTutorial EntityKind = "tutorial"
	EntityNote     EntityKind = "note"
)

// Valid reports whether k is one of the known entity kinds.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityForum, EntityTag, EntityTopic, EntityPost,
		EntityArticle, EntityReaction, EntityTutorial, EntityNote:
		return true
	}
	return false
}

// TargetRef is a stable (kind, id) reference to an entity owned by a
// content module.
type TargetRef struct {
	Kind EntityKind `json:"kind" validate:"required"`
	ID   uint       `json:"id" validate:"required"`
}

func (t TargetRef) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}
