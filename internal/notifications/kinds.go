package notifications

import (
	"fmt"

	"github.com/clearforum/backend/internal/models"
)

// FanOutMode decides whether a subscription collapses unread notifications
// into one or keeps every event as an independent notification.
type FanOutMode int

const (
	// SingleNotification keeps at most one unread notification per
	// subscription; further events while unread either collapse into it or
	// are dropped.
	SingleNotification FanOutMode = iota
	// MultipleNotification creates an independent notification per event.
	MultipleNotification
)

// KindSpec is the behavior of one subscription kind: what entity type it
// watches, how notifications fan out, and how a notification's display
// values derive from the triggering content.
type KindSpec struct {
	TargetKinds []models.EntityKind
	Mode        FanOutMode
	Title       func(c Content) string
	URL         func(c Content) string
}

// kindRegistry replaces the subscription class hierarchy of older designs
// with a flat strategy table.
var kindRegistry = map[models.SubscriptionKind]KindSpec{
	models.KindTopicAnswer: {
		TargetKinds: []models.EntityKind{models.EntityTopic},
		Mode:        SingleNotification,
		Title:       func(c Content) string { return c.Title },
		URL:         func(c Content) string { return c.URL },
	},
	models.KindArticleAnswer: {
		TargetKinds: []models.EntityKind{models.EntityArticle},
		Mode:        SingleNotification,
		Title:       func(c Content) string { return c.Title },
		URL:         func(c Content) string { return c.URL },
	},
	models.KindTutorialAnswer: {
		TargetKinds: []models.EntityKind{models.EntityTutorial},
		Mode:        SingleNotification,
		Title:       func(c Content) string { return c.Title },
		URL:         func(c Content) string { return c.URL },
	},
	models.KindNewTopicForum: {
		TargetKinds: []models.EntityKind{models.EntityForum},
		Mode:        MultipleNotification,
		Title:       func(c Content) string { return c.Title },
		URL:         func(c Content) string { return c.URL },
	},
	models.KindNewTopicTag: {
		TargetKinds: []models.EntityKind{models.EntityTag},
		Mode:        MultipleNotification,
		Title:       func(c Content) string { return c.Title },
		URL:         func(c Content) string { return c.URL },
	},
	models.KindPublicationUpdate: {
		TargetKinds: []models.EntityKind{models.EntityArticle, models.EntityTutorial},
		Mode:        SingleNotification,
		Title:       func(c Content) string { return fmt.Sprintf("%s (updated)", c.Title) },
		URL:         func(c Content) string { return c.URL },
	},
}

// SpecFor returns the behavior of a subscription kind.
func SpecFor(kind models.SubscriptionKind) (KindSpec, error) {
	spec, ok := kindRegistry[kind]
	if !ok {
		return KindSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return spec, nil
}

// FollowKindFor maps a followable target kind to the subscription kind an
// explicit follow action creates on it.
func FollowKindFor(target models.EntityKind) (models.SubscriptionKind, error) {
	switch target {
	case models.EntityForum:
		return models.KindNewTopicForum, nil
	case models.EntityTag:
		return models.KindNewTopicTag, nil
	case models.EntityTopic:
		return models.KindTopicAnswer, nil
	case models.EntityArticle:
		return models.KindArticleAnswer, nil
	case models.EntityTutorial:
		return models.KindTutorialAnswer, nil
	}
	return "", fmt.Errorf("%w: no follow kind for target %q", ErrUnknownKind, target)
}

// route binds a created-content kind to the subscription kind it triggers
// and the targets that kind is resolved against.
type route struct {
	kind    models.SubscriptionKind
	targets func(ev ContentCreatedEvent) []models.TargetRef
}

func parentTarget(ev ContentCreatedEvent) []models.TargetRef {
	return []models.TargetRef{ev.Parent}
}

// contentRoutes defines, per created content kind, which subscriptions fan
// out. A new topic notifies the forum's followers and each tag's followers;
// a new post notifies the topic's followers, and so on.
var contentRoutes = map[models.EntityKind][]route{
	models.EntityTopic: {
		{kind: models.KindNewTopicForum, targets: parentTarget},
		{kind: models.KindNewTopicTag, targets: func(ev ContentCreatedEvent) []models.TargetRef {
			refs := make([]models.TargetRef, 0, len(ev.TagIDs))
			for _, id := range ev.TagIDs {
				refs = append(refs, models.TargetRef{Kind: models.EntityTag, ID: id})
			}
			return refs
		}},
	},
	models.EntityPost: {
		{kind: models.KindTopicAnswer, targets: parentTarget},
	},
	models.EntityReaction: {
		{kind: models.KindArticleAnswer, targets: parentTarget},
	},
	models.EntityNote: {
		{kind: models.KindTutorialAnswer, targets: parentTarget},
	},
}

// autoFollowRule describes how the actor of a created content item is
// subscribed to future activity on it.
type autoFollowRule struct {
	kind   models.SubscriptionKind
	target func(ev ContentCreatedEvent) models.TargetRef
}

var autoFollowRules = map[models.EntityKind]autoFollowRule{
	// Creating a topic follows the topic itself; answering follows the
	// container that was answered.
	models.EntityTopic:    {kind: models.KindTopicAnswer, target: func(ev ContentCreatedEvent) models.TargetRef { return ev.Content.Ref() }},
	models.EntityPost:     {kind: models.KindTopicAnswer, target: func(ev ContentCreatedEvent) models.TargetRef { return ev.Parent }},
	models.EntityReaction: {kind: models.KindArticleAnswer, target: func(ev ContentCreatedEvent) models.TargetRef { return ev.Parent }},
	models.EntityNote:     {kind: models.KindTutorialAnswer, target: func(ev ContentCreatedEvent) models.TargetRef { return ev.Parent }},
}
