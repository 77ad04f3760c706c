package models

import "time"

// SubscriptionKind names the policy a subscription follows when events
// arrive on its target: what triggers it, how notifications collapse, and
// how titles and links are derived.
type SubscriptionKind string

const (
	// KindTopicAnswer notifies about new posts in a followed topic.
	KindTopicAnswer SubscriptionKind = "topic_answer"
	// KindArticleAnswer notifies about new reactions on a followed article.
	KindArticleAnswer SubscriptionKind = "article_answer"
	// KindTutorialAnswer notifies about new notes on a followed tutorial.
	KindTutorialAnswer SubscriptionKind = "tutorial_answer"
	// KindNewTopicForum notifies about every new topic in a followed forum.
	KindNewTopicForum SubscriptionKind = "new_topic_forum"
	// KindNewTopicTag notifies about every new topic carrying a followed tag.
	KindNewTopicTag SubscriptionKind = "new_topic_tag"
	// KindPublicationUpdate notifies when a followed publication is republished.
	KindPublicationUpdate SubscriptionKind = "publication_update"
)

// Subscription registers a profile's durable interest in a target entity.
// At most one row exists per (profile, target); unfollowing deactivates the
// row instead of deleting it so notification history survives re-follows.
type Subscription struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	ProfileID  uint             `json:"profile_id" gorm:"index;uniqueIndex:idx_sub_profile_target"`
	TargetKind EntityKind       `json:"target_kind" gorm:"size:20;uniqueIndex:idx_sub_profile_target"`
	TargetID   uint             `json:"target_id" gorm:"uniqueIndex:idx_sub_profile_target"`
	Kind       SubscriptionKind `json:"kind" gorm:"size:30;index"`
	IsActive   bool             `json:"is_active" gorm:"index"`
	ByEmail    bool             `json:"by_email"`
	CreatedAt  time.Time        `json:"created_at"`

	// LastNotificationID points at the most recent notification produced by
	// this subscription. For single-notification kinds it is the guard that
	// keeps at most one unread notification alive at a time.
	LastNotificationID *uint         `json:"last_notification_id"`
	LastNotification   *Notification `json:"-" gorm:"foreignKey:LastNotificationID"`
}

// Target returns the subscription's watched entity as a TargetRef.
func (s *Subscription) Target() TargetRef {
	return TargetRef{Kind: s.TargetKind, ID: s.TargetID}
}

// FollowRequest toggles a subscription on a target.
type FollowRequest struct {
	TargetKind string `json:"target_kind" validate:"required"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Follow     bool   `json:"follow"`
}

// FollowEmailRequest toggles email delivery for a subscription. Turning
// email on implies following the target.
type FollowEmailRequest struct {
	TargetKind string `json:"target_kind" validate:"required"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Email      bool   `json:"email"`
}
