package models

import "time"

// Notification is one delivered record of "something happened" owned by
// exactly one subscription. The target it points at may differ from the
// subscription's target: a forum subscription produces notifications about
// topics, a topic subscription about posts.
type Notification struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	SubscriptionID uint       `json:"subscription_id" gorm:"index"`
	TargetKind     EntityKind `json:"target_kind" gorm:"size:20;index"`
	TargetID       uint       `json:"target_id"`
	// ContentOrder is the monotonic ordering value of the pointed-at content
	// within its container (a post's position in its topic). The unread
	// collapse rule compares against it so the notification keeps pointing
	// at the earliest unread item instead of silently skipping it.
	ContentOrder int       `json:"content_order"`
	SenderID     uint      `json:"sender_id" gorm:"index"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	IsRead       bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// EmailDelivery is the audit record appended to MongoDB after an email for
// a notification was handed to the transport. Written best-effort; never
// consulted on the delivery path.
type EmailDelivery struct {
	ID             string    `bson:"_id"`
	NotificationID uint      `bson:"notification_id"`
	ProfileID      uint      `bson:"profile_id"`
	Recipient      string    `bson:"recipient"`
	Subject        string    `bson:"subject"`
	SentAt         time.Time `bson:"sent_at"`
}
