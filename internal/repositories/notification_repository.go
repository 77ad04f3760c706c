package repositories

import (
	"errors"

	"github.com/clearforum/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	GetOwned(profileID, notificationID uint) (*models.Notification, error)
	RewriteTarget(id uint, target models.TargetRef, contentOrder int, senderID uint, title, url string) error
	MarkRead(id uint) error
	MarkReadBySubscription(subscriptionID uint) error
	MarkReadForContent(profileID uint, content models.TargetRef) error
	MarkAllRead(profileID uint) error
	ListUnread(profileID uint, sortAsc bool, filterKind models.EntityKind, page, limit int) ([]models.Notification, int64, error)
	UnreadCount(profileID uint) (int64, error)
	WithTx(tx *gorm.DB) NotificationRepository
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PostgresNotificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &PostgresNotificationRepository{db: tx}
}

func (r *PostgresNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *PostgresNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// GetOwned fetches a notification only if it belongs to one of the profile's
// subscriptions, so callers cannot touch somebody else's feed.
func (r *PostgresNotificationRepository) GetOwned(profileID, notificationID uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.
		Joins("JOIN subscriptions ON subscriptions.id = notifications.subscription_id").
		Where("notifications.id = ? AND subscriptions.profile_id = ?", notificationID, profileID).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// RewriteTarget repoints an unread notification at different content in
// place. CreatedAt and identity stay untouched: the subscriber sees the
// earliest unread item under the original notification, not a new entry.
func (r *PostgresNotificationRepository) RewriteTarget(id uint, target models.TargetRef, contentOrder int, senderID uint, title, url string) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"target_kind":   target.Kind,
			"target_id":     target.ID,
			"content_order": contentOrder,
			"sender_id":     senderID,
			"title":         title,
			"url":           url,
			"is_read":       false,
		}).Error
}

func (r *PostgresNotificationRepository) MarkRead(id uint) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

// MarkReadBySubscription marks every unread notification of one subscription
// as read.
func (r *PostgresNotificationRepository) MarkReadBySubscription(subscriptionID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("subscription_id = ? AND is_read = ?", subscriptionID, false).
		Update("is_read", true).Error
}

// MarkReadForContent marks as read every unread notification of the profile
// that points at the given content item, across all of the profile's
// subscriptions (a topic may have been announced by both a forum and a tag
// subscription).
func (r *PostgresNotificationRepository) MarkReadForContent(profileID uint, content models.TargetRef) error {
	sub := r.db.Model(&models.Subscription{}).Select("id").Where("profile_id = ?", profileID)
	return r.db.Model(&models.Notification{}).
		Where("subscription_id IN (?) AND target_kind = ? AND target_id = ? AND is_read = ?",
			sub, content.Kind, content.ID, false).
		Update("is_read", true).Error
}

func (r *PostgresNotificationRepository) MarkAllRead(profileID uint) error {
	sub := r.db.Model(&models.Subscription{}).Select("id").Where("profile_id = ?", profileID)
	return r.db.Model(&models.Notification{}).
		Where("subscription_id IN (?) AND is_read = ?", sub, false).
		Update("is_read", true).Error
}

// ListUnread returns a page of the profile's unread notifications ordered by
// creation date, optionally narrowed to one target kind.
func (r *PostgresNotificationRepository) ListUnread(profileID uint, sortAsc bool, filterKind models.EntityKind, page, limit int) ([]models.Notification, int64, error) {
	base := r.db.Model(&models.Notification{}).
		Joins("JOIN subscriptions ON subscriptions.id = notifications.subscription_id").
		Where("subscriptions.profile_id = ? AND notifications.is_read = ?", profileID, false)
	if filterKind != "" {
		base = base.Where("notifications.target_kind = ?", filterKind)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "notifications.created_at ASC, notifications.id ASC"
	if !sortAsc {
		order = "notifications.created_at DESC, notifications.id DESC"
	}

	var notifications []models.Notification
	err := base.Order(order).
		Offset((page - 1) * limit).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *PostgresNotificationRepository) UnreadCount(profileID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Joins("JOIN subscriptions ON subscriptions.id = notifications.subscription_id").
		Where("subscriptions.profile_id = ? AND notifications.is_read = ?", profileID, false).
		Count(&count).Error
	return count, err
}

// IsNotFound reports whether err is the record-not-found error of the
// persistence layer.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
