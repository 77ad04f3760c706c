package repositories

import (
	"errors"

	"github.com/clearforum/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConflict is returned when concurrent subscription upserts for the same
// (profile, target) keep colliding after the bounded retries.
var ErrConflict = errors.New("subscription upsert conflict")

// maxUpsertRetries bounds the create/refetch loop in GetOrCreateActive.
const maxUpsertRetries = 3

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	GetExisting(profileID uint, target models.TargetRef) (*models.Subscription, error)
	GetOrCreateActive(profileID uint, target models.TargetRef, kind models.SubscriptionKind, byEmail bool) (*models.Subscription, error)
	Deactivate(profileID uint, target models.TargetRef) error
	ActivateEmail(profileID uint, target models.TargetRef, kind models.SubscriptionKind) (*models.Subscription, error)
	DeactivateEmail(profileID uint, target models.TargetRef) error
	ListSubscribers(target models.TargetRef, kind models.SubscriptionKind, onlyByEmail bool) ([]models.Subscription, error)
	SetLastNotification(subscriptionID, notificationID uint) error
	WithTx(tx *gorm.DB) SubscriptionRepository
}

// PostgresSubscriptionRepository implements SubscriptionRepository for PostgreSQL
type PostgresSubscriptionRepository struct {
	db *gorm.DB
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository
func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PostgresSubscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &PostgresSubscriptionRepository{db: tx}
}

// GetExisting returns the subscription of a profile to a target, or nil when
// none exists. At most one row can match thanks to the composite unique index.
func (r *PostgresSubscriptionRepository) GetExisting(profileID uint, target models.TargetRef) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("profile_id = ? AND target_kind = ? AND target_id = ?",
		profileID, target.Kind, target.ID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetOrCreateActive returns the profile's subscription to the target,
// creating it when absent and reactivating it when inactive. The insert goes
// through an ON CONFLICT DO NOTHING upsert on the (profile, target) unique
// index so concurrent calls cannot produce duplicate rows; a loser of the
// race refetches the winner's row instead.
func (r *PostgresSubscriptionRepository) GetOrCreateActive(profileID uint, target models.TargetRef, kind models.SubscriptionKind, byEmail bool) (*models.Subscription, error) {
	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		sub := &models.Subscription{
			ProfileID:  profileID,
			TargetKind: target.Kind,
			TargetID:   target.ID,
			Kind:       kind,
			IsActive:   true,
			ByEmail:    byEmail,
		}
		res := r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "profile_id"}, {Name: "target_kind"}, {Name: "target_id"},
			},
			DoNothing: true,
		}).Create(sub)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return sub, nil
		}

		existing, err := r.GetExisting(profileID, target)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			// Row vanished between the conflicting insert and the refetch.
			continue
		}

		updates := map[string]interface{}{"is_active": true}
		if byEmail {
			updates["by_email"] = true
		}
		if err := r.db.Model(&models.Subscription{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.IsActive = true
		if byEmail {
			existing.ByEmail = true
		}
		return existing, nil
	}
	return nil, ErrConflict
}

// Deactivate turns the subscription off without deleting it, so notification
// history survives a later re-follow. Email delivery is switched off with it
// since an inactive subscription cannot receive email. No-op when no active
// subscription exists.
func (r *PostgresSubscriptionRepository) Deactivate(profileID uint, target models.TargetRef) error {
	return r.db.Model(&models.Subscription{}).
		Where("profile_id = ? AND target_kind = ? AND target_id = ? AND is_active = ?",
			profileID, target.Kind, target.ID, true).
		Updates(map[string]interface{}{"is_active": false, "by_email": false}).Error
}

// ActivateEmail turns on email delivery, following the target first if needed.
func (r *PostgresSubscriptionRepository) ActivateEmail(profileID uint, target models.TargetRef, kind models.SubscriptionKind) (*models.Subscription, error) {
	return r.GetOrCreateActive(profileID, target, kind, true)
}

// DeactivateEmail turns off email delivery but keeps the subscription active.
func (r *PostgresSubscriptionRepository) DeactivateEmail(profileID uint, target models.TargetRef) error {
	return r.db.Model(&models.Subscription{}).
		Where("profile_id = ? AND target_kind = ? AND target_id = ?",
			profileID, target.Kind, target.ID).
		Update("by_email", false).Error
}

// ListSubscribers returns the active subscriptions of the given kind to a
// target, at most one per profile. The unique index already guarantees that
// for current data; rows imported from before the index may carry
// duplicates, so the result is deduplicated by profile.
func (r *PostgresSubscriptionRepository) ListSubscribers(target models.TargetRef, kind models.SubscriptionKind, onlyByEmail bool) ([]models.Subscription, error) {
	q := r.db.Where("target_kind = ? AND target_id = ? AND kind = ? AND is_active = ?",
		target.Kind, target.ID, kind, true)
	if onlyByEmail {
		q = q.Where("by_email = ?", true)
	}
	var subs []models.Subscription
	if err := q.Order("id").Find(&subs).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(subs))
	deduped := subs[:0]
	for _, sub := range subs {
		if seen[sub.ProfileID] {
			continue
		}
		seen[sub.ProfileID] = true
		deduped = append(deduped, sub)
	}
	return deduped, nil
}

// SetLastNotification points the subscription at its most recent notification.
func (r *PostgresSubscriptionRepository) SetLastNotification(subscriptionID, notificationID uint) error {
	return r.db.Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Update("last_notification_id", notificationID).Error
}
