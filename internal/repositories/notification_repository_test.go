package repositories

import (
	"testing"
	"time"

	"github.com/clearforum/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSubscription(t *testing.T, db *gorm.DB, profileID uint, target models.TargetRef, kind models.SubscriptionKind) *models.Subscription {
	t.Helper()
	sub, err := NewPostgresSubscriptionRepository(db).GetOrCreateActive(profileID, target, kind, false)
	require.NoError(t, err)
	return sub
}

func seedNotification(t *testing.T, db *gorm.DB, subID uint, target models.TargetRef, order int, createdAt time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		SubscriptionID: subID,
		TargetKind:     target.Kind,
		TargetID:       target.ID,
		ContentOrder:   order,
		SenderID:       99,
		Title:          "seed",
		URL:            "/seed",
		CreatedAt:      createdAt,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestRewriteTargetKeepsIdentityAndCreatedAt(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	sub := seedSubscription(t, db, 1, topicRef(10), models.KindTopicAnswer)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := seedNotification(t, db, sub.ID, models.TargetRef{Kind: models.EntityPost, ID: 5}, 5, created)
	require.NoError(t, db.Model(n).Update("is_read", true).Error)

	require.NoError(t, repo.RewriteTarget(n.ID, models.TargetRef{Kind: models.EntityPost, ID: 3}, 3, 42, "earlier answer", "/topics/10#3"))

	got, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.TargetID)
	assert.Equal(t, 3, got.ContentOrder)
	assert.Equal(t, uint(42), got.SenderID)
	assert.False(t, got.IsRead)
	assert.True(t, got.CreatedAt.Equal(created), "rewrite must not move the notification in the feed")
}

func TestGetOwnedRejectsForeignNotification(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	sub := seedSubscription(t, db, 1, topicRef(10), models.KindTopicAnswer)
	n := seedNotification(t, db, sub.ID, topicRef(10), 1, time.Now())

	got, err := repo.GetOwned(1, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	_, err = repo.GetOwned(2, n.ID)
	assert.True(t, IsNotFound(err))
}

func TestListUnreadSortAndFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	sub := seedSubscription(t, db, 1, topicRef(10), models.KindTopicAnswer)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first := seedNotification(t, db, sub.ID, topicRef(11), 1, base)
	second := seedNotification(t, db, sub.ID, models.TargetRef{Kind: models.EntityPost, ID: 7}, 2, base.Add(time.Hour))
	third := seedNotification(t, db, sub.ID, topicRef(12), 3, base.Add(2*time.Hour))
	// Read notifications never show up in the feed.
	read := seedNotification(t, db, sub.ID, topicRef(13), 4, base.Add(3*time.Hour))
	require.NoError(t, repo.MarkRead(read.ID))

	desc, total, err := repo.ListUnread(1, false, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, desc, 3)
	assert.Equal(t, third.ID, desc[0].ID)
	assert.Equal(t, second.ID, desc[1].ID)
	assert.Equal(t, first.ID, desc[2].ID)

	asc, _, err := repo.ListUnread(1, true, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, first.ID, asc[0].ID)

	topicsOnly, total, err := repo.ListUnread(1, false, models.EntityTopic, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, n := range topicsOnly {
		assert.Equal(t, models.EntityTopic, n.TargetKind)
	}
}

func TestListUnreadPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	sub := seedSubscription(t, db, 1, topicRef(10), models.KindTopicAnswer)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedNotification(t, db, sub.ID, topicRef(uint(20+i)), i, base.Add(time.Duration(i)*time.Minute))
	}

	page1, total, err := repo.ListUnread(1, true, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)

	page3, _, err := repo.ListUnread(1, true, "", 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, uint(24), page3[0].TargetID)
}

func TestMarkReadForContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)

	// The same topic announced through a forum and a tag subscription.
	forumSub := seedSubscription(t, db, 1, models.TargetRef{Kind: models.EntityForum, ID: 1}, models.KindNewTopicForum)
	tagSub := seedSubscription(t, db, 1, models.TargetRef{Kind: models.EntityTag, ID: 2}, models.KindNewTopicTag)
	otherSub := seedSubscription(t, db, 2, models.TargetRef{Kind: models.EntityForum, ID: 1}, models.KindNewTopicForum)

	now := time.Now()
	seedNotification(t, db, forumSub.ID, topicRef(50), 1, now)
	seedNotification(t, db, tagSub.ID, topicRef(50), 1, now)
	other := seedNotification(t, db, otherSub.ID, topicRef(50), 1, now)

	require.NoError(t, repo.MarkReadForContent(1, topicRef(50)))

	count, err := repo.UnreadCount(1)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other profiles keep their unread notifications.
	stillUnread, err := repo.GetByID(other.ID)
	require.NoError(t, err)
	assert.False(t, stillUnread.IsRead)
}

func TestMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	sub := seedSubscription(t, db, 1, topicRef(10), models.KindTopicAnswer)
	otherSub := seedSubscription(t, db, 2, topicRef(10), models.KindTopicAnswer)

	now := time.Now()
	seedNotification(t, db, sub.ID, topicRef(11), 1, now)
	seedNotification(t, db, sub.ID, topicRef(12), 2, now)
	foreign := seedNotification(t, db, otherSub.ID, topicRef(11), 1, now)

	require.NoError(t, repo.MarkAllRead(1))

	mine, err := repo.UnreadCount(1)
	require.NoError(t, err)
	assert.Zero(t, mine)

	theirs, err := repo.UnreadCount(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), theirs)

	got, err := repo.GetByID(foreign.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRead)
}
