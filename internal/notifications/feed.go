package notifications

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clearforum/backend/internal/models"
	"github.com/clearforum/backend/internal/repositories"
)

// SortOrder selects the creation-date ordering of the feed.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListOptions narrows and orders a feed listing.
type ListOptions struct {
	Sort       SortOrder
	FilterKind models.EntityKind // empty means no filter
	Page       int
	Limit      int
}

// Feed is the read side of the engine: unread listings, counters and
// mark-as-read, scoped to one profile.
type Feed struct {
	notifs  repositories.NotificationRepository
	counter *UnreadCounter
	log     *zap.Logger
}

// NewFeed creates a Feed. counter may be nil.
func NewFeed(notifs repositories.NotificationRepository, counter *UnreadCounter, log *zap.Logger) *Feed {
	return &Feed{notifs: notifs, counter: counter, log: log}
}

// ListUnread returns one page of the profile's unread notifications plus the
// total unread count matching the filter.
func (f *Feed) ListUnread(profileID uint, opts ListOptions) ([]models.Notification, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 50 {
		opts.Limit = 20
	}
	if opts.FilterKind != "" && !opts.FilterKind.Valid() {
		return nil, 0, fmt.Errorf("%w: filter %q", ErrUnknownKind, opts.FilterKind)
	}
	return f.notifs.ListUnread(profileID, opts.Sort != SortDesc, opts.FilterKind, opts.Page, opts.Limit)
}

// UnreadCount returns the profile's unread notification count, served from
// the cache when warm.
func (f *Feed) UnreadCount(ctx context.Context, profileID uint) (int64, error) {
	return f.counter.Get(ctx, profileID, func() (int64, error) {
		return f.notifs.UnreadCount(profileID)
	})
}

// MarkRead flips one of the profile's notifications to read. Returns
// ErrNotFound when the notification does not exist or belongs to somebody
// else.
func (f *Feed) MarkRead(ctx context.Context, profileID, notificationID uint) error {
	n, err := f.notifs.GetOwned(profileID, notificationID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: notification %d", ErrNotFound, notificationID)
		}
		return err
	}
	if n.IsRead {
		return nil
	}
	if err := f.notifs.MarkRead(n.ID); err != nil {
		return err
	}
	f.counter.Invalidate(ctx, profileID)
	return nil
}

// MarkAllRead flips every unread notification of the profile to read.
func (f *Feed) MarkAllRead(ctx context.Context, profileID uint) error {
	if err := f.notifs.MarkAllRead(profileID); err != nil {
		return err
	}
	f.counter.Invalidate(ctx, profileID)
	return nil
}
