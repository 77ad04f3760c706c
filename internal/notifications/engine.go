package notifications

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clearforum/backend/internal/models"
	"github.com/clearforum/backend/internal/repositories"
)

// Engine is the event router: content modules hand it domain events, it
// resolves the matching subscriptions and drives notification creation,
// collapse, read reconciliation, email dispatch and the actor's
// auto-follow. Fan-out runs inline in the caller's request; persistence
// errors surface to the caller, email errors never do.
type Engine struct {
	db         *gorm.DB
	subs       repositories.SubscriptionRepository
	notifs     repositories.NotificationRepository
	profiles   repositories.ProfileRepository
	dispatcher *Dispatcher
	counter    *UnreadCounter
	log        *zap.Logger
	locks      stripedLock
}

// NewEngine creates an Engine. dispatcher and counter may be nil (no email,
// no cache).
func NewEngine(db *gorm.DB, subs repositories.SubscriptionRepository, notifs repositories.NotificationRepository, profiles repositories.ProfileRepository, dispatcher *Dispatcher, counter *UnreadCounter, log *zap.Logger) *Engine {
	return &Engine{
		db:         db,
		subs:       subs,
		notifs:     notifs,
		profiles:   profiles,
		dispatcher: dispatcher,
		counter:    counter,
		log:        log,
	}
}

// ContentCreated fans a new content item out to every active subscriber of
// the targets it touches, except the actor, then auto-subscribes the actor
// to future activity on what they just created or answered.
func (e *Engine) ContentCreated(ctx context.Context, ev ContentCreatedEvent) error {
	routes, ok := contentRoutes[ev.Content.Kind]
	if !ok {
		return fmt.Errorf("%w: no fan-out for content kind %q", ErrUnknownKind, ev.Content.Kind)
	}

	for _, rt := range routes {
		spec, err := SpecFor(rt.kind)
		if err != nil {
			return err
		}
		for _, target := range rt.targets(ev) {
			subscribers, err := e.subs.ListSubscribers(target, rt.kind, false)
			if err != nil {
				return err
			}
			for _, sub := range subscribers {
				if sub.ProfileID == ev.ActorID {
					continue
				}
				if err := e.fanOut(ctx, sub, spec, ev.Content, ev.ActorID); err != nil {
					return err
				}
			}
		}
	}

	rule, ok := autoFollowRules[ev.Content.Kind]
	if !ok {
		return nil
	}
	_, err := e.subs.GetOrCreateActive(ev.ActorID, rule.target(ev), rule.kind, false)
	return err
}

// ContentPublished fans a republished publication out to its
// publication-update subscribers and (re)subscribes the publishing author.
func (e *Engine) ContentPublished(ctx context.Context, ev ContentPublishedEvent) error {
	if ev.Content.Kind != models.EntityArticle && ev.Content.Kind != models.EntityTutorial {
		return fmt.Errorf("%w: cannot publish content kind %q", ErrUnknownKind, ev.Content.Kind)
	}
	spec, err := SpecFor(models.KindPublicationUpdate)
	if err != nil {
		return err
	}

	subscribers, err := e.subs.ListSubscribers(ev.Content.Ref(), models.KindPublicationUpdate, false)
	if err != nil {
		return err
	}
	for _, sub := range subscribers {
		if sub.ProfileID == ev.ActorID {
			continue
		}
		if err := e.fanOut(ctx, sub, spec, ev.Content, ev.ActorID); err != nil {
			return err
		}
	}

	_, err = e.subs.GetOrCreateActive(ev.ActorID, ev.Content.Ref(), models.KindPublicationUpdate, false)
	return err
}

// ContentRead marks the reader's notifications about a container as read:
// whatever their subscription to the container produced, plus any
// notification pointing at the container itself (a forum or tag follower
// reading the announced topic).
func (e *Engine) ContentRead(ctx context.Context, ev ContentReadEvent) error {
	sub, err := e.subs.GetExisting(ev.ReaderID, ev.Target)
	if err != nil {
		return err
	}
	if sub != nil {
		if err := e.notifs.MarkReadBySubscription(sub.ID); err != nil {
			return err
		}
	}
	if err := e.notifs.MarkReadForContent(ev.ReaderID, ev.Target); err != nil {
		return err
	}
	e.counter.Invalidate(ctx, ev.ReaderID)
	return nil
}

// AnswerMarkedUnread resurfaces a notification for one answer the reader
// explicitly marked unread. No email: this is the reader's own action, not
// a broadcast. The earliest-unread rule applies against any notification
// already unread on the subscription.
func (e *Engine) AnswerMarkedUnread(ctx context.Context, ev AnswerUnreadEvent) error {
	sub, err := e.subs.GetExisting(ev.ReaderID, ev.Parent)
	if err != nil {
		return err
	}
	if sub == nil || !sub.IsActive {
		return fmt.Errorf("%w: %d has no subscription to %s", ErrNotFound, ev.ReaderID, ev.Parent)
	}
	spec, err := SpecFor(sub.Kind)
	if err != nil {
		return err
	}

	title := spec.Title(ev.Answer)
	url := spec.URL(ev.Answer)

	unlock := e.locks.lock(fanOutKey(sub.ProfileID, sub.Target()))
	defer unlock()

	err = e.db.Transaction(func(tx *gorm.DB) error {
		subs := e.subs.WithTx(tx)
		notifs := e.notifs.WithTx(tx)

		last, err := e.lastNotification(notifs, sub)
		if err != nil {
			return err
		}
		if last != nil && !last.IsRead {
			if ev.Answer.Position < last.ContentOrder {
				return notifs.RewriteTarget(last.ID, ev.Answer.Ref(), ev.Answer.Position, last.SenderID, title, url)
			}
			return nil
		}

		n := &models.Notification{
			SubscriptionID: sub.ID,
			TargetKind:     ev.Answer.Kind,
			TargetID:       ev.Answer.ID,
			ContentOrder:   ev.Answer.Position,
			SenderID:       ev.AuthorID,
			Title:          title,
			URL:            url,
		}
		if err := notifs.Create(n); err != nil {
			return err
		}
		return subs.SetLastNotification(sub.ID, n.ID)
	})
	if err != nil {
		return err
	}
	e.counter.Invalidate(ctx, ev.ReaderID)
	return nil
}

// fanOut applies the kind's fan-out policy to one subscription. For
// single-notification kinds the check-then-insert runs inside one
// transaction under a per-(profile, target) lock so two concurrent events
// cannot both observe "no unread notification". Email goes out only for a
// notification created here, after it is durably stored.
func (e *Engine) fanOut(ctx context.Context, sub models.Subscription, spec KindSpec, content Content, senderID uint) error {
	title := spec.Title(content)
	url := spec.URL(content)

	unlock := e.locks.lock(fanOutKey(sub.ProfileID, sub.Target()))
	defer unlock()

	var created *models.Notification
	err := e.db.Transaction(func(tx *gorm.DB) error {
		subs := e.subs.WithTx(tx)
		notifs := e.notifs.WithTx(tx)

		if spec.Mode == SingleNotification {
			cur, err := subs.GetExisting(sub.ProfileID, sub.Target())
			if err != nil {
				return err
			}
			if cur == nil || !cur.IsActive {
				// Unsubscribed between listing and delivery.
				return nil
			}
			last, err := e.lastNotification(notifs, *cur)
			if err != nil {
				return err
			}
			if last != nil && !last.IsRead {
				if content.Position < last.ContentOrder {
					// The incoming content happened earlier than what the
					// unread notification points at: rewrite it in place so
					// the subscriber lands on the earliest unread item.
					return notifs.RewriteTarget(last.ID, content.Ref(), content.Position, senderID, title, url)
				}
				// Newer or same content while unread: nothing to add.
				return nil
			}
		}

		n := &models.Notification{
			SubscriptionID: sub.ID,
			TargetKind:     content.Kind,
			TargetID:       content.ID,
			ContentOrder:   content.Position,
			SenderID:       senderID,
			Title:          title,
			URL:            url,
		}
		if err := notifs.Create(n); err != nil {
			return err
		}
		if err := subs.SetLastNotification(sub.ID, n.ID); err != nil {
			return err
		}
		created = n
		return nil
	})
	if err != nil {
		return err
	}

	if created != nil {
		e.counter.Invalidate(ctx, sub.ProfileID)
		if sub.ByEmail {
			e.email(ctx, sub, *created)
		}
	}
	return nil
}

// lastNotification loads the notification a subscription points at, if any.
func (e *Engine) lastNotification(notifs repositories.NotificationRepository, sub models.Subscription) (*models.Notification, error) {
	if sub.LastNotificationID == nil {
		return nil, nil
	}
	last, err := notifs.GetByID(*sub.LastNotificationID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return last, nil
}

func (e *Engine) email(ctx context.Context, sub models.Subscription, n models.Notification) {
	if e.dispatcher == nil {
		return
	}
	recipient, err := e.profiles.GetProfileByID(sub.ProfileID)
	if err != nil {
		e.log.Warn("skipping email, recipient profile not found",
			zap.Uint("profile_id", sub.ProfileID), zap.Error(err))
		return
	}
	author := ""
	if sender, err := e.profiles.GetProfileByID(n.SenderID); err == nil {
		author = sender.Username
	}
	e.dispatcher.MaybeSend(ctx, sub, n, *recipient, author)
}

func fanOutKey(profileID uint, target models.TargetRef) string {
	return fmt.Sprintf("%d/%s", profileID, target)
}
