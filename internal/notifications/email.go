package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/clearforum/backend/internal/models"
	"github.com/clearforum/backend/pkg/mailer"
)

// deliveryLogTimeout caps the best-effort audit write.
const deliveryLogTimeout = 3 * time.Second

// Dispatcher decides whether a notification produces an email and performs
// the render/send/audit pipeline. Email is best-effort on top of the already
// persisted notification: every failure here is logged and swallowed.
type Dispatcher struct {
	renderer   mailer.Renderer
	mailer     mailer.Mailer
	deliveries *mongo.Collection
	from       string
	siteName   string
	siteURL    string
	log        *zap.Logger
}

// NewDispatcher creates an email Dispatcher. deliveries may be nil to skip
// the audit log.
func NewDispatcher(renderer mailer.Renderer, m mailer.Mailer, deliveries *mongo.Collection, from, siteName, siteURL string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		renderer:   renderer,
		mailer:     m,
		deliveries: deliveries,
		from:       from,
		siteName:   siteName,
		siteURL:    siteURL,
		log:        log,
	}
}

// MaybeSend emails the recipient about a newly created notification. Only
// notifications that were just created qualify: a collapse rewrite of an
// existing unread notification never re-emails, so one unread cycle costs at
// most one email.
func (d *Dispatcher) MaybeSend(ctx context.Context, sub models.Subscription, n models.Notification, recipient models.Profile, author string) {
	if d == nil || !sub.ByEmail {
		return
	}

	subject := fmt.Sprintf("%s - %s", d.siteName, n.Title)
	html, text, err := d.renderer.Render(string(sub.Kind), map[string]interface{}{
		"Username": recipient.Username,
		"Author":   author,
		"Title":    n.Title,
		"URL":      d.siteURL + n.URL,
		"SiteName": d.siteName,
	})
	if err != nil {
		d.log.Error("notification email render failed",
			zap.Uint("notification_id", n.ID), zap.String("kind", string(sub.Kind)), zap.Error(err))
		return
	}

	if err := d.mailer.Send(subject, d.from, recipient.Email, html, text); err != nil {
		d.log.Warn("notification email send failed",
			zap.Uint("notification_id", n.ID), zap.Uint("profile_id", recipient.ID), zap.Error(err))
		return
	}

	d.audit(n, recipient, subject)
}

func (d *Dispatcher) audit(n models.Notification, recipient models.Profile, subject string) {
	if d.deliveries == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), deliveryLogTimeout)
	defer cancel()

	record := models.EmailDelivery{
		ID:             uuid.New().String(),
		NotificationID: n.ID,
		ProfileID:      recipient.ID,
		Recipient:      recipient.Email,
		Subject:        subject,
		SentAt:         time.Now(),
	}
	if _, err := d.deliveries.InsertOne(ctx, record); err != nil {
		d.log.Warn("email delivery audit write failed",
			zap.Uint("notification_id", n.ID), zap.Error(err))
	}
}
