package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clearforum/backend/internal/models"
	"github.com/clearforum/backend/internal/notifications"
	"github.com/clearforum/backend/internal/repositories"
)

// apiEnv wires the handlers over an in-memory database, without the email
// dispatcher and Redis cache.
type apiEnv struct {
	db     *gorm.DB
	e      *echo.Echo
	subs   repositories.SubscriptionRepository
	notifs repositories.NotificationRepository
	engine *notifications.Engine

	notificationHandler *NotificationHandler
	followHandler       *FollowHandler
	eventHandler        *EventHandler
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Subscription{}, &models.Notification{}))

	subs := repositories.NewPostgresSubscriptionRepository(db)
	notifs := repositories.NewPostgresNotificationRepository(db)
	profiles := repositories.NewPostgresProfileRepository(db)

	log := zap.NewNop()
	engine := notifications.NewEngine(db, subs, notifs, profiles, nil, nil, log)
	feed := notifications.NewFeed(notifs, nil, log)

	return &apiEnv{
		db:                  db,
		e:                   echo.New(),
		subs:                subs,
		notifs:              notifs,
		engine:              engine,
		notificationHandler: NewNotificationHandler(feed),
		followHandler:       NewFollowHandler(subs),
		eventHandler:        NewEventHandler(engine),
	}
}

// request builds an echo context carrying an optional authenticated profile.
func (env *apiEnv) request(method, target, body string, profileID uint) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if profileID != 0 {
		c.Set("profile", &models.JwtCustomClaims{ProfileID: profileID})
	}
	return c, rec
}

func (env *apiEnv) seedProfile(t *testing.T, id uint, username string) {
	t.Helper()
	require.NoError(t, env.db.Create(&models.Profile{ID: id, Username: username, Email: username + "@clearforum.dev"}).Error)
}

// seedUnread pushes a topic through the engine so profileID has one unread
// notification about it.
func (env *apiEnv) seedUnread(t *testing.T, profileID, topicID uint) models.Notification {
	t.Helper()
	forum := models.TargetRef{Kind: models.EntityForum, ID: 1}
	_, err := env.subs.GetOrCreateActive(profileID, forum, models.KindNewTopicForum, false)
	require.NoError(t, err)
	require.NoError(t, env.engine.ContentCreated(context.Background(), notifications.ContentCreatedEvent{
		Content: notifications.Content{Kind: models.EntityTopic, ID: topicID, Title: "Topic", URL: "/topics/1", Position: 1},
		Parent:  forum,
		ActorID: 999,
	}))
	items, _, err := env.notifs.ListUnread(profileID, false, "", 1, 50)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	return items[0]
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he
}
