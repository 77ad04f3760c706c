package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearforum/backend/internal/models"
)

func TestEditFollowRequiresAuth(t *testing.T) {
	env := newAPIEnv(t)
	c, _ := env.request(http.MethodPost, "/follow", `{"target_kind":"forum","target_id":1,"follow":true}`, 0)

	he := httpError(t, env.followHandler.EditFollow(c))
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestEditFollowCreatesSubscription(t *testing.T) {
	env := newAPIEnv(t)

	c, rec := env.request(http.MethodPost, "/follow", `{"target_kind":"forum","target_id":1,"follow":true}`, 2)
	require.NoError(t, env.followHandler.EditFollow(c))
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := env.subs.GetExisting(2, models.TargetRef{Kind: models.EntityForum, ID: 1})
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.True(t, sub.IsActive)
	assert.Equal(t, models.KindNewTopicForum, sub.Kind)
}

func TestEditFollowUnfollowDeactivates(t *testing.T) {
	env := newAPIEnv(t)
	target := models.TargetRef{Kind: models.EntityTopic, ID: 10}
	_, err := env.subs.GetOrCreateActive(2, target, models.KindTopicAnswer, false)
	require.NoError(t, err)

	c, rec := env.request(http.MethodPost, "/follow", `{"target_kind":"topic","target_id":10,"follow":false}`, 2)
	require.NoError(t, env.followHandler.EditFollow(c))
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := env.subs.GetExisting(2, target)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.False(t, sub.IsActive)
}

func TestEditFollowRejectsUnfollowableKind(t *testing.T) {
	env := newAPIEnv(t)
	c, _ := env.request(http.MethodPost, "/follow", `{"target_kind":"post","target_id":10,"follow":true}`, 2)

	he := httpError(t, env.followHandler.EditFollow(c))
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestEditFollowRejectsMissingFields(t *testing.T) {
	env := newAPIEnv(t)
	c, _ := env.request(http.MethodPost, "/follow", `{"follow":true}`, 2)

	he := httpError(t, env.followHandler.EditFollow(c))
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestEditFollowEmailActivates(t *testing.T) {
	env := newAPIEnv(t)

	c, rec := env.request(http.MethodPost, "/follow/email", `{"target_kind":"topic","target_id":10,"email":true}`, 2)
	require.NoError(t, env.followHandler.EditFollowEmail(c))
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := env.subs.GetExisting(2, models.TargetRef{Kind: models.EntityTopic, ID: 10})
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.True(t, sub.IsActive)
	assert.True(t, sub.ByEmail)
}

func TestEditFollowEmailDeactivateKeepsFollow(t *testing.T) {
	env := newAPIEnv(t)
	target := models.TargetRef{Kind: models.EntityTopic, ID: 10}
	_, err := env.subs.ActivateEmail(2, target, models.KindTopicAnswer)
	require.NoError(t, err)

	c, rec := env.request(http.MethodPost, "/follow/email", `{"target_kind":"topic","target_id":10,"email":false}`, 2)
	require.NoError(t, env.followHandler.EditFollowEmail(c))
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := env.subs.GetExisting(2, target)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.True(t, sub.IsActive)
	assert.False(t, sub.ByEmail)
}
