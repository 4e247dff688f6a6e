package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipegram-backend/internal/types"
)

func TestGetUserEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.registerUser(t, "alice")

	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%s", alice.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user types.UserResponse
	decodeJSON(t, w, &user)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsSubscribed)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%s", uuid.New()), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEndpoints(t *testing.T) {
	env := newTestEnv(t)
	viewerToken, viewer := env.registerUser(t, "viewer")
	_, author := env.registerUser(t, "author")

	path := fmt.Sprintf("/api/v1/users/%s/subscribe", author.ID)

	w := env.request(t, http.MethodPost, path, viewerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var subscribed types.UserResponse
	decodeJSON(t, w, &subscribed)
	assert.Equal(t, "author", subscribed.Username)
	assert.True(t, subscribed.IsSubscribed)

	// Duplicate subscription is a client error.
	w = env.request(t, http.MethodPost, path, viewerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Self-subscription is rejected.
	selfPath := fmt.Sprintf("/api/v1/users/%s/subscribe", viewer.ID)
	w = env.request(t, http.MethodPost, selfPath, viewerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Profile now shows the subscription for the viewer.
	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%s", author.ID), viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile types.UserResponse
	decodeJSON(t, w, &profile)
	assert.True(t, profile.IsSubscribed)

	w = env.request(t, http.MethodDelete, path, viewerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodDelete, path, viewerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeMissingAuthor(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "viewer")

	path := fmt.Sprintf("/api/v1/users/%s/subscribe", uuid.New())
	w := env.request(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	viewerToken, _ := env.registerUser(t, "viewer")
	authorToken, author := env.registerUser(t, "author")
	flour := env.seedIngredient(t, "Flour", "g")

	for _, name := range []string{"Pancakes", "Cookies", "Bread"} {
		w := env.request(t, http.MethodPost, "/api/v1/recipes", authorToken, types.RecipeRequest{
			Name: name, Text: "Cook.", CookingTime: 10,
			Ingredients: []types.IngredientRefRequest{{ID: flour.ID, Amount: 100}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe", author.ID), viewerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=2", viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var subs []types.SubscriptionResponse
	decodeJSON(t, w, &subs)
	require.Len(t, subs, 1)
	assert.Equal(t, "author", subs[0].Username)
	assert.Len(t, subs[0].Recipes, 2)
	assert.EqualValues(t, 3, subs[0].RecipesCount)
}

func TestSubscriptionsRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/v1/users/subscriptions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
