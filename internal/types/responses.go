package types

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse is a user as rendered to API clients.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// TagResponse is a catalog tag as rendered to API clients.
type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

// IngredientResponse is a catalog ingredient as rendered to API clients.
type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

// RecipeIngredientResponse is one ingredient line of a recipe, carrying the
// catalog fields alongside the recipe-specific amount.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          float64   `json:"amount"`
}

// RecipeResponse is a full recipe as rendered to API clients.
type RecipeResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Tags              []TagResponse              `json:"tags"`
	Author            UserResponse               `json:"author"`
	Ingredients       []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited       bool                       `json:"is_favorited"`
	IsInShoppingCart  bool                       `json:"is_in_shopping_cart"`
	Name              string                     `json:"name"`
	Image             string                     `json:"image"`
	Text              string                     `json:"text"`
	CookingTime       int                        `json:"cooking_time"`
	CreatedAt         time.Time                  `json:"created_at"`
}

// RecipeMiniResponse is the short recipe form used in relation and
// subscription payloads.
type RecipeMiniResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionResponse is one followed author with their recipes.
type SubscriptionResponse struct {
	ID           uuid.UUID            `json:"id"`
	Username     string               `json:"username"`
	Email        string               `json:"email"`
	FirstName    string               `json:"first_name"`
	LastName     string               `json:"last_name"`
	IsSubscribed bool                 `json:"is_subscribed"`
	Recipes      []RecipeMiniResponse `json:"recipes"`
	RecipesCount int64                `json:"recipes_count"`
}
