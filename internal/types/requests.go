package types

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

// LoginRequest is the request body for obtaining a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// IngredientRefRequest is one ingredient reference inside a recipe payload.
type IngredientRefRequest struct {
	ID     uuid.UUID `json:"id"`
	Amount float64   `json:"amount"`
}

// RecipeRequest is the request body for creating or replacing a recipe. The
// ingredient and tag lists fully describe the desired association sets.
type RecipeRequest struct {
	Name        string                 `json:"name"`
	Text        string                 `json:"text"`
	Image       string                 `json:"image"`
	CookingTime int                    `json:"cooking_time"`
	Ingredients []IngredientRefRequest `json:"ingredients"`
	Tags        []uuid.UUID            `json:"tags"`
}

func (r RecipeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.CookingTime, validation.Required, validation.Min(1)),
		validation.Field(&r.Ingredients, validation.Required),
	)
}
