package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipegram-backend/internal/models"
)

func TestRecipeCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	flour := createIngredient(t, db, "Flour", "g")
	egg := createIngredient(t, db, "Egg", "pcs")
	breakfast := createTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	recipe, err := svc.Create(ctx, author.ID, RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: []IngredientRef{
			{ID: flour.ID, Amount: 200},
			{ID: egg.ID, Amount: 2},
		},
		Tags: []uuid.UUID{breakfast.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	assert.Equal(t, "alice", recipe.Author.Username)
	require.Len(t, recipe.Ingredients, 2)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Tag.Slug)

	amounts := map[string]float64{}
	for _, line := range recipe.Ingredients {
		amounts[line.Ingredient.Name] = line.Amount
	}
	assert.Equal(t, 200.0, amounts["Flour"])
	assert.Equal(t, 2.0, amounts["Egg"])
}

func TestRecipeCreateRejectsDuplicateIngredient(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	flour := createIngredient(t, db, "Flour", "g")

	_, err := svc.Create(ctx, author.ID, RecipeInput{
		Name:        "Bread",
		Text:        "Bake.",
		CookingTime: 60,
		Ingredients: []IngredientRef{
			{ID: flour.ID, Amount: 100},
			{ID: flour.ID, Amount: 200},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateIngredient)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "ingredients", fieldErr.Field)

	// The aborted transaction must leave nothing behind.
	var recipes, lines int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&lines).Error)
	assert.Zero(t, recipes)
	assert.Zero(t, lines)
}

func TestRecipeCreateRejectsInvalidPayload(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	flour := createIngredient(t, db, "Flour", "g")

	_, err := svc.Create(ctx, author.ID, RecipeInput{
		Name: "Bread", Text: "Bake.", CookingTime: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidCookingTime)

	_, err = svc.Create(ctx, author.ID, RecipeInput{
		Name: "Bread", Text: "Bake.", CookingTime: 10,
		Ingredients: []IngredientRef{{ID: flour.ID, Amount: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Create(ctx, author.ID, RecipeInput{
		Name: "Bread", Text: "Bake.", CookingTime: 10,
		Ingredients: []IngredientRef{{ID: uuid.New(), Amount: 1}},
	})
	assert.ErrorIs(t, err, ErrUnknownIngredient)

	_, err = svc.Create(ctx, author.ID, RecipeInput{
		Name: "Bread", Text: "Bake.", CookingTime: 10,
		Tags: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestRecipeCreateAllowsDuplicateTags(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	breakfast := createTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	recipe, err := svc.Create(ctx, author.ID, RecipeInput{
		Name:        "Toast",
		Text:        "Toast it.",
		CookingTime: 5,
		Tags:        []uuid.UUID{breakfast.ID, breakfast.ID},
	})
	require.NoError(t, err)
	// Tag duplicates pass through as-is; only ingredients are deduplicated.
	assert.Len(t, recipe.Tags, 2)
}

func TestRecipeReplaceSwapsAssociationSets(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	flour := createIngredient(t, db, "Flour", "g")
	sugar := createIngredient(t, db, "Sugar", "g")
	breakfast := createTag(t, db, "Breakfast", "#E26C2D", "breakfast")
	dinner := createTag(t, db, "Dinner", "#8775D2", "dinner")

	recipe, err := svc.Create(ctx, author.ID, RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: []IngredientRef{{ID: flour.ID, Amount: 200}},
		Tags:        []uuid.UUID{breakfast.ID},
	})
	require.NoError(t, err)

	updated, err := svc.Replace(ctx, recipe.ID, RecipeInput{
		Name:        "Sweet Pancakes",
		Text:        "Mix, sweeten, fry.",
		CookingTime: 25,
		Ingredients: []IngredientRef{{ID: sugar.ID, Amount: 50}},
		Tags:        []uuid.UUID{dinner.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sweet Pancakes", updated.Name)
	assert.Equal(t, 25, updated.CookingTime)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "Sugar", updated.Ingredients[0].Ingredient.Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Tag.Slug)

	// The old association rows are gone, not orphaned.
	var lines int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).
		Where("ingredient_id = ?", flour.ID).Count(&lines).Error)
	assert.Zero(t, lines)
}

func TestRecipeReplaceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	flour := createIngredient(t, db, "Flour", "g")
	breakfast := createTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	recipe, err := svc.Create(ctx, author.ID, RecipeInput{
		Name: "Pancakes", Text: "Fry.", CookingTime: 20,
		Ingredients: []IngredientRef{{ID: flour.ID, Amount: 200}},
	})
	require.NoError(t, err)

	payload := RecipeInput{
		Name: "Pancakes v2", Text: "Fry better.", CookingTime: 22,
		Ingredients: []IngredientRef{{ID: flour.ID, Amount: 250}},
		Tags:        []uuid.UUID{breakfast.ID},
	}
	first, err := svc.Replace(ctx, recipe.ID, payload)
	require.NoError(t, err)
	second, err := svc.Replace(ctx, recipe.ID, payload)
	require.NoError(t, err)

	require.Len(t, second.Ingredients, len(first.Ingredients))
	assert.Equal(t, first.Ingredients[0].IngredientID, second.Ingredients[0].IngredientID)
	assert.Equal(t, first.Ingredients[0].Amount, second.Ingredients[0].Amount)
	require.Len(t, second.Tags, len(first.Tags))
	assert.Equal(t, first.Tags[0].TagID, second.Tags[0].TagID)

	// Row counts stay flat across repeated replaces.
	var lines, links int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&lines).Error)
	require.NoError(t, db.Model(&models.RecipeTag{}).Count(&links).Error)
	assert.EqualValues(t, 1, lines)
	assert.EqualValues(t, 1, links)
}

func TestRecipeReplaceOmittedIngredientDisappears(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	flour := createIngredient(t, db, "Flour", "g")
	egg := createIngredient(t, db, "Egg", "pcs")

	recipe, err := svc.Create(ctx, author.ID, RecipeInput{
		Name: "Dough", Text: "Knead.", CookingTime: 15,
		Ingredients: []IngredientRef{
			{ID: flour.ID, Amount: 300},
			{ID: egg.ID, Amount: 1},
		},
	})
	require.NoError(t, err)

	updated, err := svc.Replace(ctx, recipe.ID, RecipeInput{
		Name: "Dough", Text: "Knead.", CookingTime: 15,
		Ingredients: []IngredientRef{{ID: flour.ID, Amount: 300}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, flour.ID, updated.Ingredients[0].IngredientID)
}

func TestRecipeReplaceFailureLeavesOldSetIntact(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	flour := createIngredient(t, db, "Flour", "g")

	recipe, err := svc.Create(ctx, author.ID, RecipeInput{
		Name: "Bread", Text: "Bake.", CookingTime: 60,
		Ingredients: []IngredientRef{{ID: flour.ID, Amount: 500}},
	})
	require.NoError(t, err)

	_, err = svc.Replace(ctx, recipe.ID, RecipeInput{
		Name: "Bread", Text: "Bake.", CookingTime: 60,
		Ingredients: []IngredientRef{{ID: uuid.New(), Amount: 1}},
	})
	assert.ErrorIs(t, err, ErrUnknownIngredient)

	current, err := svc.Get(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, current.Ingredients, 1)
	assert.Equal(t, flour.ID, current.Ingredients[0].IngredientID)
}

func TestRecipeReplaceMissingRecipe(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())

	_, err := svc.Replace(context.Background(), uuid.New(), RecipeInput{
		Name: "Ghost", Text: "None.", CookingTime: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	author := createUser(t, db, "alice")
	other := createUser(t, db, "bob")
	flour := createIngredient(t, db, "Flour", "g")

	recipe, err := svc.Create(ctx, author.ID, RecipeInput{
		Name: "Bread", Text: "Bake.", CookingTime: 60,
		Ingredients: []IngredientRef{{ID: flour.ID, Amount: 500}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, recipe.ID, other.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, recipe.ID, author.ID))

	_, err = svc.Get(ctx, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var lines int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&lines).Error)
	assert.Zero(t, lines)
}

func TestRecipeListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db, testLogger())
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	breakfast := createTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	tagged, err := svc.Create(ctx, alice.ID, RecipeInput{
		Name: "Pancakes", Text: "Fry.", CookingTime: 20,
		Tags: []uuid.UUID{breakfast.ID},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, RecipeInput{
		Name: "Stew", Text: "Simmer.", CookingTime: 90,
	})
	require.NoError(t, err)

	byAuthor, err := svc.List(ctx, RecipeFilter{AuthorID: alice.ID})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Pancakes", byAuthor[0].Name)

	byTag, err := svc.List(ctx, RecipeFilter{TagSlugs: []string{"breakfast"}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, tagged.ID, byTag[0].ID)

	favorites := NewFavoriteRelation(db, testLogger())
	require.NoError(t, favorites.Add(ctx, bob.ID, tagged.ID))
	byFavorite, err := svc.List(ctx, RecipeFilter{FavoritedBy: bob.ID})
	require.NoError(t, err)
	require.Len(t, byFavorite, 1)
	assert.Equal(t, tagged.ID, byFavorite[0].ID)

	all, err := svc.List(ctx, RecipeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	limited, err := svc.List(ctx, RecipeFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
