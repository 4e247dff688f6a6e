package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportHeader is the first line of every shopping list report.
const ReportHeader = "Shopping list:"

// ShoppingListService builds the aggregated shopping list for a user's cart.
// It is a pure read: cart state is never mutated here.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance.
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// ReportLine is one aggregated ingredient across every recipe in the cart.
type ReportLine struct {
	Name            string
	MeasurementUnit string
	Total           float64
}

// Aggregate explodes every recipe in the user's cart into ingredient line
// items, groups them by ingredient identity and sums the amounts. Grouping
// keys on ingredient ID, never the display name, so same-named ingredients
// with different units stay separate. Ordered by name then ID so the report
// is deterministic.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ReportLine, error) {
	var lines []ReportLine
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, recipe_ingredients.ingredient_id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// BuildReport renders the aggregate as a flat text document: a fixed header
// followed by one "{name} ({unit}) - {amount}" line per distinct ingredient.
// An empty cart yields just the header.
func (s *ShoppingListService) BuildReport(ctx context.Context, userID uuid.UUID) (string, error) {
	lines, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(ReportHeader)
	for _, line := range lines {
		fmt.Fprintf(&b, "\n%s (%s) - %s",
			line.Name, line.MeasurementUnit, formatAmount(line.Total))
	}
	return b.String(), nil
}

// formatAmount prints integral sums without a decimal point, so 300.0 renders
// as "300".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
