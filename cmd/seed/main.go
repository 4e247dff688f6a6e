package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"recipegram-backend/config"
	"recipegram-backend/internal/database"
	"recipegram-backend/internal/models"
)

// ingredientRow is one entry of the ingredients catalog file.
type ingredientRow struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to the ingredients catalog file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	raw, err := os.ReadFile(*ingredientsPath)
	if err != nil {
		logger.Fatal("failed to read ingredients file", zap.Error(err))
	}
	var rows []ingredientRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		logger.Fatal("failed to parse ingredients file", zap.Error(err))
	}

	seeded := 0
	for _, row := range rows {
		ingredient := models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit}
		result := db.Where(models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit}).
			FirstOrCreate(&ingredient)
		if result.Error != nil {
			logger.Fatal("failed to seed ingredient", zap.String("name", row.Name), zap.Error(result.Error))
		}
		if result.RowsAffected > 0 {
			seeded++
		}
	}
	logger.Info("ingredients seeded", zap.Int("new", seeded), zap.Int("total", len(rows)))

	for _, tag := range defaultTags {
		err := db.Where(models.Tag{Slug: tag.Slug}).
			Attrs(models.Tag{Name: tag.Name, Color: tag.Color}).
			FirstOrCreate(&tag).Error
		if err != nil {
			logger.Fatal("failed to seed tag", zap.String("slug", tag.Slug), zap.Error(err))
		}
	}
	logger.Info("tags seeded", zap.Int("total", len(defaultTags)))
}
