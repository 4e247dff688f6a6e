package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"recipegram-backend/config"
	"recipegram-backend/internal/api"
	"recipegram-backend/internal/database"
	"recipegram-backend/internal/middleware"
	"recipegram-backend/internal/router"
	"recipegram-backend/internal/server"
	"recipegram-backend/internal/service"
)

func main() {
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

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Warn("redis not configured, token revocation and rate limiting disabled")
	}

	var imageService *service.ImageService
	if cfg.S3Bucket != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
		if err != nil {
			logger.Warn("object storage unavailable, inline images disabled", zap.Error(err))
		} else {
			imageService = service.NewImageService(s3Config, logger)
		}
	}

	authService := service.NewAuthService(db, redisClient, logger, cfg.JWTSecret)
	userService := service.NewUserService(db)
	catalogService := service.NewCatalogService(db)
	recipeService := service.NewRecipeService(db, logger)
	shoppingListService := service.NewShoppingListService(db)
	favorites := service.NewFavoriteRelation(db, logger)
	carts := service.NewShoppingCartRelation(db, logger)
	follows := service.NewFollowRelation(db, logger)

	loginLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     10,
		KeyPrefix: "ratelimit:login",
	})

	engine := router.SetupRouter(
		api.NewAuthHandler(authService, loginLimiter),
		api.NewUserHandler(userService, follows, authService),
		api.NewCatalogHandler(catalogService),
		api.NewRecipeHandler(recipeService, shoppingListService, favorites, carts, follows, imageService, authService),
	)

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
