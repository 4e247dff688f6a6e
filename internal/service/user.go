package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipegram-backend/internal/models"
)

// UserService serves user profiles and the subscription feed.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService instance.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns all users, oldest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Subscription is an author the viewer follows, with that author's recipes.
type Subscription struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// Subscriptions lists the authors the viewer follows, each with their
// recipes (optionally capped at recipesLimit) and total recipe count.
func (s *UserService) Subscriptions(ctx context.Context, viewerID uuid.UUID, recipesLimit int) ([]Subscription, error) {
	var authors []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", viewerID).
		Order("follows.created_at").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}

	subscriptions := make([]Subscription, 0, len(authors))
	for _, author := range authors {
		sub := Subscription{Author: author}

		query := s.db.WithContext(ctx).
			Where("author_id = ?", author.ID).
			Order("created_at DESC")
		if recipesLimit > 0 {
			query = query.Limit(recipesLimit)
		}
		if err := query.Find(&sub.Recipes).Error; err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id = ?", author.ID).
			Count(&sub.RecipesCount).Error; err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, sub)
	}
	return subscriptions, nil
}
