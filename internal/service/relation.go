package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipegram-backend/internal/models"
)

// Relation is a unique-pair membership store parameterized over its
// association model. Favorites, shopping cart entries and follows all share
// the same contract: Add rejects an existing pair, Remove rejects a missing
// one, and an optional guard forbids self-referencing pairs.
type Relation[T any] struct {
	db         *gorm.DB
	logger     *zap.Logger
	name       string
	subjectCol string
	targetCol  string
	newRow     func(subject, target uuid.UUID) T
	forbidSelf bool
}

// NewFavoriteRelation tracks which users bookmarked which recipes.
func NewFavoriteRelation(db *gorm.DB, logger *zap.Logger) *Relation[models.Favorite] {
	return &Relation[models.Favorite]{
		db:         db,
		logger:     logger,
		name:       "favorite",
		subjectCol: "user_id",
		targetCol:  "recipe_id",
		newRow: func(subject, target uuid.UUID) models.Favorite {
			return models.Favorite{UserID: subject, RecipeID: target}
		},
	}
}

// NewShoppingCartRelation tracks which recipes are in which users' carts.
func NewShoppingCartRelation(db *gorm.DB, logger *zap.Logger) *Relation[models.ShoppingCartEntry] {
	return &Relation[models.ShoppingCartEntry]{
		db:         db,
		logger:     logger,
		name:       "shopping_cart",
		subjectCol: "user_id",
		targetCol:  "recipe_id",
		newRow: func(subject, target uuid.UUID) models.ShoppingCartEntry {
			return models.ShoppingCartEntry{UserID: subject, RecipeID: target}
		},
	}
}

// NewFollowRelation tracks user-follows-author subscriptions. Self-follows
// are rejected before the uniqueness check.
func NewFollowRelation(db *gorm.DB, logger *zap.Logger) *Relation[models.Follow] {
	return &Relation[models.Follow]{
		db:         db,
		logger:     logger,
		name:       "follow",
		subjectCol: "follower_id",
		targetCol:  "author_id",
		newRow: func(subject, target uuid.UUID) models.Follow {
			return models.Follow{FollowerID: subject, AuthorID: target}
		},
		forbidSelf: true,
	}
}

// Add inserts the (subject, target) pair. A duplicate add is a client error
// reported as ErrAlreadyExists, not silently swallowed; a unique-constraint
// violation lost to a concurrent insert maps to the same error.
func (r *Relation[T]) Add(ctx context.Context, subject, target uuid.UUID) error {
	if r.forbidSelf && subject == target {
		return ErrSelfFollow
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(new(T)).
			Where(r.pairCondition(), subject, target).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}

		row := r.newRow(subject, target)
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return err
		}

		r.logger.Info("relation added",
			zap.String("relation", r.name),
			zap.String("subject", subject.String()),
			zap.String("target", target.String()))
		return nil
	})
}

// Remove deletes the (subject, target) pair, reporting ErrNotFound when the
// pair is absent. Exactly one row is removed on success.
func (r *Relation[T]) Remove(ctx context.Context, subject, target uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where(r.pairCondition(), subject, target).
		Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.logger.Info("relation removed",
		zap.String("relation", r.name),
		zap.String("subject", subject.String()),
		zap.String("target", target.String()))
	return nil
}

// Exists reports whether the (subject, target) pair is present.
func (r *Relation[T]) Exists(ctx context.Context, subject, target uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where(r.pairCondition(), subject, target).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Relation[T]) pairCondition() string {
	return fmt.Sprintf("%s = ? AND %s = ?", r.subjectCol, r.targetCol)
}
