package relation

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// Manager carries the add/remove semantics shared by every user
	// relation: at most one row per (user, target) pair, adding twice is
	// an error, removing a missing row is an error. The unique index on
	// the relation table decides races, not the existence pre-check.
	Manager[T any] interface {
		Add(ctx context.Context, userID, targetID uuid.UUID) error
		Remove(ctx context.Context, userID, targetID uuid.UUID) error
		Exists(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
	}

	manager[T any] struct {
		db           *gorm.DB
		targetColumn string
		forbidSelf   bool
		newRow       func(userID, targetID uuid.UUID) T
	}
)

func NewFavoriteManager(db *gorm.DB) Manager[entities.Favorite] {
	return &manager[entities.Favorite]{
		db:           db,
		targetColumn: "recipe_id",
		newRow: func(userID, targetID uuid.UUID) entities.Favorite {
			return entities.Favorite{
				ID:        uuid.New(),
				UserID:    userID,
				RecipeID:  targetID,
				CreatedAt: time.Now(),
			}
		},
	}
}

func NewShoppingCartManager(db *gorm.DB) Manager[entities.ShoppingCartItem] {
	return &manager[entities.ShoppingCartItem]{
		db:           db,
		targetColumn: "recipe_id",
		newRow: func(userID, targetID uuid.UUID) entities.ShoppingCartItem {
			return entities.ShoppingCartItem{
				ID:        uuid.New(),
				UserID:    userID,
				RecipeID:  targetID,
				CreatedAt: time.Now(),
			}
		},
	}
}

func NewSubscriptionManager(db *gorm.DB) Manager[entities.Subscription] {
	return &manager[entities.Subscription]{
		db:           db,
		targetColumn: "author_id",
		forbidSelf:   true,
		newRow: func(userID, targetID uuid.UUID) entities.Subscription {
			return entities.Subscription{
				ID:        uuid.New(),
				UserID:    userID,
				AuthorID:  targetID,
				CreatedAt: time.Now(),
			}
		},
	}
}

func (m *manager[T]) Add(ctx context.Context, userID, targetID uuid.UUID) error {
	if m.forbidSelf && userID == targetID {
		return domain.ErrSelfSubscription
	}

	row := m.newRow(userID, targetID)
	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrRelationExists
		}
		if errors.Is(err, gorm.ErrCheckConstraintViolated) {
			return domain.ErrSelfSubscription
		}
		return err
	}
	return nil
}

func (m *manager[T]) Remove(ctx context.Context, userID, targetID uuid.UUID) error {
	var model T
	res := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(m.targetColumn+" = ?", targetID).
		Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRelationNotFound
	}
	return nil
}

func (m *manager[T]) Exists(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ?", userID).
		Where(m.targetColumn+" = ?", targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
