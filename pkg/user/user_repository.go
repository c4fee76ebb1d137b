package user

import (
	"Foodgram-Backend/entities"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		CheckEmailExist(ctx context.Context, email string) (bool, error)
		CheckUsernameExist(ctx context.Context, username string) (bool, error)

		GetOrCreateProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
		SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL *string) error

		GetSubscribedAuthors(ctx context.Context, userID uuid.UUID) ([]*entities.User, error)
		CountRecipesByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID uuid.UUID) ([]*entities.Recipe, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CheckEmailExist(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) CheckUsernameExist(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetOrCreateProfile is the idempotent profile upsert: at most one
// profile row per user regardless of how many times it is called.
func (r *userRepository) GetOrCreateProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	profile := entities.Profile{UserID: userID}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Attrs(entities.Profile{ID: uuid.New()}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL *string) error {
	profile, err := r.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entities.Profile{}).
		Where("id = ?", profile.ID).
		Update("avatar_url", avatarURL).Error
}

func (r *userRepository) GetSubscribedAuthors(ctx context.Context, userID uuid.UUID) ([]*entities.User, error) {
	var authors []*entities.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.created_at desc").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *userRepository) CountRecipesByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *userRepository) GetRecipesByAuthor(ctx context.Context, authorID uuid.UUID) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}
