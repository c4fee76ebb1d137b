package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/relation"
	"context"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserResponse, error)
		GetUserDetail(ctx context.Context, id string, viewerID string) (*domain.UserResponse, error)

		UpdateAvatar(ctx context.Context, userID string, avatarURL string) (*domain.UpdateAvatarResponse, error)
		UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (*domain.UpdateAvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID string) error

		Subscribe(ctx context.Context, userID, authorID string) (*domain.UserResponse, error)
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string) ([]domain.SubscriptionResponse, error)
	}

	userService struct {
		userRepository UserRepository
		subscriptions  relation.Manager[entities.Subscription]
		s3             storage.AwsS3
	}
)

func NewUserService(userRepository UserRepository, subscriptions relation.Manager[entities.Subscription], s3 storage.AwsS3) UserService {
	return &userService{
		userRepository: userRepository,
		subscriptions:  subscriptions,
		s3:             s3,
	}
}

// Register creates the user and its profile eagerly; profile creation is
// idempotent so a retried registration cannot produce a second row.
func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserResponse, error) {
	emailExist, err := s.userRepository.CheckEmailExist(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if emailExist {
		return nil, domain.ErrEmailAlreadyUsed
	}

	usernameExist, err := s.userRepository.CheckUsernameExist(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if usernameExist {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailAlreadyUsed
		}
		return nil, err
	}

	if _, err := s.userRepository.GetOrCreateProfile(ctx, user.ID); err != nil {
		return nil, err
	}

	return toUserResponse(user, false), nil
}

func (s *userService) GetUserDetail(ctx context.Context, id string, viewerID string) (*domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	isSubscribed := false
	if viewerID != "" && viewerID != id {
		viewerUUID, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		isSubscribed, err = s.subscriptions.Exists(ctx, viewerUUID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return toUserResponse(user, isSubscribed), nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, avatarURL string) (*domain.UpdateAvatarResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	if avatarURL == "" {
		return nil, domain.NewValidationError("avatar", "this field is required")
	}

	if err := s.userRepository.SetAvatar(ctx, userUUID, &avatarURL); err != nil {
		return nil, err
	}
	return &domain.UpdateAvatarResponse{Avatar: avatarURL}, nil
}

// UploadAvatar pushes the file to the image store and persists only the
// returned reference.
func (s *userService) UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (*domain.UpdateAvatarResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	objectKey, err := s.s3.UploadFile(ctx, file, "users/avatars", storage.AllowImage...)
	if err != nil {
		return nil, err
	}

	avatarURL := s.s3.GetPublicLinkKey(objectKey)
	if err := s.userRepository.SetAvatar(ctx, userUUID, &avatarURL); err != nil {
		return nil, err
	}
	return &domain.UpdateAvatarResponse{Avatar: avatarURL}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	return s.userRepository.SetAvatar(ctx, userUUID, nil)
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID string) (*domain.UserResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if err := s.subscriptions.Add(ctx, userUUID, authorUUID); err != nil {
		return nil, err
	}
	return toUserResponse(author, true), nil
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.ErrParseUUID
	}

	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	return s.subscriptions.Remove(ctx, userUUID, authorUUID)
}

func (s *userService) GetSubscriptions(ctx context.Context, userID string) ([]domain.SubscriptionResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	authors, err := s.userRepository.GetSubscribedAuthors(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		recipes, err := s.userRepository.GetRecipesByAuthor(ctx, author.ID)
		if err != nil {
			return nil, err
		}
		count, err := s.userRepository.CountRecipesByAuthor(ctx, author.ID)
		if err != nil {
			return nil, err
		}

		shortRecipes := make([]domain.ShortRecipeResponse, 0, len(recipes))
		for _, rec := range recipes {
			shortRecipes = append(shortRecipes, domain.ShortRecipeResponse{
				ID:          rec.ID.String(),
				Name:        rec.Name,
				ImageURL:    rec.ImageURL,
				CookingTime: rec.CookingTime,
			})
		}

		result = append(result, domain.SubscriptionResponse{
			UserResponse: *toUserResponse(author, true),
			Recipes:      shortRecipes,
			RecipesCount: count,
		})
	}
	return result, nil
}

func toUserResponse(user *entities.User, isSubscribed bool) *domain.UserResponse {
	res := &domain.UserResponse{
		ID:           user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
	if user.Profile != nil {
		res.Avatar = user.Profile.AvatarURL
	}
	return res
}
