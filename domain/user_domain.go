package domain

import "errors"

var (
	MessageSuccessRegister         = "user registered successfully"
	MessageSuccessGetUser          = "success get user"
	MessageSuccessUpdateAvatar     = "avatar updated successfully"
	MessageSuccessDeleteAvatar     = "avatar deleted successfully"
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedRegister         = "failed to register user"
	MessageFailedGetUser          = "failed to get user"
	MessageFailedUpdateAvatar     = "failed to update avatar"
	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already registered")
	ErrUsernameTaken    = errors.New("username already taken")
)

type (
	RegisterRequest struct {
		Username  string `json:"username" validate:"required,min=3,max=150"`
		Email     string `json:"email" validate:"required,email"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	UserResponse struct {
		ID           string  `json:"id"`
		Username     string  `json:"username"`
		Email        string  `json:"email"`
		FirstName    string  `json:"first_name"`
		LastName     string  `json:"last_name"`
		IsSubscribed bool    `json:"is_subscribed"`
		Avatar       *string `json:"avatar"`
	}

	// SubscriptionResponse is an author the user subscribes to, with the
	// author's recipes attached.
	SubscriptionResponse struct {
		UserResponse
		Recipes      []ShortRecipeResponse `json:"recipes"`
		RecipesCount int64                 `json:"recipes_count"`
	}

	UpdateAvatarResponse struct {
		Avatar string `json:"avatar"`
	}
)
