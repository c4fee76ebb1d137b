package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessSaveRecipe      = "recipe saved successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessGetShoppingList = "success get shopping list"
	MessageFailedGetRecipes       = "failed to get recipes"
	MessageFailedGetRecipeDetail  = "failed to get recipe detail"
	MessageFailedSaveRecipe       = "failed to save recipe"
	MessageFailedDeleteRecipe     = "failed to delete recipe"
	MessageFailedGetShoppingList  = "failed to get shopping list"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("unauthorized access to recipe")
	// The shopping list is never rendered empty: an empty cart is a
	// distinct failure, not an empty report.
	ErrEmptyShoppingCart = errors.New("shopping cart is empty")
)

type (
	// RecipeIngredientRequest is one ingredient line of a write payload.
	RecipeIngredientRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	// RecipeRequest is the write model for create and update. Updates
	// carry full-replacement semantics for both lists.
	RecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		ImageURL    string                    `json:"image_url"`
		Tags        []string                  `json:"tags" validate:"required,min=1,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	// RecipeResponse is the read model for listing and detail.
	RecipeResponse struct {
		ID               string                     `json:"id"`
		Name             string                     `json:"name"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
		ImageURL         string                     `json:"image_url,omitempty"`
		CreatedAt        time.Time                  `json:"created_at"`
		Author           UserResponse               `json:"author"`
		Tags             []TagResponse              `json:"tags"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	}

	// ShortRecipeResponse is the compact shape returned by relation adds
	// and subscription listings.
	ShortRecipeResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image_url,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	// RecipeFilter composes listing predicates; every set predicate is
	// ANDed. Nil booleans mean "not requested".
	RecipeFilter struct {
		AuthorID         string
		TagSlugs         []string
		IsFavorited      *bool
		IsInShoppingCart *bool
	}

	// ShoppingListItem is one aggregated (name, unit) group with the
	// summed amount across every recipe in the cart.
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}
)
