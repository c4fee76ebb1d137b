package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/relation"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) ([]domain.RecipeResponse, error)
		GetRecipeDetail(ctx context.Context, id string, viewerID string) (*domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.RecipeRequest, authorID string) (*domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, id string, req domain.RecipeRequest, authorID string) (*domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, id string, authorID string) error

		AddFavorite(ctx context.Context, recipeID, userID string) (*domain.ShortRecipeResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToShoppingCart(ctx context.Context, recipeID, userID string) (*domain.ShortRecipeResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error

		BuildShoppingList(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		favorites        relation.Manager[entities.Favorite]
		shoppingCart     relation.Manager[entities.ShoppingCartItem]
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	favorites relation.Manager[entities.Favorite],
	shoppingCart relation.Manager[entities.ShoppingCartItem],
) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
		favorites:        favorites,
		shoppingCart:     shoppingCart,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) ([]domain.RecipeResponse, error) {
	viewer := parseOptionalUUID(viewerID)

	recipes, err := s.recipeRepository.ListRecipes(ctx, filter, viewer)
	if err != nil {
		return nil, err
	}

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, rec := range recipes {
		recipeIDs = append(recipeIDs, rec.ID)
		authorIDs = append(authorIDs, rec.AuthorID)
	}

	favSet, err := s.recipeRepository.GetUserFavoriteSet(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	cartSet, err := s.recipeRepository.GetUserCartSet(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subSet, err := s.recipeRepository.GetUserSubscriptionSet(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, rec := range recipes {
		result = append(result, toRecipeResponse(rec, favSet, cartSet, subSet))
	}
	return result, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, id string, viewerID string) (*domain.RecipeResponse, error) {
	recipeUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	viewer := parseOptionalUUID(viewerID)

	rec, err := s.recipeRepository.GetRecipeByID(ctx, recipeUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}

	favSet, err := s.recipeRepository.GetUserFavoriteSet(ctx, viewer, []uuid.UUID{rec.ID})
	if err != nil {
		return nil, err
	}
	cartSet, err := s.recipeRepository.GetUserCartSet(ctx, viewer, []uuid.UUID{rec.ID})
	if err != nil {
		return nil, err
	}
	subSet, err := s.recipeRepository.GetUserSubscriptionSet(ctx, viewer, []uuid.UUID{rec.AuthorID})
	if err != nil {
		return nil, err
	}

	res := toRecipeResponse(rec, favSet, cartSet, subSet)
	return &res, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.RecipeRequest, authorID string) (*domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	if err := ValidateComposition(req); err != nil {
		return nil, err
	}

	tagIDs, ingredients, err := parseComposition(req)
	if err != nil {
		return nil, err
	}

	rec := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
	}

	if err := s.recipeRepository.CreateRecipe(ctx, rec, tagIDs, ingredients); err != nil {
		return nil, err
	}

	return s.GetRecipeDetail(ctx, rec.ID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id string, req domain.RecipeRequest, authorID string) (*domain.RecipeResponse, error) {
	recipeUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	if existing.AuthorID.String() != authorID {
		return nil, domain.ErrUnauthorizedRecipeAccess
	}

	if err := ValidateComposition(req); err != nil {
		return nil, err
	}

	tagIDs, ingredients, err := parseComposition(req)
	if err != nil {
		return nil, err
	}

	rec := &entities.Recipe{
		ID:          recipeUUID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    req.ImageURL,
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, rec, tagIDs, ingredients); err != nil {
		return nil, err
	}

	return s.GetRecipeDetail(ctx, id, authorID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id string, authorID string) error {
	recipeUUID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrParseUUID
	}

	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if existing.AuthorID.String() != authorID {
		return domain.ErrUnauthorizedRecipeAccess
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeUUID)
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (*domain.ShortRecipeResponse, error) {
	return s.addRelation(ctx, recipeID, userID, s.favorites.Add)
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	return s.removeRelation(ctx, recipeID, userID, s.favorites.Remove)
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID string) (*domain.ShortRecipeResponse, error) {
	return s.addRelation(ctx, recipeID, userID, s.shoppingCart.Add)
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	return s.removeRelation(ctx, recipeID, userID, s.shoppingCart.Remove)
}

func (s *recipeService) addRelation(ctx context.Context, recipeID, userID string, add func(context.Context, uuid.UUID, uuid.UUID) error) (*domain.ShortRecipeResponse, error) {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	rec, err := s.recipeRepository.GetRecipeByID(ctx, recipeUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}

	if err := add(ctx, userUUID, recipeUUID); err != nil {
		return nil, err
	}

	return &domain.ShortRecipeResponse{
		ID:          rec.ID.String(),
		Name:        rec.Name,
		ImageURL:    rec.ImageURL,
		CookingTime: rec.CookingTime,
	}, nil
}

func (s *recipeService) removeRelation(ctx context.Context, recipeID, userID string, remove func(context.Context, uuid.UUID, uuid.UUID) error) error {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ErrParseUUID
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}

	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	return remove(ctx, userUUID, recipeUUID)
}

// BuildShoppingList renders the aggregated cart as a plain text report,
// one line per (name, unit) group, name-ascending. The same cart state
// always yields a byte-identical report. An empty cart is an error, not
// an empty report.
func (s *recipeService) BuildShoppingList(ctx context.Context, userID string) (string, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return "", domain.ErrParseUUID
	}

	items, err := s.recipeRepository.AggregateShoppingList(ctx, userUUID)
	if err != nil {
		return "", err
	}

	var report strings.Builder
	for _, item := range items {
		fmt.Fprintf(&report, "%s — %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return report.String(), nil
}

func parseOptionalUUID(id string) uuid.UUID {
	if id == "" {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}

func parseComposition(req domain.RecipeRequest) ([]uuid.UUID, []entities.RecipeIngredient, error) {
	tagIDs := make([]uuid.UUID, 0, len(req.Tags))
	for _, id := range req.Tags {
		tagUUID, err := uuid.Parse(id)
		if err != nil {
			return nil, nil, domain.NewValidationError("tags", "invalid tag id")
		}
		tagIDs = append(tagIDs, tagUUID)
	}

	ingredients := make([]entities.RecipeIngredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ingredientUUID, err := uuid.Parse(ing.ID)
		if err != nil {
			return nil, nil, domain.NewValidationError("ingredients", "invalid ingredient id")
		}
		ingredients = append(ingredients, entities.RecipeIngredient{
			IngredientID: ingredientUUID,
			Amount:       ing.Amount,
		})
	}
	return tagIDs, ingredients, nil
}

func toRecipeResponse(rec *entities.Recipe, favSet, cartSet, subSet map[uuid.UUID]struct{}) domain.RecipeResponse {
	author := domain.UserResponse{}
	if rec.Author != nil {
		author = domain.UserResponse{
			ID:        rec.Author.ID.String(),
			Username:  rec.Author.Username,
			Email:     rec.Author.Email,
			FirstName: rec.Author.FirstName,
			LastName:  rec.Author.LastName,
		}
		if _, ok := subSet[rec.Author.ID]; ok {
			author.IsSubscribed = true
		}
		if rec.Author.Profile != nil {
			author.Avatar = rec.Author.Profile.AvatarURL
		}
	}

	tags := make([]domain.TagResponse, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		tags = append(tags, domain.TagResponse{
			ID:   t.ID.String(),
			Name: t.Name,
			Slug: t.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		res := domain.RecipeIngredientResponse{
			ID:     ing.IngredientID.String(),
			Amount: ing.Amount,
		}
		if ing.Ingredient != nil {
			res.Name = ing.Ingredient.Name
			res.MeasurementUnit = ing.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	_, isFavorited := favSet[rec.ID]
	_, isInCart := cartSet[rec.ID]

	return domain.RecipeResponse{
		ID:               rec.ID.String(),
		Name:             rec.Name,
		Text:             rec.Text,
		CookingTime:      rec.CookingTime,
		ImageURL:         rec.ImageURL,
		CreatedAt:        rec.CreatedAt,
		Author:           author,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
	}
}
