package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []entities.RecipeIngredient) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []entities.RecipeIngredient) error
		DeleteRecipe(ctx context.Context, id uuid.UUID) error
		GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error)
		ListRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uuid.UUID) ([]*entities.Recipe, error)

		GetUserFavoriteSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
		GetUserCartSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
		GetUserSubscriptionSet(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)

		AggregateShoppingList(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingListItem, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		return replaceComposition(tx, recipe, tagIDs, ingredients)
	})
}

// UpdateRecipe rewrites the recipe fields and fully replaces both the
// tag set and the ingredient rows inside one transaction. A failure
// anywhere rolls the whole update back. created_at is never touched.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
		}
		if recipe.ImageURL != "" {
			updates["image_url"] = recipe.ImageURL
		}

		if err := tx.Model(&entities.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		return replaceComposition(tx, recipe, tagIDs, ingredients)
	})
}

func replaceComposition(tx *gorm.DB, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []entities.RecipeIngredient) error {
	var tags []*entities.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return domain.ErrTagNotFound
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return err
	}

	ingredientIDs := make([]uuid.UUID, 0, len(ingredients))
	for _, ing := range ingredients {
		ingredientIDs = append(ingredientIDs, ing.IngredientID)
	}
	var count int64
	if err := tx.Model(&entities.Ingredient{}).
		Where("id IN ?", ingredientIDs).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ingredientIDs)) {
		return domain.ErrIngredientNotFound
	}

	if err := tx.Where("recipe_id = ?", recipe.ID).
		Delete(&entities.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return nil
	}
	for i := range ingredients {
		ingredients[i].ID = uuid.New()
		ingredients[i].RecipeID = recipe.ID
	}
	return tx.Create(&ingredients).Error
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingCartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Recipe{ID: id}).Association("Tags").Clear(); err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&entities.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrRecipeNotFound
		}
		return nil
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Author.Profile").
		Preload("Tags").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes composes the filter predicates over one query. For an
// anonymous viewer a "true" favorited/in-cart predicate yields an empty
// result set while "false" filters nothing out.
func (r *recipeRepository) ListRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uuid.UUID) ([]*entities.Recipe, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Preload("Author").
		Preload("Author.Profile").
		Preload("Tags").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient")

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}

	if len(filter.TagSlugs) > 0 {
		// A recipe carrying several of the requested tags must still
		// appear once, hence the DISTINCT.
		query = query.Distinct("recipes.*").
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
	}

	if filter.IsFavorited != nil {
		if viewerID == uuid.Nil {
			if *filter.IsFavorited {
				return []*entities.Recipe{}, nil
			}
		} else if *filter.IsFavorited {
			query = query.Where(
				"EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?)",
				viewerID,
			)
		} else {
			query = query.Where(
				"NOT EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?)",
				viewerID,
			)
		}
	}

	if filter.IsInShoppingCart != nil {
		if viewerID == uuid.Nil {
			if *filter.IsInShoppingCart {
				return []*entities.Recipe{}, nil
			}
		} else if *filter.IsInShoppingCart {
			query = query.Where(
				"EXISTS (SELECT 1 FROM shopping_cart_items WHERE shopping_cart_items.recipe_id = recipes.id AND shopping_cart_items.user_id = ?)",
				viewerID,
			)
		} else {
			query = query.Where(
				"NOT EXISTS (SELECT 1 FROM shopping_cart_items WHERE shopping_cart_items.recipe_id = recipes.id AND shopping_cart_items.user_id = ?)",
				viewerID,
			)
		}
	}

	var recipes []*entities.Recipe
	if err := query.Order("recipes.created_at desc").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) GetUserFavoriteSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return r.relationSet(ctx, &entities.Favorite{}, "recipe_id", userID, recipeIDs)
}

func (r *recipeRepository) GetUserCartSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return r.relationSet(ctx, &entities.ShoppingCartItem{}, "recipe_id", userID, recipeIDs)
}

func (r *recipeRepository) GetUserSubscriptionSet(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return r.relationSet(ctx, &entities.Subscription{}, "author_id", userID, authorIDs)
}

func (r *recipeRepository) relationSet(ctx context.Context, model interface{}, targetColumn string, userID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	set := make(map[uuid.UUID]struct{}, len(targetIDs))
	if userID == uuid.Nil || len(targetIDs) == 0 {
		return set, nil
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ?", userID).
		Where(targetColumn+" IN ?", targetIDs).
		Pluck(targetColumn, &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// AggregateShoppingList collapses every ingredient of every recipe in
// the user's cart into one row per (name, measurement unit) pair with
// the summed amount, ordered by ingredient name. The emptiness check
// runs in the same transaction as the aggregation so a concurrent cart
// clear cannot slip between them.
func (r *recipeRepository) AggregateShoppingList(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingListItem, error) {
	var items []domain.ShoppingListItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.ShoppingCartItem{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrEmptyShoppingCart
		}

		return tx.Table("recipe_ingredients").
			Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
			Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
			Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipe_ingredients.recipe_id").
			Where("shopping_cart_items.user_id = ?", userID).
			Group("ingredients.name, ingredients.measurement_unit").
			Order("ingredients.name asc").
			Scan(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
