package ingredient

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	IngredientRepository interface {
		GetIngredients(ctx context.Context, search string) ([]*entities.Ingredient, error)
		GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error)
		GetOrCreateIngredient(ctx context.Context, name, measurementUnit string) (*entities.Ingredient, bool, error)
		DeleteIngredient(ctx context.Context, id string) error
	}

	ingredientRepository struct {
		db *gorm.DB
	}
)

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) GetIngredients(ctx context.Context, search string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient

	query := r.db.WithContext(ctx)
	if search != "" {
		// Prefix search on the name, like the public ingredient lookup.
		// The search term is treated literally, so LIKE metacharacters
		// in it must be escaped.
		query = query.Where("name LIKE ? ESCAPE '\\'", escapeLike(search)+"%")
	}

	if err := query.Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error) {
	var ing entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetOrCreateIngredient returns the existing row for (name, unit) or
// creates one; the second return reports whether a new row was created.
func (r *ingredientRepository) GetOrCreateIngredient(ctx context.Context, name, measurementUnit string) (*entities.Ingredient, bool, error) {
	ing := entities.Ingredient{
		Name:            name,
		MeasurementUnit: measurementUnit,
	}

	res := r.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, measurementUnit).
		Attrs(entities.Ingredient{ID: uuid.New()}).
		FirstOrCreate(&ing)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return &ing, res.RowsAffected > 0, nil
}

func (r *ingredientRepository) DeleteIngredient(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&entities.RecipeIngredient{}).
			Where("ingredient_id = ?", id).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrIngredientInUse
		}

		res := tx.Where("id = ?", id).Delete(&entities.Ingredient{})
		if res.Error != nil {
			// The RESTRICT constraint backs the count check against
			// concurrent recipe writes.
			if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
				return domain.ErrIngredientInUse
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrIngredientNotFound
		}
		return nil
	})
}
