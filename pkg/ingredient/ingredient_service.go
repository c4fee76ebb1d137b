package ingredient

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type (
	IngredientService interface {
		GetIngredients(ctx context.Context, search string) ([]domain.IngredientResponse, error)
		GetIngredientDetail(ctx context.Context, id string) (*domain.IngredientResponse, error)
		ImportIngredients(ctx context.Context, req domain.IngredientImportRequest) (*domain.IngredientImportReport, error)
		DeleteIngredient(ctx context.Context, id string) error
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
	}
)

func NewIngredientService(ingredientRepository IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepository: ingredientRepository}
}

func toIngredientResponse(ing *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ing.ID.String(),
		Name:            ing.Name,
		MeasurementUnit: ing.MeasurementUnit,
	}
}

func (s *ingredientService) GetIngredients(ctx context.Context, search string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.ingredientRepository.GetIngredients(ctx, search)
	if err != nil {
		return nil, err
	}

	result := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		result = append(result, toIngredientResponse(ing))
	}
	return result, nil
}

func (s *ingredientService) GetIngredientDetail(ctx context.Context, id string) (*domain.IngredientResponse, error) {
	ing, err := s.ingredientRepository.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIngredientNotFound
		}
		return nil, err
	}
	res := toIngredientResponse(ing)
	return &res, nil
}

// ImportIngredients loads (name, unit) rows from the external bulk
// loader with get-or-create semantics: rows already present are reported
// as skipped, so the same file can be imported twice without error.
func (s *ingredientService) ImportIngredients(ctx context.Context, req domain.IngredientImportRequest) (*domain.IngredientImportReport, error) {
	report := &domain.IngredientImportReport{
		Created: []domain.IngredientResponse{},
		Skipped: []domain.IngredientResponse{},
	}

	for _, row := range req.Ingredients {
		name := strings.TrimSpace(row.Name)
		unit := strings.TrimSpace(row.MeasurementUnit)
		if name == "" {
			return nil, domain.NewValidationError("name", "must not be empty")
		}
		if unit == "" {
			return nil, domain.NewValidationError("measurement_unit", "must not be empty")
		}

		ing, created, err := s.ingredientRepository.GetOrCreateIngredient(ctx, name, unit)
		if err != nil {
			return nil, err
		}
		if created {
			report.Created = append(report.Created, toIngredientResponse(ing))
		} else {
			report.Skipped = append(report.Skipped, toIngredientResponse(ing))
		}
	}
	return report, nil
}

func (s *ingredientService) DeleteIngredient(ctx context.Context, id string) error {
	return s.ingredientRepository.DeleteIngredient(ctx, id)
}
