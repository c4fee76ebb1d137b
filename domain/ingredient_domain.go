package domain

import "errors"

var (
	MessageSuccessGetIngredients   = "success get ingredients"
	MessageSuccessImportIngredient = "ingredients imported successfully"
	MessageSuccessDeleteIngredient = "ingredient deleted successfully"
	MessageFailedGetIngredients    = "failed to get ingredients"
	MessageFailedImportIngredient  = "failed to import ingredients"
	MessageFailedDeleteIngredient  = "failed to delete ingredient"

	ErrIngredientNotFound = errors.New("ingredient not found")
	// Referential integrity: the ingredient is still listed by a recipe.
	ErrIngredientInUse = errors.New("ingredient is referenced by a recipe")
)

type (
	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	// IngredientImportRow is one (name, unit) pair fed by the external
	// bulk loader.
	IngredientImportRow struct {
		Name            string `json:"name" validate:"required"`
		MeasurementUnit string `json:"measurement_unit" validate:"required"`
	}

	IngredientImportRequest struct {
		Ingredients []IngredientImportRow `json:"ingredients" validate:"required,min=1,dive"`
	}

	// IngredientImportReport lists what was created and what was skipped
	// as already present, so re-running the same import is idempotent.
	IngredientImportReport struct {
		Created []IngredientResponse `json:"created"`
		Skipped []IngredientResponse `json:"skipped"`
	}
)
