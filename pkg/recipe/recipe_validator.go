package recipe

import (
	"Foodgram-Backend/domain"
	"fmt"
)

const (
	MinAmount      = 1
	MinCookingTime = 1
)

// ValidateComposition checks a recipe write payload before anything is
// persisted: non-empty, duplicate-free tag and ingredient lists, and the
// configured minimums on amount and cooking time. Pure function, the
// caller owns the transactional write.
func ValidateComposition(req domain.RecipeRequest) error {
	if len(req.Tags) == 0 {
		return domain.NewValidationError("tags", "at least one tag is required")
	}
	seenTags := make(map[string]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, ok := seenTags[id]; ok {
			return domain.NewValidationError("tags", "duplicate tag in recipe")
		}
		seenTags[id] = struct{}{}
	}

	if len(req.Ingredients) == 0 {
		return domain.NewValidationError("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[string]struct{}, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if _, ok := seenIngredients[ing.ID]; ok {
			return domain.NewValidationError("ingredients", "duplicate ingredient in recipe")
		}
		seenIngredients[ing.ID] = struct{}{}

		if ing.Amount < MinAmount {
			return domain.NewValidationError(
				"amount",
				fmt.Sprintf("amount must be %d or more", MinAmount),
			)
		}
	}

	if req.CookingTime < MinCookingTime {
		return domain.NewValidationError(
			"cooking_time",
			fmt.Sprintf("cooking time must be %d or more", MinCookingTime),
		)
	}

	return nil
}
