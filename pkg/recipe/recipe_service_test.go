package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/relation"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Profile{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCartItem{},
		&entities.Subscription{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*gorm.DB, RecipeService) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewRecipeService(
		NewRecipeRepository(db),
		relation.NewFavoriteManager(db),
		relation.NewShoppingCartManager(db),
	)
	return db, svc
}

func seedUser(t *testing.T, db *gorm.DB, username string) entities.User {
	t.Helper()
	user := entities.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedTag(t *testing.T, db *gorm.DB, name, slug string) entities.Tag {
	t.Helper()
	tag := entities.Tag{ID: uuid.New(), Name: name, Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}
	return tag
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) entities.Ingredient {
	t.Helper()
	ing := entities.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}
	return ing
}

func recipeRequest(tagIDs []string, ingredients []domain.RecipeIngredientRequest) domain.RecipeRequest {
	return domain.RecipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Tags:        tagIDs,
		Ingredients: ingredients,
	}
}

func TestCreateRecipe(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")
	eggs := seedIngredient(t, db, "eggs", "pcs")

	req := recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: eggs.ID.String(), Amount: 3},
		},
	)
	res, err := svc.CreateRecipe(ctx, req, author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if res.Author.ID != author.ID.String() {
		t.Fatalf("expected author %s, got %s", author.ID, res.Author.ID)
	}
	if len(res.Tags) != 1 || res.Tags[0].Slug != "breakfast" {
		t.Fatalf("unexpected tags: %+v", res.Tags)
	}
	if len(res.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(res.Ingredients))
	}
	if res.IsFavorited || res.IsInShoppingCart {
		t.Fatal("a fresh recipe must not be favorited or in the cart")
	}
}

func TestCreateRecipe_UnknownTag(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	flour := seedIngredient(t, db, "flour", "g")

	req := recipeRequest(
		[]string{uuid.NewString()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 200}},
	)
	_, err := svc.CreateRecipe(ctx, req, author.ID.String())
	if !errors.Is(err, domain.ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}

	var count int64
	db.Model(&entities.Recipe{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback to leave no recipes, got %d", count)
	}
}

func TestCreateRecipe_UnknownIngredient(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")

	req := recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: uuid.NewString(), Amount: 200}},
	)
	_, err := svc.CreateRecipe(ctx, req, author.ID.String())
	if !errors.Is(err, domain.ErrIngredientNotFound) {
		t.Fatalf("expected ErrIngredientNotFound, got %v", err)
	}

	var count int64
	db.Model(&entities.Recipe{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback to leave no recipes, got %d", count)
	}
}

func TestUpdateRecipe_ReplacesComposition(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	dinner := seedTag(t, db, "Dinner", "dinner")
	flour := seedIngredient(t, db, "flour", "g")
	eggs := seedIngredient(t, db, "eggs", "pcs")

	created, err := svc.CreateRecipe(ctx, recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 200}},
	), author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	update := recipeRequest(
		[]string{dinner.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: eggs.ID.String(), Amount: 3}},
	)
	update.Name = "Omelette"

	updated, err := svc.UpdateRecipe(ctx, created.ID, update, author.ID.String())
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Name != "Omelette" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Slug != "dinner" {
		t.Fatalf("expected tags fully replaced, got %+v", updated.Tags)
	}
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].Name != "eggs" {
		t.Fatalf("expected ingredients fully replaced, got %+v", updated.Ingredients)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at must survive updates: %v != %v", updated.CreatedAt, created.CreatedAt)
	}

	var orphans int64
	db.Model(&entities.RecipeIngredient{}).Where("ingredient_id = ?", flour.ID).Count(&orphans)
	if orphans != 0 {
		t.Fatalf("expected old ingredient rows removed, found %d", orphans)
	}
}

func TestUpdateRecipe_NotAuthor(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")

	req := recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 200}},
	)
	created, err := svc.CreateRecipe(ctx, req, author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.UpdateRecipe(ctx, created.ID, req, other.ID.String())
	if !errors.Is(err, domain.ErrUnauthorizedRecipeAccess) {
		t.Fatalf("expected ErrUnauthorizedRecipeAccess, got %v", err)
	}
	if err := svc.DeleteRecipe(ctx, created.ID, other.ID.String()); !errors.Is(err, domain.ErrUnauthorizedRecipeAccess) {
		t.Fatalf("expected ErrUnauthorizedRecipeAccess on delete, got %v", err)
	}
}

func TestDeleteRecipe_CleansRelations(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")

	created, err := svc.CreateRecipe(ctx, recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 200}},
	), author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.AddFavorite(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("favorite failed: %v", err)
	}
	if _, err := svc.AddToShoppingCart(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}

	if err := svc.DeleteRecipe(ctx, created.ID, author.ID.String()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err = svc.GetRecipeDetail(ctx, created.ID, "")
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}

	var favorites, cartItems, ingredientRows int64
	db.Model(&entities.Favorite{}).Count(&favorites)
	db.Model(&entities.ShoppingCartItem{}).Count(&cartItems)
	db.Model(&entities.RecipeIngredient{}).Count(&ingredientRows)
	if favorites != 0 || cartItems != 0 || ingredientRows != 0 {
		t.Fatalf("expected dependent rows removed, got fav=%d cart=%d ing=%d",
			favorites, cartItems, ingredientRows)
	}
}

func TestGetRecipes_NewestFirst(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	repo := NewRecipeRepository(db)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"first", "second", "third"}
	for i, name := range names {
		rec := &entities.Recipe{
			ID:          uuid.New(),
			AuthorID:    author.ID,
			Name:        name,
			Text:        "test",
			CookingTime: 10,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.CreateRecipe(ctx, rec, nil, nil); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	list, err := svc.GetRecipes(ctx, domain.RecipeFilter{}, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 recipes, got %d", len(list))
	}
	for i, want := range []string{"third", "second", "first"} {
		if list[i].Name != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, list[i].Name)
		}
	}
}

func TestGetRecipes_TagFilterUnion(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	dinner := seedTag(t, db, "Dinner", "dinner")
	flour := seedIngredient(t, db, "flour", "g")

	ing := []domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}}

	both := recipeRequest([]string{breakfast.ID.String(), dinner.ID.String()}, ing)
	both.Name = "both"
	if _, err := svc.CreateRecipe(ctx, both, author.ID.String()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	onlyDinner := recipeRequest([]string{dinner.ID.String()}, ing)
	onlyDinner.Name = "dinner only"
	if _, err := svc.CreateRecipe(ctx, onlyDinner, author.ID.String()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list, err := svc.GetRecipes(ctx, domain.RecipeFilter{
		TagSlugs: []string{"breakfast", "dinner"},
	}, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	// The recipe matching both slugs must appear exactly once.
	if len(list) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(list))
	}

	list, err = svc.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"breakfast"}}, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "both" {
		t.Fatalf("expected only the breakfast recipe, got %+v", list)
	}
}

func TestGetRecipes_FavoritedFilter(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")
	ing := []domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}}

	liked := recipeRequest([]string{breakfast.ID.String()}, ing)
	liked.Name = "liked"
	likedRes, err := svc.CreateRecipe(ctx, liked, author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ignored := recipeRequest([]string{breakfast.ID.String()}, ing)
	ignored.Name = "ignored"
	if _, err := svc.CreateRecipe(ctx, ignored, author.ID.String()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.AddFavorite(ctx, likedRes.ID, viewer.ID.String()); err != nil {
		t.Fatalf("favorite failed: %v", err)
	}

	yes := true
	no := false

	list, err := svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: &yes}, viewer.ID.String())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "liked" {
		t.Fatalf("expected only the favorited recipe, got %+v", list)
	}
	if !list[0].IsFavorited {
		t.Fatal("expected is_favorited to be set for the viewer")
	}

	list, err = svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: &no}, viewer.ID.String())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "ignored" {
		t.Fatalf("expected only the non-favorited recipe, got %+v", list)
	}
}

func TestGetRecipes_AnonymousViewer(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")

	req := recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	)
	if _, err := svc.CreateRecipe(ctx, req, author.ID.String()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	yes := true
	no := false

	// Anonymous viewers favorite nothing, so the positive filter is
	// always empty and the negative one is a no-op.
	list, err := svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: &yes}, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty result for anonymous favorited filter, got %d", len(list))
	}

	list, err = svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: &no}, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected the full listing, got %d", len(list))
	}

	list, err = svc.GetRecipes(ctx, domain.RecipeFilter{IsInShoppingCart: &yes}, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty result for anonymous cart filter, got %d", len(list))
	}
}

func TestAddFavorite_UnknownRecipe(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	viewer := seedUser(t, db, "bob")

	_, err := svc.AddFavorite(ctx, uuid.NewString(), viewer.ID.String())
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestAddFavorite_Twice(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")

	created, err := svc.CreateRecipe(ctx, recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	), author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	short, err := svc.AddFavorite(ctx, created.ID, viewer.ID.String())
	if err != nil {
		t.Fatalf("favorite failed: %v", err)
	}
	if short.ID != created.ID {
		t.Fatalf("expected short recipe %s, got %s", created.ID, short.ID)
	}

	_, err = svc.AddFavorite(ctx, created.ID, viewer.ID.String())
	if !errors.Is(err, domain.ErrRelationExists) {
		t.Fatalf("expected ErrRelationExists, got %v", err)
	}

	if err := svc.RemoveFavorite(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	err = svc.RemoveFavorite(ctx, created.ID, viewer.ID.String())
	if !errors.Is(err, domain.ErrRelationNotFound) {
		t.Fatalf("expected ErrRelationNotFound, got %v", err)
	}
}

func TestBuildShoppingList(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	buyer := seedUser(t, db, "bob")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")
	eggs := seedIngredient(t, db, "eggs", "pcs")

	pancakes := recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: eggs.ID.String(), Amount: 3},
		},
	)
	pancakes.Name = "Pancakes"
	pancakesRes, err := svc.CreateRecipe(ctx, pancakes, author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	bread := recipeRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 300}},
	)
	bread.Name = "Bread"
	breadRes, err := svc.CreateRecipe(ctx, bread, author.ID.String())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.AddToShoppingCart(ctx, pancakesRes.ID, buyer.ID.String()); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}
	if _, err := svc.AddToShoppingCart(ctx, breadRes.ID, buyer.ID.String()); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}

	report, err := svc.BuildShoppingList(ctx, buyer.ID.String())
	if err != nil {
		t.Fatalf("shopping list failed: %v", err)
	}

	want := "eggs — 3 pcs\nflour — 500 g\n"
	if report != want {
		t.Fatalf("unexpected report:\ngot:  %q\nwant: %q", report, want)
	}

	again, err := svc.BuildShoppingList(ctx, buyer.ID.String())
	if err != nil {
		t.Fatalf("shopping list failed: %v", err)
	}
	if again != report {
		t.Fatal("the same cart must always render the same report")
	}
}

func TestBuildShoppingList_EmptyCart(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	buyer := seedUser(t, db, "bob")

	_, err := svc.BuildShoppingList(ctx, buyer.ID.String())
	if !errors.Is(err, domain.ErrEmptyShoppingCart) {
		t.Fatalf("expected ErrEmptyShoppingCart, got %v", err)
	}
}

func TestBuildShoppingList_CartWithoutIngredients(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	buyer := seedUser(t, db, "bob")
	repo := NewRecipeRepository(db)

	rec := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        "Water",
		Text:        "pour",
		CookingTime: 1,
		CreatedAt:   time.Now(),
	}
	if err := repo.CreateRecipe(ctx, rec, nil, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.AddToShoppingCart(ctx, rec.ID.String(), buyer.ID.String()); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}

	// A non-empty cart is never the empty-cart failure, even when its
	// recipes contribute no ingredient lines.
	report, err := svc.BuildShoppingList(ctx, buyer.ID.String())
	if err != nil {
		t.Fatalf("shopping list failed: %v", err)
	}
	if report != "" {
		t.Fatalf("expected an empty report, got %q", report)
	}
}
