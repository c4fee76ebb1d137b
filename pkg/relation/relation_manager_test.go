package relation

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
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
		&entities.Recipe{},
		&entities.Favorite{},
		&entities.ShoppingCartItem{},
		&entities.Subscription{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) entities.User {
	t.Helper()
	user := entities.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID, name string) entities.Recipe {
	t.Helper()
	rec := entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Name:        name,
		Text:        "test",
		CookingTime: 10,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return rec
}

func TestFavoriteManager_AddRemove(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mgr := NewFavoriteManager(db)

	user := createTestUser(t, db, "alice")
	rec := createTestRecipe(t, db, user.ID, "Soup")

	if err := mgr.Add(ctx, user.ID, rec.ID); err != nil {
		t.Fatalf("expected add to succeed, got %v", err)
	}

	exists, err := mgr.Exists(ctx, user.ID, rec.ID)
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected relation to exist after add")
	}

	if err := mgr.Remove(ctx, user.ID, rec.ID); err != nil {
		t.Fatalf("expected remove to succeed, got %v", err)
	}

	exists, err = mgr.Exists(ctx, user.ID, rec.ID)
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if exists {
		t.Fatal("expected relation to be gone after remove")
	}
}

func TestFavoriteManager_AddTwice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mgr := NewFavoriteManager(db)

	user := createTestUser(t, db, "alice")
	rec := createTestRecipe(t, db, user.ID, "Soup")

	if err := mgr.Add(ctx, user.ID, rec.ID); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	err := mgr.Add(ctx, user.ID, rec.ID)
	if !errors.Is(err, domain.ErrRelationExists) {
		t.Fatalf("expected ErrRelationExists, got %v", err)
	}

	var count int64
	db.Model(&entities.Favorite{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one favorite row, got %d", count)
	}
}

func TestFavoriteManager_RemoveMissing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mgr := NewFavoriteManager(db)

	user := createTestUser(t, db, "alice")
	rec := createTestRecipe(t, db, user.ID, "Soup")

	err := mgr.Remove(ctx, user.ID, rec.ID)
	if !errors.Is(err, domain.ErrRelationNotFound) {
		t.Fatalf("expected ErrRelationNotFound, got %v", err)
	}
}

func TestShoppingCartManager_IndependentOfFavorites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	favorites := NewFavoriteManager(db)
	cart := NewShoppingCartManager(db)

	user := createTestUser(t, db, "alice")
	rec := createTestRecipe(t, db, user.ID, "Soup")

	if err := favorites.Add(ctx, user.ID, rec.ID); err != nil {
		t.Fatalf("favorite add failed: %v", err)
	}
	if err := cart.Add(ctx, user.ID, rec.ID); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}
	if err := favorites.Remove(ctx, user.ID, rec.ID); err != nil {
		t.Fatalf("favorite remove failed: %v", err)
	}

	inCart, err := cart.Exists(ctx, user.ID, rec.ID)
	if err != nil {
		t.Fatalf("cart exists failed: %v", err)
	}
	if !inCart {
		t.Fatal("removing a favorite must not touch the shopping cart")
	}
}

func TestSubscriptionManager_SelfSubscribe(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mgr := NewSubscriptionManager(db)

	user := createTestUser(t, db, "alice")

	err := mgr.Add(ctx, user.ID, user.ID)
	if !errors.Is(err, domain.ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}

	var count int64
	db.Model(&entities.Subscription{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no subscription rows, got %d", count)
	}
}

func TestSubscriptionManager_SelfSubscribeStoreLevel(t *testing.T) {
	db := setupTestDB(t)

	user := createTestUser(t, db, "alice")

	// Bypass the manager: the check constraint on the table must still
	// reject the row.
	sub := entities.Subscription{
		ID:        uuid.New(),
		UserID:    user.ID,
		AuthorID:  user.ID,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&sub).Error; err == nil {
		t.Fatal("expected the storage layer to reject a self subscription")
	}
}

func TestSubscriptionManager_AddRemove(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mgr := NewSubscriptionManager(db)

	follower := createTestUser(t, db, "alice")
	author := createTestUser(t, db, "bob")

	if err := mgr.Add(ctx, follower.ID, author.ID); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := mgr.Add(ctx, follower.ID, author.ID); !errors.Is(err, domain.ErrRelationExists) {
		t.Fatalf("expected ErrRelationExists, got %v", err)
	}

	// The reverse direction is a distinct relation.
	if err := mgr.Add(ctx, author.ID, follower.ID); err != nil {
		t.Fatalf("reverse subscribe failed: %v", err)
	}

	if err := mgr.Remove(ctx, follower.ID, author.ID); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if err := mgr.Remove(ctx, follower.ID, author.ID); !errors.Is(err, domain.ErrRelationNotFound) {
		t.Fatalf("expected ErrRelationNotFound, got %v", err)
	}
}
