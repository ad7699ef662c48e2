// Package testutil provides test fixtures backed by a real in-memory database.
package testutil

import (
	"context"
	"testing"

	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/service"
	"github.com/thunderdanp/declutter-sub000/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new migrated in-memory database that is closed when
// the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	user := db.MustCreateUser(testutil.WithPersonality("joy"))
//	item := db.MustCreateItem(user.ID, testutil.WithCategory("Books"))
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustCreateUser saves a user built from the options or fails the test.
func (db *TestDB) MustCreateUser(opts ...UserOption) *model.User {
	db.t.Helper()

	user := &model.User{Name: "Test User", PersonalityMode: "balanced"}
	for _, opt := range opts {
		opt(user)
	}
	if err := db.Storage.SaveUser(context.Background(), user); err != nil {
		db.t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// MustCreateItem saves an item for userID or fails the test.
func (db *TestDB) MustCreateItem(userID int64, opts ...ItemOption) *model.Item {
	db.t.Helper()

	item := &model.Item{UserID: userID, Name: "Test Item", Category: "Other"}
	for _, opt := range opts {
		opt(item)
	}
	if err := db.Storage.SaveItem(context.Background(), item); err != nil {
		db.t.Fatalf("failed to create item %q: %v", item.Name, err)
	}
	return item
}

// MustSetSetting writes a settings row or fails the test.
func (db *TestDB) MustSetSetting(key, value string) {
	db.t.Helper()

	if err := db.Storage.SetSetting(context.Background(), key, value); err != nil {
		db.t.Fatalf("failed to set %s: %v", key, err)
	}
}
