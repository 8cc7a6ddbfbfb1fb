package internaldb

import (
	"context"
	"testing"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/models"
)

func newUnitTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUserCRUD(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	user := &models.InternalUser{
		UserID: "andre",
		Email:  "andre@example.com",
		Role:   models.RoleUser,
	}
	if err := user.SetPassword("s3nha-forte"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := store.GetUser(ctx, "andre")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "andre@example.com" {
		t.Errorf("unexpected email: %s", got.Email)
	}
	if !got.VerifyPassword("s3nha-forte") {
		t.Error("password verification failed")
	}
	if got.VerifyPassword("errada") {
		t.Error("wrong password should not verify")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	byEmail, err := store.GetUserByEmail(ctx, "andre@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.UserID != "andre" {
		t.Errorf("unexpected user: %s", byEmail.UserID)
	}

	ids, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(ids) != 1 || ids[0] != "andre" {
		t.Errorf("unexpected user list: %v", ids)
	}

	if err := store.DeleteUser(ctx, "andre"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := store.GetUser(ctx, "andre"); err == nil {
		t.Error("GetUser after delete should fail")
	}
}

func TestSaveUserPreservesCreatedAt(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	user := &models.InternalUser{UserID: "andre", Email: "a@b.c", Role: models.RoleUser}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	first, _ := store.GetUser(ctx, "andre")

	user.Name = "André"
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser update: %v", err)
	}
	second, _ := store.GetUser(ctx, "andre")

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("CreatedAt changed on update")
	}
	if second.Name != "André" {
		t.Errorf("update not applied: %s", second.Name)
	}
}

func TestSystemKV(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	// Missing keys return empty, not an error
	val, err := store.GetSystemKV(ctx, "brapi_api_key")
	if err != nil {
		t.Fatalf("GetSystemKV missing: %v", err)
	}
	if val != "" {
		t.Errorf("expected empty value, got %q", val)
	}

	if err := store.SetSystemKV(ctx, "brapi_api_key", "tok-123"); err != nil {
		t.Fatalf("SetSystemKV: %v", err)
	}
	val, err = store.GetSystemKV(ctx, "brapi_api_key")
	if err != nil {
		t.Fatalf("GetSystemKV: %v", err)
	}
	if val != "tok-123" {
		t.Errorf("unexpected value: %q", val)
	}

	// Overwrite
	store.SetSystemKV(ctx, "brapi_api_key", "tok-456")
	val, _ = store.GetSystemKV(ctx, "brapi_api_key")
	if val != "tok-456" {
		t.Errorf("overwrite not applied: %q", val)
	}
}
