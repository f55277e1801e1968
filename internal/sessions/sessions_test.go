package sessions

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kapinzzal02/playgen/internal/shared"
)

// storeContract exercises the behavior every Store implementation must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("Get Unknown", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Save And Get", func(t *testing.T) {
		sess := New()
		sess.SetTokens("access", "refresh")

		if err := store.Save(ctx, sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := store.Get(ctx, sess.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.AccessToken != "access" || got.RefreshToken != "refresh" {
			t.Errorf("unexpected tokens: %q / %q", got.AccessToken, got.RefreshToken)
		}
	})

	t.Run("Save Replaces", func(t *testing.T) {
		sess := New()
		sess.SetTokens("old", "refresh")
		if err := store.Save(ctx, sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		sess.AccessToken = "new"
		if err := store.Save(ctx, sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := store.Get(ctx, sess.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.AccessToken != "new" {
			t.Errorf("expected replaced access token, got %q", got.AccessToken)
		}
		if got.RefreshToken != "refresh" {
			t.Errorf("refresh token should survive, got %q", got.RefreshToken)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		sess := New()
		if err := store.Save(ctx, sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		if err := store.Delete(ctx, sess.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if _, err := store.Get(ctx, sess.ID); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
		}

		if err := store.Delete(ctx, "missing"); err != nil {
			t.Errorf("deleting unknown ID should not error: %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())

	t.Run("Copies On Read", func(t *testing.T) {
		ctx := context.Background()
		store := NewMemoryStore()

		sess := New()
		sess.SetTokens("access", "refresh")
		if err := store.Save(ctx, sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		first, _ := store.Get(ctx, sess.ID)
		first.AccessToken = "mutated"

		second, _ := store.Get(ctx, sess.ID)
		if second.AccessToken != "access" {
			t.Error("mutating a returned session should not affect the store")
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	storeContract(t, store)
}

func TestSession(t *testing.T) {
	t.Run("New Is Unauthenticated", func(t *testing.T) {
		sess := New()
		if sess.ID == "" {
			t.Error("expected generated ID")
		}
		if sess.Authenticated() {
			t.Error("new session should not be authenticated")
		}
	})

	t.Run("SetTokens", func(t *testing.T) {
		sess := New()
		sess.SetTokens("access", "refresh")

		if !sess.Authenticated() {
			t.Error("expected authenticated after SetTokens")
		}
	})

	t.Run("ClearTokens", func(t *testing.T) {
		sess := New()
		sess.SetTokens("access", "refresh")
		sess.ClearTokens()

		if sess.Authenticated() {
			t.Error("expected unauthenticated after ClearTokens")
		}
		if sess.RefreshToken != "" {
			t.Error("refresh token should be cleared")
		}
	})
}
