package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
	"github.com/vladislavdragonenkov/pos-terminal/internal/session"
)

func testUser() domain.User {
	return domain.User{ID: 1, Name: "Admin", Email: "admin@pos.local", Branch: "jakarta-1"}
}

func TestStore_LoginPersistsAndRestores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := session.NewStore(path, nil)
	if store.Authenticated() {
		t.Fatal("fresh store must not be authenticated")
	}

	if err := store.Login(testUser(), "tok-123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if store.Token() != "tok-123" {
		t.Fatalf("expected token, got %q", store.Token())
	}
	if store.Branch() != "jakarta-1" {
		t.Fatalf("expected branch, got %q", store.Branch())
	}

	// A second store over the same file restores the session.
	restored := session.NewStore(path, nil)
	if err := restored.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !restored.Authenticated() {
		t.Fatal("expected restored session")
	}
	user, ok := restored.User()
	if !ok || user.Email != "admin@pos.local" {
		t.Fatalf("unexpected restored user: %+v", user)
	}
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewStore(path, nil)

	if err := store.Login(testUser(), "tok-123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := store.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if store.Authenticated() || store.Token() != "" || store.Branch() != "" {
		t.Fatal("logout must clear the session")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("logout must remove the session file")
	}

	// Logging out twice is harmless.
	if err := store.Logout(); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := session.NewStore(filepath.Join(t.TempDir(), "absent.json"), nil)

	if err := store.Load(); err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if store.Authenticated() {
		t.Fatal("expected no session")
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	store := session.NewStore(path, nil)
	if err := store.Load(); err != nil {
		t.Fatalf("corrupt file must not block startup: %v", err)
	}
	if store.Authenticated() {
		t.Fatal("corrupt file must not yield a session")
	}
}
