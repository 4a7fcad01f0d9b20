package library

import (
	"errors"
	"testing"
)

func TestOpenWorkspaceAdoptsPasswordOnFirstOpen(t *testing.T) {
	dir := t.TempDir()

	ws, err := OpenWorkspace(dir, "hunter2", nil)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := ws.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	// Correct password reopens
	ws, err = OpenWorkspace(dir, "hunter2", nil)
	if err != nil {
		t.Fatalf("reopen with correct password failed: %v", err)
	}
	ws.Lock()

	// Wrong password is rejected
	if _, err := OpenWorkspace(dir, "wrong", nil); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestOpenWorkspaceWithoutPassword(t *testing.T) {
	dir := t.TempDir()

	// A workspace never given a password stays open
	ws, err := OpenWorkspace(dir, "", nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	ws.Lock()

	ws, err = OpenWorkspace(dir, "", nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	ws.Lock()
}

func TestLockedWorkspaceFailsScans(t *testing.T) {
	dir := t.TempDir()
	ws, err := OpenWorkspace(dir, "pw", nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	svc := New(Config{})
	svc.Bind(ws.Store, &fakeThumbs{}, nil)
	if !svc.Ready() {
		t.Fatal("service should be ready with a bound workspace")
	}

	svc.Release()
	ws.Lock()

	if svc.Ready() {
		t.Error("released service must not report ready")
	}
}
