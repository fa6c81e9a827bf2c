package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, fileName)); err != nil {
		t.Fatalf("expected lock file to exist: %v", err)
	}
	if l.Token() == "" {
		t.Fatalf("expected a non-empty holder token")
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, fileName)); !os.IsNotExist(err) {
		t.Fatalf("expected lock file to be removed after Release")
	}
}

func TestAcquireContendedWhileHeld(t *testing.T) {
	dir := t.TempDir()
	first, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire (first): %v", err)
	}
	defer first.Release()

	_, err = Acquire(dir)
	if err == nil {
		t.Fatalf("expected second Acquire to fail while the lock is held")
	}
	kind, ok := apperr.KindOf(err)
	if !ok || kind != apperr.LockContended {
		t.Fatalf("expected apperr.LockContended, got %v (ok=%v)", kind, ok)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("second Release should be a no-op, got: %v", err)
	}
}

func TestAcquireAfterReleaseSucceeds(t *testing.T) {
	dir := t.TempDir()
	first, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire (first): %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	second, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire (second, after release): %v", err)
	}
	defer second.Release()
}
