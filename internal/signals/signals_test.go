package signals

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCancelRoundTrip(t *testing.T) {
	root := t.TempDir()

	m, err := NewManager(root)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	if m.Canceled() {
		t.Fatal("fresh manager must not be canceled")
	}

	if err := SendCancel(root); err != nil {
		t.Fatalf("send cancel: %v", err)
	}

	// The stat fallback guarantees detection even without the watcher.
	deadline := time.After(2 * time.Second)
	for !m.Canceled() {
		select {
		case <-deadline:
			t.Fatal("cancel signal never observed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done channel not closed after cancel")
	}
}

func TestClearRemovesSignalFile(t *testing.T) {
	root := t.TempDir()

	if err := SendCancel(root); err != nil {
		t.Fatalf("send cancel: %v", err)
	}

	m, err := NewManager(root)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	m.Clear()

	path := filepath.Join(root, ".cowork", "signals", "cancel")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected cancel file removed, stat err = %v", err)
	}
	if m.Canceled() {
		t.Error("expected not canceled after clear")
	}
}

func TestStaleSignalDetectedOnStartup(t *testing.T) {
	root := t.TempDir()

	// A cancel file left over from a previous run is still honored.
	if err := SendCancel(root); err != nil {
		t.Fatalf("send cancel: %v", err)
	}

	m, err := NewManager(root)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	if !m.Canceled() {
		t.Error("expected stale cancel file to be detected")
	}
}
