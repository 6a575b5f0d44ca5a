// Package signals implements file-based run control via the .cowork directory.
// Another process (or the user) drops a cancel file into .cowork/signals to
// stop a run that is already underway.
package signals

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const cancelFile = "cancel"

// Manager watches the project's signal directory for a cancel request.
type Manager struct {
	coworkDir string

	mu       sync.RWMutex
	canceled bool

	cancelCh chan struct{}
	once     sync.Once

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewManager creates a signal manager rooted at the given project directory.
func NewManager(projectRoot string) (*Manager, error) {
	coworkDir := filepath.Join(projectRoot, ".cowork")
	signalsDir := filepath.Join(coworkDir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	m := &Manager{
		coworkDir: coworkDir,
		cancelCh:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	// Start file watcher for immediate signals
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher - callers fall back to polling Canceled
		return m, nil
	}
	m.watcher = watcher

	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		m.watcher = nil
		return m, nil
	}

	go m.watchSignals()

	return m, nil
}

// watchSignals monitors the signals directory for the cancel file.
func (m *Manager) watchSignals() {
	for {
		select {
		case <-m.done:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == cancelFile &&
				(event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				m.markCanceled()
			}
		case <-m.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

func (m *Manager) markCanceled() {
	m.mu.Lock()
	m.canceled = true
	m.mu.Unlock()
	m.once.Do(func() { close(m.cancelCh) })
}

// Done returns a channel closed when a cancel signal arrives.
func (m *Manager) Done() <-chan struct{} {
	return m.cancelCh
}

// Canceled reports whether a cancel signal has been received.
// It also checks the file directly in case the watcher missed it.
func (m *Manager) Canceled() bool {
	cancelPath := filepath.Join(m.coworkDir, "signals", cancelFile)
	if _, err := os.Stat(cancelPath); err == nil {
		m.markCanceled()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.canceled
}

// SendCancel creates the cancel signal file.
func SendCancel(projectRoot string) error {
	signalsDir := filepath.Join(projectRoot, ".cowork", "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(signalsDir, cancelFile)
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes any signal files and resets signal state.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.canceled = false
	m.mu.Unlock()

	os.Remove(filepath.Join(m.coworkDir, "signals", cancelFile))
}

// Close stops the watcher.
func (m *Manager) Close() {
	close(m.done)
	if m.watcher != nil {
		m.watcher.Close()
	}
}
