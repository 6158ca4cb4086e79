package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// FileLink — a session mirrored to a JSON file on disk
// ─────────────────────────────────────────────────────────────

// FileLink keeps a session and a document file in step: external edits of
// the file replace the session wholesale, and Write stores the session in
// the file.
type FileLink struct {
	path    string
	session *document.Session
	emitter EventEmitter

	mu        sync.Mutex
	lastBytes []byte // content last read or written by us
	watcher   *fsnotify.Watcher
	cancel    context.CancelFunc
}

// NewFileLink links sess to path.
func NewFileLink(path string, sess *document.Session, emitter EventEmitter) (*FileLink, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	return &FileLink{path: abs, session: sess, emitter: emitter}, nil
}

// Path returns the absolute path of the linked file.
func (l *FileLink) Path() string {
	return l.path
}

// Load reads the file into the session. A missing file is created from
// the current session instead.
func (l *FileLink) Load() error {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return l.Write()
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", l.path, err)
	}
	return l.apply(data)
}

// Write stores the session in the file.
func (l *FileLink) Write() error {
	return l.WriteProject(context.Background(), l.session.Project())
}

// WriteProject stores p in the file. It matches SaveHook.
func (l *FileLink) WriteProject(_ context.Context, p domain.Project) error {
	data, err := document.Encode(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	l.mu.Lock()
	l.lastBytes = data
	l.mu.Unlock()
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	return nil
}

func (l *FileLink) apply(data []byte) error {
	l.mu.Lock()
	same := bytes.Equal(data, l.lastBytes)
	l.mu.Unlock()
	if same {
		return nil
	}
	p, err := document.Decode(data, l.session.Registry())
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.lastBytes = data
	l.mu.Unlock()
	l.session.Replace(p)
	return nil
}

// Watch reloads the session whenever the file changes on disk, until ctx
// is cancelled or Stop is called. Bursts of events are debounced.
func (l *FileLink) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace files instead of writing in place.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(l.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.watcher = watcher
	l.cancel = cancel
	l.mu.Unlock()

	go func() {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if abs, _ := filepath.Abs(event.Name); abs != l.path {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(200*time.Millisecond, func() { l.reload(watchCtx) })
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[WATCH] Error: %v", err)
			}
		}
	}()

	log.Printf("[WATCH] Watching %s", l.path)
	return nil
}

func (l *FileLink) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		log.Printf("[WATCH] Read %s failed: %v", l.path, err)
		return
	}
	if err := l.apply(data); err != nil {
		log.Printf("[WATCH] Reload failed: %v", err)
		ErrorToast(ctx, l.emitter, fmt.Errorf("reload %s: %w", filepath.Base(l.path), err))
		return
	}
	log.Printf("[WATCH] Reloaded %s", l.path)
}

// Stop ends watching.
func (l *FileLink) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.watcher != nil {
		l.watcher.Close()
		l.watcher = nil
	}
}
