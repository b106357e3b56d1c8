// Package aptitude holds the aptitude-test domain: topic question banks
// loaded from JSON files, random sampling with option shuffling, model
// generated hard questions, and test scoring.
package aptitude

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Question is one multiple-choice question. CorrectAnswer indexes into
// Options.
type Question struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// bankSuffix is the file naming convention for topic banks: the bank for
// topic "logical" lives in logical_questions.json.
const bankSuffix = "_questions.json"

// Library loads topic question banks from a directory and serves them to
// the gateway. Banks can be hot-reloaded while the process runs.
type Library struct {
	dir    string
	logger *slog.Logger

	watcher *fsnotify.Watcher

	mu    sync.RWMutex
	banks map[string][]Question
}

// NewLibrary loads every bank under dir. A directory with no banks is
// legal; topics simply resolve to nothing until files appear.
func NewLibrary(dir string) (*Library, error) {
	l := &Library{
		dir:    dir,
		logger: slog.Default(),
		banks:  make(map[string][]Question),
	}

	if err := l.loadAll(); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Library) loadAll() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("reading bank directory %s: %w", l.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), bankSuffix) {
			continue
		}
		if err := l.loadBank(filepath.Join(l.dir, entry.Name())); err != nil {
			l.logger.Warn("skipping unreadable question bank",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func (l *Library) loadBank(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading bank: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("parsing bank: %w", err)
	}

	topic := strings.TrimSuffix(filepath.Base(path), bankSuffix)

	l.mu.Lock()
	l.banks[strings.ToLower(topic)] = questions
	l.mu.Unlock()

	l.logger.Info("question bank loaded",
		slog.String("topic", topic),
		slog.Int("questions", len(questions)))

	return nil
}

func (l *Library) dropBank(path string) {
	topic := strings.ToLower(strings.TrimSuffix(filepath.Base(path), bankSuffix))

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.banks, topic)
}

// Topics returns the loaded topics, sorted.
func (l *Library) Topics() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	topics := make([]string, 0, len(l.banks))
	for topic := range l.banks {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Questions returns the bank for topic, or nil when no bank exists.
// Topic lookup is case-insensitive.
func (l *Library) Questions(topic string) []Question {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.banks[strings.ToLower(topic)]
}

// Watch reloads banks when files under the directory change. It returns
// after starting the watch goroutine, which runs until ctx is done.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	l.watcher = watcher

	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}

	l.logger.Info("watching question banks for changes", slog.String("dir", l.dir))

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				l.logger.Debug("bank watch stopped")
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, bankSuffix) {
					continue
				}

				switch {
				case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
					l.logger.Info("question bank changed, reloading", slog.String("file", event.Name))
					if err := l.loadBank(event.Name); err != nil {
						l.logger.Error("failed to reload question bank",
							slog.String("file", event.Name),
							slog.String("error", err.Error()))
					}
				case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					l.dropBank(event.Name)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Error("bank watch error", slog.String("error", err.Error()))
			}
		}
	}()

	return nil
}

// Close stops watching the bank directory.
func (l *Library) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
