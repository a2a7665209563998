// Package history remembers recently embedded URLs and the configuration
// last used for each of them.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/repositories/kv"
	"iframe-generator/pkg/urlnorm"
)

const (
	ConfigsKey = "iframeConfigs"
	HistoryKey = "iframe-url-history"

	MaxEntries = 10
)

var ErrNotFound = errors.New("no saved config for url")

// Store is the persistence the history needs. Get must return kv.ErrNotFound
// for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type Entry struct {
	ID        string                   `json:"id"`
	URL       string                   `json:"url"`
	Config    embedconfig.IframeConfig `json:"config"`
	Timestamp int64                    `json:"timestamp"`
}

type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	// serializes read-modify-write cycles of this process
	mu sync.Mutex
}

// SaveConfig stores cfg under its normalized URL and moves that URL to the
// front of the history. Only MaxEntries entries are kept.
func (s *Service) SaveConfig(ctx context.Context, cfg embedconfig.IframeConfig) (embedconfig.IframeConfig, error) {
	if cfg.URL == "" || !urlnorm.IsValidURL(cfg.URL) {
		return cfg, urlnorm.ErrInvalidURL
	}

	normalized, err := urlnorm.NormalizeURL(cfg.URL)
	if err != nil {
		return cfg, err
	}

	saved := cfg.Clone()
	saved.URL = normalized

	s.mu.Lock()
	defer s.mu.Unlock()

	configs := s.loadConfigs(ctx)
	configs[normalized] = saved
	if err := s.save(ctx, ConfigsKey, configs); err != nil {
		return cfg, err
	}

	entries := s.loadEntries(ctx)
	next := make([]Entry, 0, MaxEntries)
	next = append(next, Entry{
		ID:        uuid.NewString(),
		URL:       normalized,
		Config:    saved,
		Timestamp: s.now().UnixMilli(),
	})
	for _, e := range entries {
		if len(next) == MaxEntries {
			break
		}
		if e.URL != normalized {
			next = append(next, e)
		}
	}

	if err := s.save(ctx, HistoryKey, next); err != nil {
		return cfg, err
	}

	return saved, nil
}

// List returns the history, newest first. Oversized or id-less histories
// written by older clients are repaired and written back.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadEntries(ctx)
	dirty := false
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
		dirty = true
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
			dirty = true
		}
	}

	if dirty {
		if err := s.save(ctx, HistoryKey, entries); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (s *Service) LoadConfig(ctx context.Context, url string) (embedconfig.IframeConfig, error) {
	normalized, err := urlnorm.NormalizeURL(url)
	if err != nil {
		return embedconfig.IframeConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.loadConfigs(ctx)[normalized]
	if !ok {
		return embedconfig.IframeConfig{}, fmt.Errorf("%w: %s", ErrNotFound, normalized)
	}

	return cfg, nil
}

// Remove drops url from the history. Its saved config is kept.
func (s *Service) Remove(ctx context.Context, url string) error {
	normalized, err := urlnorm.NormalizeURL(url)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadEntries(ctx)
	next := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.URL != normalized {
			next = append(next, e)
		}
	}

	return s.save(ctx, HistoryKey, next)
}

func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, HistoryKey); err != nil {
		return fmt.Errorf("failed to remove history: %w", err)
	}
	if err := s.store.Remove(ctx, ConfigsKey); err != nil {
		return fmt.Errorf("failed to remove configs: %w", err)
	}

	return nil
}

// Prune trims the history to MaxEntries and deletes saved configs whose URL is
// no longer in it.
func (s *Service) Prune(ctx context.Context) (trimmed, orphans int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadEntries(ctx)
	if len(entries) > MaxEntries {
		trimmed = len(entries) - MaxEntries
		entries = entries[:MaxEntries]
		if err = s.save(ctx, HistoryKey, entries); err != nil {
			return
		}
	}

	keep := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		keep[e.URL] = struct{}{}
	}

	configs := s.loadConfigs(ctx)
	for url := range configs {
		if _, ok := keep[url]; !ok {
			delete(configs, url)
			orphans++
		}
	}
	if orphans > 0 {
		err = s.save(ctx, ConfigsKey, configs)
	}

	return
}

func (s *Service) loadConfigs(ctx context.Context) map[string]embedconfig.IframeConfig {
	configs := map[string]embedconfig.IframeConfig{}
	s.load(ctx, ConfigsKey, &configs)
	if configs == nil {
		configs = map[string]embedconfig.IframeConfig{}
	}
	return configs
}

func (s *Service) loadEntries(ctx context.Context) []Entry {
	var entries []Entry
	s.load(ctx, HistoryKey, &entries)
	return entries
}

// load decodes key into dst. Missing, unreadable or corrupt values leave dst
// at its empty default; they are logged, never returned.
func (s *Service) load(ctx context.Context, key string, dst any) {
	log := s.logger.With(slog.String("method", "load"), slog.String("key", key))

	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Error("failed to read stored value", slog.String("error", err.Error()))
		}
		return
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Warn("stored value is corrupt, using empty default", slog.String("error", err.Error()))
		switch d := dst.(type) {
		case *[]Entry:
			*d = nil
		case *map[string]embedconfig.IframeConfig:
			*d = map[string]embedconfig.IframeConfig{}
		}
	}
}

func (s *Service) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}
