// Package session owns the live tracker state of the running service.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rollbook/internal/attendance"
	"rollbook/internal/i18n"
	"rollbook/internal/metrics"
	"rollbook/internal/store"
)

// Session serialises every read and mutation of one tracker and flushes the
// whole snapshot to the store after each successful mutation.
type Session struct {
	mu      sync.Mutex
	tracker *attendance.Tracker
	prefs   store.Prefs
	kv      store.KV
	log     *zap.Logger
}

// Open loads the persisted snapshot into a new session.
func Open(ctx context.Context, kv store.KV, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	snap, err := store.Load(ctx, kv, log)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	log.Info("session loaded",
		zap.Int("students", len(snap.Students)),
		zap.Int("sections", len(snap.Sections)),
		zap.Int("records", len(snap.Records)),
		zap.String("language", snap.Prefs.Language),
		zap.String("theme", snap.Prefs.Theme))

	s := &Session{
		tracker: attendance.New(snap.Students, snap.Sections, snap.Records),
		prefs:   snap.Prefs,
		kv:      kv,
		log:     log,
	}
	return s, nil
}

// Read runs fn with exclusive access to the tracker. fn must not retain it.
func (s *Session) Read(fn func(t *attendance.Tracker, p store.Prefs)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.tracker, s.prefs)
}

// Mutate runs fn and, when it succeeds, flushes the snapshot. op labels the
// mutation in logs and metrics. A failed flush leaves the change applied in
// memory and returns the store error.
func (s *Session) Mutate(ctx context.Context, op string, fn func(t *attendance.Tracker) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.tracker); err != nil {
		result := metrics.Failed
		if errors.Is(err, attendance.ErrValidation) || errors.Is(err, attendance.ErrNotFound) {
			result = metrics.Invalid
		}
		metrics.Mutations.WithLabelValues(op, result).Inc()
		return err
	}
	if err := s.flush(ctx); err != nil {
		metrics.Mutations.WithLabelValues(op, metrics.Failed).Inc()
		s.log.Error("flush after mutation failed", zap.String("op", op), zap.Error(err))
		return err
	}
	metrics.Mutations.WithLabelValues(op, metrics.OK).Inc()
	return nil
}

// Prefs returns the current preferences.
func (s *Session) Prefs() store.Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// UpdatePrefs sets language and/or theme; empty values are left unchanged.
// The language is matched to a supported locale.
func (s *Session) UpdatePrefs(ctx context.Context, language, theme string) (store.Prefs, error) {
	if theme != "" && !store.ValidTheme(theme) {
		return store.Prefs{}, &attendance.ValidationError{Field: "theme", Reason: "must be light or dark"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if language != "" {
		s.prefs.Language = i18n.Resolve(language)
	}
	if theme != "" {
		s.prefs.Theme = theme
	}
	if err := s.flush(ctx); err != nil {
		return s.prefs, err
	}
	return s.prefs, nil
}

// ToggleTheme flips between light and dark.
func (s *Session) ToggleTheme(ctx context.Context) (store.Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs.Theme == store.ThemeDark {
		s.prefs.Theme = store.ThemeLight
	} else {
		s.prefs.Theme = store.ThemeDark
	}
	if err := s.flush(ctx); err != nil {
		return s.prefs, err
	}
	return s.prefs, nil
}

// Ping checks the backing store.
func (s *Session) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *Session) flush(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.FlushDuration.Observe(time.Since(start).Seconds()) }()

	return store.Save(ctx, s.kv, store.Snapshot{
		Students: s.tracker.Students(),
		Sections: s.tracker.Sections(),
		Records:  s.tracker.Records(),
		Prefs:    s.prefs,
	})
}
