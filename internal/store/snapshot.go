package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rollbook/internal/attendance"
)

// Entry keys.
const (
	KeyStudents   = "students"
	KeySections   = "sections"
	KeyAttendance = "attendance"
	KeyLanguage   = "language"
	KeyTheme      = "theme"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultLanguage is used when no language is stored.
const DefaultLanguage = "en"

// Prefs are the two persisted display preferences.
type Prefs struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// DefaultPrefs returns the preferences of a fresh store.
func DefaultPrefs() Prefs {
	return Prefs{Language: DefaultLanguage, Theme: ThemeLight}
}

// ValidTheme reports whether theme is light or dark.
func ValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}

// Snapshot is everything persisted for one session.
type Snapshot struct {
	Students []attendance.Student
	Sections []attendance.Section
	Records  []attendance.Record
	Prefs    Prefs
}

// Load reads a snapshot. Missing, null or unparsable entries fall back to
// defaults (no students or records, the seeded sections, en, light); only
// backend failures are returned.
func Load(ctx context.Context, kv KV, log *zap.Logger) (Snapshot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	snap := Snapshot{Prefs: DefaultPrefs()}

	var err error
	if snap.Students, err = loadJSON[attendance.Student](ctx, kv, KeyStudents, log); err != nil {
		return Snapshot{}, err
	}
	if snap.Sections, err = loadJSON[attendance.Section](ctx, kv, KeySections, log); err != nil {
		return Snapshot{}, err
	}
	if snap.Records, err = loadJSON[attendance.Record](ctx, kv, KeyAttendance, log); err != nil {
		return Snapshot{}, err
	}
	if snap.Students == nil {
		snap.Students = []attendance.Student{}
	}
	if snap.Sections == nil {
		snap.Sections = attendance.DefaultSections()
	}
	if snap.Records == nil {
		snap.Records = []attendance.Record{}
	}
	for i := range snap.Students {
		if snap.Students[i].SectionIDs == nil {
			snap.Students[i].SectionIDs = []string{}
		}
	}

	if v, err := getString(ctx, kv, KeyLanguage); err != nil {
		return Snapshot{}, err
	} else if v != "" {
		snap.Prefs.Language = v
	}
	if v, err := getString(ctx, kv, KeyTheme); err != nil {
		return Snapshot{}, err
	} else if ValidTheme(v) {
		snap.Prefs.Theme = v
	} else if v != "" {
		log.Warn("ignoring stored theme", zap.String("theme", v))
	}
	return snap, nil
}

// Save writes all five entries in one batch.
func Save(ctx context.Context, kv KV, snap Snapshot) error {
	entries := make(map[string][]byte, 5)
	for key, v := range map[string]any{
		KeyStudents:   nonNil(snap.Students),
		KeySections:   nonNil(snap.Sections),
		KeyAttendance: nonNil(snap.Records),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = b
	}
	prefs := snap.Prefs
	if prefs.Language == "" {
		prefs.Language = DefaultLanguage
	}
	if !ValidTheme(prefs.Theme) {
		prefs.Theme = ThemeLight
	}
	entries[KeyLanguage] = []byte(prefs.Language)
	entries[KeyTheme] = []byte(prefs.Theme)

	if err := kv.Put(ctx, entries); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// loadJSON returns nil (not an error) for a missing, null or corrupt entry.
func loadJSON[T any](ctx context.Context, kv KV, key string, log *zap.Logger) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn("stored entry is corrupt, using default", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return out, nil
}

func getString(ctx context.Context, kv KV, key string) (string, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return string(raw), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
