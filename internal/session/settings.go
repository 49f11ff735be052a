// Package session holds the reading session engine: display settings, the
// per-story reading position and the chapter navigation state machine.
package session

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/metcalfc/moonriver/internal/storage"
	"go.uber.org/zap"
)

// Theme is a colour scheme for the reading view.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeSepia Theme = "sepia"
	ThemeDark  Theme = "dark"
)

// Themes lists every theme in display order.
var Themes = []Theme{ThemeLight, ThemeSepia, ThemeDark}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeSepia, ThemeDark:
		return true
	}
	return false
}

// Setting bounds.
const (
	MinFontSize    = 10
	MaxFontSize    = 32
	MinLineHeight  = 1.2
	MaxLineHeight  = 2.2
	LineHeightStep = 0.1
)

// Settings are the global reading preferences.
type Settings struct {
	FontSize   float64 `json:"fontSize"`
	LineHeight float64 `json:"lineHeight"`
	Theme      Theme   `json:"theme"`
}

// DefaultSettings returns the preferences used before anything is saved.
func DefaultSettings() Settings {
	return Settings{FontSize: 18, LineHeight: 1.7, Theme: ThemeLight}
}

// WithFontSize returns s with the font size clamped into range.
func (s Settings) WithFontSize(size float64) Settings {
	if math.IsNaN(size) {
		return s
	}
	s.FontSize = min(max(size, MinFontSize), MaxFontSize)
	return s
}

// StepFontSize adjusts the font size by delta points.
func (s Settings) StepFontSize(delta int) Settings {
	return s.WithFontSize(s.FontSize + float64(delta))
}

// WithLineHeight returns s with the line height rounded to one decimal and
// clamped into range.
func (s Settings) WithLineHeight(h float64) Settings {
	if math.IsNaN(h) {
		return s
	}
	h = math.Round(h*10) / 10
	s.LineHeight = min(max(h, MinLineHeight), MaxLineHeight)
	return s
}

// StepLineHeight adjusts the line height by steps of 0.1.
func (s Settings) StepLineHeight(steps int) Settings {
	return s.WithLineHeight(s.LineHeight + float64(steps)*LineHeightStep)
}

// WithTheme returns s using theme t. Unknown themes leave s unchanged.
func (s Settings) WithTheme(t Theme) Settings {
	if t.Valid() {
		s.Theme = t
	}
	return s
}

// NextTheme cycles light → sepia → dark → light.
func (s Settings) NextTheme() Settings {
	for i, t := range Themes {
		if t == s.Theme {
			s.Theme = Themes[(i+1)%len(Themes)]
			return s
		}
	}
	s.Theme = ThemeLight
	return s
}

// SettingsStore reads and writes Settings under storage.SettingsKey.
type SettingsStore struct {
	store storage.Store
	log   *zap.Logger
}

// NewSettingsStore returns a SettingsStore backed by store.
func NewSettingsStore(store storage.Store, log *zap.Logger) *SettingsStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsStore{store: store, log: log}
}

// Load returns the saved settings, or the defaults if nothing is saved or the
// saved entry is not a JSON object. Each field is decoded on its own: a field
// that is missing or of the wrong type keeps its default without disturbing
// the others. Values are not range-checked here.
func (s *SettingsStore) Load() Settings {
	settings := DefaultSettings()
	raw, ok := s.store.Get(storage.SettingsKey)
	if !ok {
		return settings
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		s.log.Warn("ignoring corrupt settings", zap.Error(err))
		return settings
	}
	s.decodeField(fields, "fontSize", &settings.FontSize)
	s.decodeField(fields, "lineHeight", &settings.LineHeight)
	s.decodeField(fields, "theme", &settings.Theme)
	return settings
}

func (s *SettingsStore) decodeField(fields map[string]json.RawMessage, name string, dst any) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn("ignoring corrupt setting", zap.String("field", name), zap.Error(err))
	}
}

// Save writes settings immediately.
func (s *SettingsStore) Save(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.store.Set(storage.SettingsKey, string(data)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Update applies fn to the current settings and saves the result. The new
// settings are returned even when saving fails.
func (s *SettingsStore) Update(fn func(Settings) Settings) (Settings, error) {
	next := fn(s.Load())
	err := s.Save(next)
	if err != nil {
		s.log.Warn("settings not saved", zap.Error(err))
	}
	return next, err
}
