package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// Ensure PersonaStore implements the interface.
var _ driven.PersonaStore = (*PersonaStore)(nil)

// PersonaStore loads the character profile from a user-editable TOML
// file, writing an embedded default profile on first use.
//
// The store uses lazy initialisation - the file is only created when
// first accessed, not in the constructor. This makes testing easier and
// avoids unexpected I/O.
type PersonaStore struct {
	mu       sync.RWMutex
	filePath string
	cached   *domain.PersonaProfile
}

// personaFile mirrors domain.PersonaProfile with TOML tags. The domain
// type stays free of serialisation concerns.
type personaFile struct {
	Name             string            `toml:"name"`
	Style            string            `toml:"style"`
	Examples         []string          `toml:"examples"`
	Tones            map[string]string `toml:"tones"`
	EmotionModifiers map[string]string `toml:"emotion_modifiers"`
	FallbackLine     string            `toml:"fallback_line"`
}

// defaultPersona is the embedded profile written on first use: a
// noir-voiced synth detective matching the bundled dialogue corpus.
var defaultPersona = personaFile{
	Name: "Nick Valentine",
	Style: "A world-weary synth detective from Diamond City. Sardonic, dry humour, " +
		"1940s noir slang, short punchy sentences. Addresses people as 'pal', 'kid', " +
		"or 'friend'. Cynical on the surface but principled and protective underneath.",
	Examples: []string{
		"Hell of a game.",
		"No sense brooding over what else you could have done. It'll just keep you up at night.",
		"You're better at this than I thought you'd be, and I already thought you'd be good.",
		"Places like this attract three types - junkies, thugs, and whatever eats junkies and thugs.",
	},
	Tones: map[string]string{
		"investigation": "You're working on a case. Be methodical and observant.",
		"combat":        "You're in a tense situation. Stay focused and protective.",
		"casual":        "You're having a casual conversation. Show your personality.",
		"emotional":     "This is an emotional moment. Show some vulnerability.",
		"moral_choice":  "This involves a decision. Express your values clearly.",
		"location":      "You're commenting on a location. Share your observations.",
		"greeting":      "You're greeting someone. Be professional but friendly.",
	},
	EmotionModifiers: map[string]string{
		"happy":       "Let a little warmth through the cynicism.",
		"stern":       "Keep it clipped and hard-edged.",
		"sad":         "Slow down. Let the weight show.",
		"surprised":   "React, then recover your composure fast.",
		"questioning": "Probe. Answer a question with a sharper one if it helps.",
		"confident":   "You know exactly how this plays out. Say so.",
		"tired":       "Two centuries of cases in your voice.",
	},
	FallbackLine: "That's a puzzle we'll have to solve together, pal.",
}

// NewPersonaStore creates a new file-based persona store.
// If configDir is empty, defaults to ~/.gumshoe/persona.toml.
//
// The constructor does not perform any I/O - directory creation and the
// default profile write happen lazily on first Load call.
func NewPersonaStore(configDir string) (*PersonaStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".gumshoe")
	}

	return &PersonaStore{
		filePath: filepath.Join(configDir, "persona.toml"),
	}, nil
}

// Load returns the persona profile, creating the default file on first
// use. The parsed profile is cached until Reload.
func (s *PersonaStore) Load() (*domain.PersonaProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		if err := s.writeDefault(); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(s.filePath)
		if err != nil {
			return nil, fmt.Errorf("read persona file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrPersonaUnavailable, s.filePath, err)
	}

	var pf personaFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrPersonaUnavailable, s.filePath, err)
	}

	profile := &domain.PersonaProfile{
		Name:             pf.Name,
		Style:            pf.Style,
		Examples:         pf.Examples,
		Tones:            pf.Tones,
		EmotionModifiers: pf.EmotionModifiers,
		FallbackLine:     pf.FallbackLine,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	s.cached = profile
	return profile, nil
}

// Reload discards the cached profile, forcing a fresh parse on the next
// Load.
func (s *PersonaStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

// Watch invokes onChange whenever the persona file is rewritten, until
// ctx is cancelled. The cache is invalidated before the callback runs,
// so a Load inside onChange sees the new profile. Watch failures are
// reported once via the returned error; editing the file is optional,
// so callers typically log and continue without live reload.
func (s *PersonaStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create persona watcher: %w", err)
	}

	// Watch the directory: editors replace files rather than writing
	// in place, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.filePath), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				logger.Debug("Persona file changed, reloading")
				s.Reload()
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Persona watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Path returns the persona file path.
func (s *PersonaStore) Path() string {
	return s.filePath
}

// writeDefault persists the embedded default profile (caller must hold
// lock).
func (s *PersonaStore) writeDefault() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(defaultPersona)
	if err != nil {
		return fmt.Errorf("marshal default persona: %w", err)
	}
	logger.Info("Writing default persona to %s", s.filePath)
	return os.WriteFile(s.filePath, data, 0600)
}
