// Package state persists reading sessions and user preferences.
package state

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	preferencesFileName   = "global_settings.json"
	DefaultLinesPerScreen = 40
)

// ErrCorrupt is returned, together with default values, when a record exists
// but cannot be decoded.
var ErrCorrupt = errors.New("state: corrupt record")

// Session is the saved reading state of one book.
type Session struct {
	Page          int       `json:"page_number"`
	Offset        int       `json:"line_offset"`
	Progress      float64   `json:"progress"`
	Bookmarks     Bookmarks `json:"bookmarks"`
	SearchHistory History   `json:"search_history"`
	Fingerprint   string    `json:"fingerprint,omitempty"`
}

// Preferences holds settings shared by all books.
type Preferences struct {
	LinesPerScreen int `json:"lines_per_screen"`
}

// DefaultPreferences returns the preferences used when none are saved.
func DefaultPreferences() Preferences {
	return Preferences{LinesPerScreen: DefaultLinesPerScreen}
}

// Store reads and writes state records in a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, or at the default state directory
// when dir is empty. The directory is created on first write.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns XDG_STATE_HOME/ebr or ~/.local/state/ebr
func DefaultDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "ebr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "ebr")
}

// Dir returns the directory records are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// BookID derives the session key of an archive from its file name without
// extension. Archives sharing a base name in different directories share a
// session.
func BookID(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Fingerprint identifies an archive by its zip directory: the name, CRC-32
// and size of every entry in archive order. Renaming or moving the file keeps
// the fingerprint; changing any entry's content does not.
func Fingerprint(filename string) (string, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return "", fmt.Errorf("state: fingerprint %s: %w", filepath.Base(filename), err)
	}
	defer zr.Close()

	h := sha256.New()
	for _, f := range zr.File {
		fmt.Fprintf(h, "%s\x00%08x\x00%d\n", f.Name, f.CRC32, f.UncompressedSize64)
	}
	return hex.EncodeToString(h.Sum(nil))[:32], nil
}

func (s *Store) sessionPath(bookID string) string {
	return filepath.Join(s.dir, bookID+".json")
}

func (s *Store) preferencesPath() string {
	return filepath.Join(s.dir, preferencesFileName)
}

// LoadSession returns the saved session for bookID. A missing record yields
// the zero session; fields absent from a saved record keep their defaults.
func (s *Store) LoadSession(bookID string) (Session, error) {
	var sess Session
	if err := s.load(s.sessionPath(bookID), &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SaveSession replaces the saved session for bookID.
func (s *Store) SaveSession(bookID string, sess Session) error {
	return s.save(s.sessionPath(bookID), sess)
}

// Clear removes the saved session for bookID.
func (s *Store) Clear(bookID string) error {
	err := os.Remove(s.sessionPath(bookID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LoadPreferences returns the saved preferences, defaulting missing or
// invalid values.
func (s *Store) LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()
	if err := s.load(s.preferencesPath(), &prefs); err != nil {
		return DefaultPreferences(), err
	}
	if prefs.LinesPerScreen < 1 {
		prefs.LinesPerScreen = DefaultLinesPerScreen
	}
	return prefs, nil
}

// SavePreferences replaces the saved preferences.
func (s *Store) SavePreferences(prefs Preferences) error {
	if prefs.LinesPerScreen < 1 {
		return fmt.Errorf("lines per screen must be positive, got %d", prefs.LinesPerScreen)
	}
	return s.save(s.preferencesPath(), prefs)
}

// load decodes the record at path over v. A missing file leaves v untouched.
func (s *Store) load(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, filepath.Base(path), err)
	}
	return nil
}

// save writes v to a temporary file next to path and renames it into place,
// so an interrupted write never truncates the previous record.
func (s *Store) save(path string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
