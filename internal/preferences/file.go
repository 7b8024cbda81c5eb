package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
)

// FileStore keeps preferences in a JSON file.
type FileStore struct {
	path   string
	logger *logging.Logger
}

// DefaultPath returns the per-user config location for a profile, creating
// the parent directory if needed.
func DefaultPath(profile string) (string, error) {
	name := "preferences.json"
	if profile != "" && profile != DefaultProfile {
		name = "preferences-" + profile + ".json"
	}
	return xdg.ConfigFile(filepath.Join("newsfeed", name))
}

func NewFileStore(path string, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.New(logging.LevelError)
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string {
	return s.path
}

// Read returns the defaults when the file is missing. A corrupt file is
// logged and also yields the defaults so the feed keeps working.
func (s *FileStore) Read(_ context.Context) (models.UserPreferences, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.UserPreferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs models.UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.Warn("Ignoring corrupt preferences file", logging.WithFields(map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		}))
		return models.DefaultPreferences(), nil
	}
	return Normalize(prefs), nil
}

// Write replaces the file atomically.
func (s *FileStore) Write(_ context.Context, prefs models.UserPreferences) error {
	data, err := json.MarshalIndent(Normalize(prefs), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".preferences-*.json")
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
