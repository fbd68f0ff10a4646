package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
)

const (
	TokenFileName  = "api_token"
	keyringService = "buycheck"
	keyringUser    = "api_token"
	tokenPrefix    = "bc_"
	fileMode       = 0600
)

// ErrNoToken is returned when neither the keychain nor the fallback file hold a token.
var ErrNoToken = errors.New("no API token configured")

// NewToken returns a random bearer token for the local API.
func NewToken() string {
	return tokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Match compares a presented token against the expected one in constant time.
func Match(expected, presented string) bool {
	if expected == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}

// Store keeps the API token in the OS keychain, falling back to a file in Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Save(token string) error {
	if token == "" {
		return errors.New("token is required")
	}

	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return s.saveFile(token)
	}

	// clean up file if the keychain took it
	os.Remove(s.filePath())
	return nil
}

func (s *Store) Load() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	b, err := os.ReadFile(s.filePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("reading token file %s: %w", s.filePath(), err)
	}

	token = strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *Store) Delete() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "error", err)
	}
	if err := os.Remove(s.filePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting token file: %w", err)
	}
	return nil
}

func (s *Store) saveFile(token string) error {
	return os.WriteFile(s.filePath(), []byte(token), fileMode)
}

func (s *Store) filePath() string {
	return filepath.Join(s.Dir, TokenFileName)
}
