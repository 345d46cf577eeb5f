// Package auth manages the bearer token used to talk to the assistant
// service: where it is stored, what it says about the user, and what
// happens when the service rejects it.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/parley"
	"go.uber.org/zap"
)

// Interface compliance check.
var _ parley.TokenSource = FileTokenSource("")

// FileTokenSource reads the token from a file on every call, so a token
// written by another process or removed by Logout takes effect at once.
type FileTokenSource string

// Token returns the trimmed file contents. A missing or empty file yields
// [parley.ErrNoToken].
func (p FileTokenSource) Token() (string, error) {
	data, err := os.ReadFile(string(p))
	if errors.Is(err, fs.ErrNotExist) {
		return "", parley.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", parley.ErrNoToken
	}
	return tok, nil
}

// SaveToken writes token to path with owner-only permissions, creating
// parent directories as needed.
func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Logout returns the hook to run when the service answers 401: the stored
// token at path is deleted so the next run starts signed out.
func Logout(path string, logger *zap.Logger) parley.UnauthorizedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(cause error) {
		err := os.Remove(path)
		switch {
		case err == nil:
			logger.Warn("token rejected, signed out", zap.String("token_file", path), zap.Error(cause))
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("token rejected", zap.Error(cause))
		default:
			logger.Error("remove token file", zap.String("token_file", path), zap.Error(err))
		}
	}
}
