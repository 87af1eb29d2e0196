package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrDataDirRequired = errors.New("data directory is required")

func NormalizeDataDir(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrDataDirRequired
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}

	return absPath, nil
}
