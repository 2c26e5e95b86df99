// Package dotdir resolves the .ragbot/ directory that holds config.toml.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the ragbot directory.
	dirName = ".ragbot"

	// HomeEnv overrides the home-level directory location when set.
	HomeEnv = "RAGBOT_HOME"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .ragbot/ directory, creating it when
// missing. Order of precedence:
//  1. Provided override
//  2. Local ./.ragbot/ dir
//  3. $RAGBOT_HOME
//  4. Home ~/.ragbot/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	case os.Getenv(HomeEnv) != "":
		dir = os.Getenv(HomeEnv)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating ragbot directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
