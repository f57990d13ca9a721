package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is where the backend keeps its store credentials.
const DefaultEnvFile = "backend/.env"

// LoadEnvFile copies the values in path into the process environment.
// Variables that are already set win over the file, and a missing file is
// not an error: the values may come from the environment alone.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}
