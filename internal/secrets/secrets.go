// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files and
// from a dotenv file.
//
// In the secrets directory each file is one secret: the filename is the key
// name and the trimmed file contents are the value. Supported key files:
// notion-token, notion-database-id.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Key files recognized in the secrets directory.
const (
	KeyNotionToken      = "notion-token"
	KeyNotionDatabaseID = "notion-database-id"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log logrus.FieldLogger) (map[string]string, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithField("secret", name).WithError(err).Warn("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile exports the variables in the dotenv file at path into the
// process environment. Variables already set in the environment win. A
// missing file is not an error and reports false.
func LoadEnvFile(path string, log logrus.FieldLogger) (bool, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("file", path).Debug("no env file; relying on process environment")
			return false, nil
		}
		return false, fmt.Errorf("checking env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("loading env file %s: %w", path, err)
	}
	log.WithField("file", path).Debug("loaded env file")
	return true, nil
}
