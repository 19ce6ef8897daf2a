// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files
// and from a .env file. Each file in the directory represents one secret: the filename
// is the key name and the file contents (trimmed) are the value.
//
// Supported key files: scraperapi-api-key, semantic-scholar-api-key, gemini-api-key,
// zotero-api-key, zotero-user-id, zotero-collection-id.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Key names recognised by the CLI.
const (
	ScraperAPIKey      = "scraperapi-api-key"
	SemanticScholarKey = "semantic-scholar-api-key"
	GeminiKey          = "gemini-api-key"
	ZoteroKey          = "zotero-api-key"
	ZoteroUserID       = "zotero-user-id"
	ZoteroCollectionID = "zotero-collection-id"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotenv merges KEY=value pairs from a .env file into the secrets map.
// Environment-style names are converted to key-file names
// (GEMINI_API_KEY becomes gemini-api-key). Values already present in
// secrets win. A missing file is not an error.
func LoadDotenv(path string, secrets map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	for k, v := range env {
		name := EnvToKey(k)
		v = strings.TrimSpace(v)
		if _, ok := secrets[name]; ok || v == "" {
			continue
		}
		secrets[name] = v
	}
	return nil
}

// EnvToKey converts an environment variable name to a key-file name.
func EnvToKey(env string) string {
	return strings.ReplaceAll(strings.ToLower(env), "_", "-")
}

// KeyToEnv converts a key-file name to an environment variable name.
func KeyToEnv(key string) string {
	return strings.ReplaceAll(strings.ToUpper(key), "-", "_")
}

// Lookup returns the secret for key, falling back to the matching
// environment variable (e.g. GEMINI_API_KEY).
func Lookup(secrets map[string]string, key string) string {
	if v, ok := secrets[key]; ok {
		return v
	}
	return strings.TrimSpace(os.Getenv(KeyToEnv(key)))
}
