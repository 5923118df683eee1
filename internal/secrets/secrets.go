// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The filename is the key and the trimmed contents are the value.
//
// Recognized keys: arxiv-contact-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// KeyArxivContactEmail is the contact address arXiv asks API clients to send.
const KeyArxivContactEmail = "arxiv-contact-email"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory yields an empty set.
// Unreadable files are logged and skipped.
func Load(dir string, logger zerolog.Logger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Get returns the value for key, falling back to the environment variable
// PAPER_RECOMMENDER_<KEY> with dashes turned into underscores.
func (s Secrets) Get(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	env := "PAPER_RECOMMENDER_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	return strings.TrimSpace(os.Getenv(env))
}

// UserAgent appends the arXiv contact address to base as a mailto comment,
// e.g. "paper-recommender/0.1 (mailto:ada@example.org)".
func (s Secrets) UserAgent(base string) string {
	email := s.Get(KeyArxivContactEmail)
	if email == "" {
		return base
	}
	return fmt.Sprintf("%s (mailto:%s)", base, email)
}
