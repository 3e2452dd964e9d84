// Package validate checks on-disk data integrity against recorded hashes
// before any volume is loaded for analysis.
package validate

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// HashListName is the manifest file expected inside a data directory. Each
// line holds a SHA1 hex digest and a path relative to the data directory,
// separated by whitespace.
const HashListName = "hash_list.txt"

// FileHash returns the SHA1 hex digest of the contents of path.
func FileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	h := sha1.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ValidateData reads the hash manifest in dataDir and verifies every listed
// file. It fails on the first missing or mismatching file, so a batch run can
// refuse to analyze corrupted inputs.
func ValidateData(dataDir string) error {
	manifest := filepath.Join(dataDir, HashListName)
	file, err := os.Open(manifest)
	if err != nil {
		return fmt.Errorf("failed to open hash manifest: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return fmt.Errorf("%s:%d: malformed entry %q", manifest, line, text)
		}
		expected, name := fields[0], fields[1]

		actual, err := FileHash(filepath.Join(dataDir, name))
		if err != nil {
			return err
		}
		if actual != expected {
			return fmt.Errorf("hash for %s does not match: recorded %s, got %s",
				name, expected, actual)
		}
	}
	return scanner.Err()
}
