package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoadBlacklistFile lists every IP found in the file at filePath under
// reason and returns how many entries were added.
//
// Supported formats:
//   - One IP per line
//   - Lines starting with # are ignored (comments)
//   - IPsum format: "1.2.3.4\t5" (IP + TAB + count)
//
// Recommended Data Sources:
//   - IPsum: https://github.com/stamparm/ipsum
//   - Tor Exit Nodes: https://check.torproject.org/torbulkexitlist
func LoadBlacklistFile(ctx context.Context, store BlacklistStore, filePath, reason string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	n, err := LoadBlacklist(ctx, store, file, reason)
	if err != nil {
		return n, fmt.Errorf("%s: %w", filePath, err)
	}

	logrus.WithFields(logrus.Fields{
		"path":   filePath,
		"reason": reason,
		"count":  n,
	}).Info("Blacklist loaded")
	return n, nil
}

// LoadBlacklist reads the line format described on LoadBlacklistFile.
func LoadBlacklist(ctx context.Context, store BlacklistStore, r io.Reader, reason string) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if err := store.Add(ctx, reason, parts[0]); err != nil {
			return count, err
		}
		count++
	}

	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}
