package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveOutput moves an existing output file into a sibling "archive"
// directory, suffixing its name with a timestamp. It returns the new path.
func ArchiveOutput(outputPath string) (string, error) {
	info, err := os.Stat(outputPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("output file does not exist: %s", outputPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat output file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("output path is a directory: %s", outputPath)
	}

	archiveDir := filepath.Join(filepath.Dir(outputPath), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(outputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, timestamp, ext))

	// Two runs within the same second
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, timestamp, ext))
	}

	if err := os.Rename(outputPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive output file: %w", err)
	}

	return archivePath, nil
}
