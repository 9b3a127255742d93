package webp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the source formats picked up by discovery
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".tiff", ".webp"}

// NormalizeExtensions lowercases extensions and makes sure they start with a dot
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// IsImageFile checks if the given file extension is one of the allowed image extensions.
// An empty allow-list falls back to DefaultExtensions.
func IsImageFile(path string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	ext := strings.ToLower(filepath.Ext(path)) // handle upper case extensions

	for _, v := range exts {
		if v == ext {
			return true
		}
	}
	return false
}

// IsTargetFormat reports whether the file is already WebP
func IsTargetFormat(path string) bool {
	return strings.EqualFold(filepath.Ext(path), TargetExt)
}

// GetFileSize returns the size of a file in bytes
func GetFileSize(filePath string) (int64, error) {
	fi, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get file size: %w", err)
	}
	return fi.Size(), nil
}
