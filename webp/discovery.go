package webp

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FindImageFilesRecursively scans a directory for image files with one of the given extensions
func FindImageFilesRecursively(directory string, exts []string) ([]string, error) {
	exts = NormalizeExtensions(exts)
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	// Make sure the directory itself is readable before handing it to fd,
	// which would otherwise just print nothing
	if _, err := os.Stat(directory); err != nil {
		return nil, err
	}

	var files []string
	var err error

	// Use fd if available for better performance, otherwise fall back to filepath.WalkDir
	if isFdAvailable() {
		files, err = findImageFilesWithFd(directory, exts)
		if err != nil {
			files, err = findImageFilesWithWalkDir(directory, exts)
		}
	} else {
		files, err = findImageFilesWithWalkDir(directory, exts)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// FindCollisions groups sources by destination and keeps only destinations
// claimed by more than one source. Those tasks overwrite each other.
func FindCollisions(tasks []Task) map[string][]string {
	byDest := make(map[string][]string)
	for _, t := range tasks {
		byDest[t.Destination] = append(byDest[t.Destination], t.Source)
	}

	collisions := make(map[string][]string)
	for dest, sources := range byDest {
		if len(sources) > 1 {
			collisions[dest] = sources
		}
	}
	return collisions
}

// isFdAvailable checks if the 'fd' command is available in PATH
func isFdAvailable() bool {
	_, err := exec.LookPath("fd")
	return err == nil
}

// findImageFilesWithWalkDir uses filepath.WalkDir to find image files (fallback method)
func findImageFilesWithWalkDir(directory string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if IsImageFile(path, exts) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// findImageFilesWithFd uses the 'fd' command to find image files.
// Hidden and ignored files are included so the result matches the WalkDir fallback.
func findImageFilesWithFd(directory string, exts []string) ([]string, error) {
	trimmed := make([]string, len(exts))
	for i, e := range exts {
		trimmed[i] = regexp.QuoteMeta(strings.TrimPrefix(e, "."))
	}
	pattern := `\.(` + strings.Join(trimmed, "|") + `)$`

	cmd := exec.Command("fd", "--type", "f", "--hidden", "--no-ignore", "--ignore-case", pattern, directory)
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line != "" && IsImageFile(line, exts) {
			files = append(files, filepath.Clean(line))
		}
	}

	return files, nil
}
