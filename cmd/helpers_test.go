package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/lepinkainen/webpconv/webp"
)

// fakeEncoder writes a small placeholder file, failing for sources whose name contains "corrupt"
type fakeEncoder struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeEncoder) Encode(_ context.Context, src, dst string, quality int) error {
	f.mu.Lock()
	f.calls = append(f.calls, filepath.Base(src))
	f.mu.Unlock()

	if strings.Contains(filepath.Base(src), "corrupt") {
		return fmt.Errorf("cwebp failed for %s: exit status 255", src)
	}
	return os.WriteFile(dst, []byte(fmt.Sprintf("RIFF q=%d", quality)), 0o644)
}

func (f *fakeEncoder) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type cmdEnv struct {
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	encoder *fakeEncoder
}

// setupCmdTest swaps the package seams for in-memory fakes and restores them afterwards
func setupCmdTest(t *testing.T) *cmdEnv {
	t.Helper()

	env := &cmdEnv{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		encoder: &fakeEncoder{},
	}

	oldStdout, oldStderr := stdout, stderr
	oldResolve, oldNew, oldTTY := resolveEncoder, newEncoder, stderrIsTTY
	t.Cleanup(func() {
		stdout, stderr = oldStdout, oldStderr
		resolveEncoder, newEncoder, stderrIsTTY = oldResolve, oldNew, oldTTY
	})

	stdout = env.stdout
	stderr = env.stderr
	resolveEncoder = func(string) (string, error) { return "/usr/bin/cwebp", nil }
	newEncoder = func(string) webp.Encoder { return env.encoder }
	stderrIsTTY = func() bool { return false }

	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertFileContent(t *testing.T, path, expected string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	if string(data) != expected {
		t.Errorf("Expected %s to contain %q, got %q", path, expected, string(data))
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected %s not to exist (err = %v)", path, err)
	}
}
