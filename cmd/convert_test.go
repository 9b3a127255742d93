package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lepinkainen/webpconv/batch"
	"github.com/lepinkainen/webpconv/types"
)

func TestConvertCmd_OutputFolder(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"absolute", filepath.Join(dir, "photos"), filepath.Join(dir, "photos_webp")},
		{"trailing slash", filepath.Join(dir, "photos") + string(filepath.Separator), filepath.Join(dir, "photos_webp")},
		{"relative", "photos", filepath.Join(dir, "photos_webp")},
		{"nested relative", filepath.Join("albums", "2019"), filepath.Join(dir, "albums", "2019_webp")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ConvertCmd{InputFolder: tt.input}
			got, err := cmd.OutputFolder()
			if err != nil {
				t.Fatalf("OutputFolder() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestConvertCmd_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     ConvertCmd
		wantErr bool
	}{
		{"defaults", ConvertCmd{ImageQuality: 80}, false},
		{"lowest quality", ConvertCmd{ImageQuality: 0}, false},
		{"highest quality", ConvertCmd{ImageQuality: 100}, false},
		{"quality too high", ConvertCmd{ImageQuality: 101}, true},
		{"negative quality", ConvertCmd{ImageQuality: -1}, true},
		{"negative workers", ConvertCmd{ImageQuality: 80, Workers: -2}, true},
		{"negative launch rate", ConvertCmd{ImageQuality: 80, LaunchRate: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func newConvertFixture(t *testing.T) (input, output string) {
	t.Helper()
	root := t.TempDir()
	input = filepath.Join(root, "photos")
	writeFile(t, filepath.Join(input, "a.png"), "png")
	writeFile(t, filepath.Join(input, "nested", "b.jpg"), "jpg")
	writeFile(t, filepath.Join(input, "c.webp"), "already webp")
	return input, filepath.Join(root, "photos_webp")
}

func TestConvertCmd_Run(t *testing.T) {
	env := setupCmdTest(t)
	input, output := newConvertFixture(t)
	logFile := filepath.Join(t.TempDir(), "logs", "run.log")

	cmd := ConvertCmd{InputFolder: input, ImageQuality: 42, Workers: 2, LogFile: logFile}
	if err := cmd.Run(&types.AppContext{Version: "1.2.3"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	assertFileContent(t, filepath.Join(output, "a.webp"), "RIFF q=42")
	assertFileContent(t, filepath.Join(output, "b.webp"), "RIFF q=42")
	assertFileContent(t, filepath.Join(output, "c.webp"), "already webp")

	if !strings.Contains(env.stdout.String(), "1.2.3") {
		t.Errorf("Header should include the version: %q", env.stdout.String())
	}
	// convert reports through the logger, not stdout
	if strings.Contains(env.stdout.String(), "Converted 3 image(s)") {
		t.Errorf("Report should not be printed to stdout: %q", env.stdout.String())
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Log file not written: %v", err)
	}
	if !strings.Contains(string(data), "Converted 3 image(s) to WebP format.") {
		t.Errorf("Log file missing report: %s", data)
	}
	if !strings.Contains(string(data), "run_id=") {
		t.Errorf("Log records should carry a run id: %s", data)
	}
	if !strings.Contains(env.stderr.String(), "Converted 3 image(s) to WebP format.") {
		t.Errorf("Console should mirror the log: %q", env.stderr.String())
	}
}

func TestConvertCmd_RunNoLogFile(t *testing.T) {
	setupCmdTest(t)
	input, output := newConvertFixture(t)
	dir := t.TempDir()
	chdir(t, dir)

	cmd := ConvertCmd{InputFolder: input, ImageQuality: 80, NoLogFile: true}
	if err := cmd.Run(&types.AppContext{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	assertFileContent(t, filepath.Join(output, "a.webp"), "RIFF q=80")
	assertNotExists(t, filepath.Join(dir, "logs"))
}

func TestConvertCmd_RunFailuresAreLogged(t *testing.T) {
	env := setupCmdTest(t)
	input, _ := newConvertFixture(t)
	writeFile(t, filepath.Join(input, "corrupt.png"), "broken")

	cmd := ConvertCmd{InputFolder: input, ImageQuality: 80, NoLogFile: true}
	if err := cmd.Run(&types.AppContext{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	logs := env.stderr.String()
	if !strings.Contains(logs, "Converted 3 image(s) to WebP format.") {
		t.Errorf("Missing success count: %q", logs)
	}
	if !strings.Contains(logs, "Failed to convert 1 image(s):") {
		t.Errorf("Missing failure header: %q", logs)
	}
	if !strings.Contains(logs, "corrupt.png") {
		t.Errorf("Failed file not listed: %q", logs)
	}

	cmd.Strict = true
	if err := cmd.Run(&types.AppContext{}); !errors.Is(err, batch.ErrFailures) {
		t.Errorf("Expected ErrFailures with --strict, got %v", err)
	}
}

func TestConvertCmd_RunDetailsAndMetrics(t *testing.T) {
	env := setupCmdTest(t)
	input, _ := newConvertFixture(t)
	metricsFile := filepath.Join(t.TempDir(), "webpconv.prom")

	cmd := ConvertCmd{
		InputFolder:  input,
		ImageQuality: 80,
		NoLogFile:    true,
		Details:      true,
		MetricsFile:  metricsFile,
		LaunchRate:   1000,
	}
	if err := cmd.Run(&types.AppContext{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{"Source", "Outcome", "copied", "a.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("Details table missing %q: %s", want, out)
		}
	}

	data, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("Metrics file not written: %v", err)
	}
	metrics := string(data)
	if !strings.Contains(metrics, `webpconv_conversions_total{mode="encode",outcome="success"} 2`) {
		t.Errorf("Unexpected encode count in metrics:\n%s", metrics)
	}
	if !strings.Contains(metrics, `webpconv_conversions_total{mode="copy",outcome="success"} 1`) {
		t.Errorf("Unexpected copy count in metrics:\n%s", metrics)
	}
}

func TestConvertCmd_RunWithConfig(t *testing.T) {
	env := setupCmdTest(t)
	input, output := newConvertFixture(t)

	cfgPath := filepath.Join(t.TempDir(), "webpconv.toml")
	writeFile(t, cfgPath, "extensions = [\"png\"]\nworkers = 1\nlog_level = \"debug\"\n")

	cmd := ConvertCmd{InputFolder: input, ImageQuality: 80, NoLogFile: true}
	if err := cmd.Run(&types.AppContext{ConfigPath: cfgPath}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	assertFileContent(t, filepath.Join(output, "a.webp"), "RIFF q=80")
	assertNotExists(t, filepath.Join(output, "b.webp"))
	assertNotExists(t, filepath.Join(output, "c.webp"))

	if !strings.Contains(env.stderr.String(), "level=DEBUG") {
		t.Errorf("Expected debug records with log_level=debug: %q", env.stderr.String())
	}
}

func TestConvertCmd_RunBadConfig(t *testing.T) {
	setupCmdTest(t)
	input, _ := newConvertFixture(t)

	cmd := ConvertCmd{InputFolder: input, ImageQuality: 80, NoLogFile: true}
	err := cmd.Run(&types.AppContext{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
