package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrEncoderNotFound means no cwebp binary could be located
var ErrEncoderNotFound = errors.New("cwebp encoder not found")

// EncoderBinaryName is the platform file name of the libwebp encoder
func EncoderBinaryName() string {
	if runtime.GOOS == "windows" {
		return "cwebp.exe"
	}
	return "cwebp"
}

// BundledEncoderPath returns where a libwebp distribution unpacked next to the
// executable keeps cwebp: <exe dir>/libwebp/bin/cwebp
func BundledEncoderPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "libwebp", "bin", EncoderBinaryName()), nil
}

// ResolveEncoder picks the encoder binary: the configured path if given,
// then the bundled copy beside the executable, then cwebp on PATH.
func ResolveEncoder(configured string) (string, error) {
	if configured != "" {
		if err := checkExecutable(configured); err != nil {
			return configured, fmt.Errorf("%w at %s: %v. %s", ErrEncoderNotFound, configured, err, getInstallationInstructions())
		}
		return configured, nil
	}

	if bundled, err := BundledEncoderPath(); err == nil {
		if checkExecutable(bundled) == nil {
			return bundled, nil
		}
	}

	if path, err := exec.LookPath(EncoderBinaryName()); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w in libwebp/bin or PATH. %s", ErrEncoderNotFound, getInstallationInstructions())
}

func checkExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("is a directory")
	}
	if runtime.GOOS != "windows" && fi.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("not executable")
	}
	return nil
}

// getInstallationInstructions returns platform-specific installation instructions
func getInstallationInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install webp"
	case "linux":
		return "Install with: apt-get install webp (Ubuntu/Debian) or dnf install libwebp-tools (Fedora/RHEL)"
	case "windows":
		return "Download libwebp from https://developers.google.com/speed/webp/download and unpack it to libwebp next to webpconv.exe"
	default:
		return "Download from https://developers.google.com/speed/webp/download"
	}
}
