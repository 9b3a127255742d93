package webp

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Encoder turns one source image into a WebP file at dst
type Encoder interface {
	Encode(ctx context.Context, src, dst string, quality int) error
}

// CWebP runs the libwebp cwebp binary as a subprocess
type CWebP struct {
	Path string
}

// Args returns the argument list passed to the encoder, without the binary itself
func (c CWebP) Args(src, dst string, quality int) []string {
	return []string{"-quiet", "-q", strconv.Itoa(quality), src, "-o", dst}
}

// Encode invokes cwebp and treats any non-zero exit or launch failure as an error.
// Stdout and stderr are discarded.
func (c CWebP) Encode(ctx context.Context, src, dst string, quality int) error {
	if c.Path == "" {
		return fmt.Errorf("cwebp: no encoder path configured")
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args(src, dst, quality)...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to encode %s: %w", src, err)
	}
	return nil
}

// EncoderFunc adapts a plain function to the Encoder interface
type EncoderFunc func(ctx context.Context, src, dst string, quality int) error

// Encode calls f
func (f EncoderFunc) Encode(ctx context.Context, src, dst string, quality int) error {
	return f(ctx, src, dst, quality)
}
