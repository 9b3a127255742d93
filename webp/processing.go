package webp

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// ConvertFile handles the conversion of a single task. Sources that are already
// WebP are copied byte for byte, everything else goes through the encoder.
// There are no retries; a failure is final for the task.
func ConvertFile(ctx context.Context, enc Encoder, task Task) Result {
	start := time.Now()
	result := Result{Task: task, Outcome: Failure}

	if IsTargetFormat(task.Source) {
		result.Copied = true
		if err := copyFile(task.Source, task.Destination); err != nil {
			result.Err = fmt.Errorf("failed to copy %s: %w", task.Source, err)
			result.Duration = time.Since(start)
			return result
		}
	} else {
		if enc == nil {
			result.Err = fmt.Errorf("no encoder available for %s", task.Source)
			result.Duration = time.Since(start)
			return result
		}
		if err := enc.Encode(ctx, task.Source, task.Destination, task.Quality); err != nil {
			result.Err = err
			result.Duration = time.Since(start)
			return result
		}
	}

	result.Outcome = Success
	result.Duration = time.Since(start)

	// Size is informational only, a stat error does not change the outcome
	if size, err := GetFileSize(task.Destination); err == nil {
		result.OutputSize = size
	}

	return result
}

// copyFile streams src to dst, truncating any existing destination
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
