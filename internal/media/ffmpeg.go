package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Static errors for media operations.
var (
	// ErrNoVideoPaths is returned when no video paths are provided for joining.
	ErrNoVideoPaths = errors.New("no video paths provided")
	// ErrInvalidFrameRate is returned when the frame rate is not positive.
	ErrInvalidFrameRate = errors.New("invalid frame rate: must be positive")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
	// ErrFFmpegNotFound is returned when the ffmpeg binary is not on PATH.
	ErrFFmpegNotFound = errors.New("ffmpeg binary not found")
)

// Compile-time check that FFmpegProcessor implements Processor.
var _ Processor = (*FFmpegProcessor)(nil)

// FFmpegProcessor implements Processor using the ffmpeg CLI.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	// frameRate is the output frame rate used when re-encoding.
	frameRate int
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegProcessor(ffmpegPath string, frameRate int) (*FFmpegProcessor, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if frameRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFrameRate, frameRate)
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, frameRate: frameRate}, nil
}

// Check verifies that the ffmpeg binary is available.
func (p *FFmpegProcessor) Check() error {
	if _, err := exec.LookPath(p.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, p.ffmpegPath)
	}
	return nil
}

// Concat concatenates multiple video files into a single output file.
// It first attempts a fast copy (no re-encoding) and falls back to re-encoding
// with libx264/aac at the configured frame rate if the copy fails.
func (p *FFmpegProcessor) Concat(ctx context.Context, segments []string, dest string) error {
	if len(segments) == 0 {
		return ErrNoVideoPaths
	}

	if len(segments) == 1 {
		// Single segment: just copy the file
		return p.copyFile(segments[0], dest)
	}

	// Create a temporary file list for the concat demuxer
	listFile, err := p.createConcatList(segments)
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer func() { _ = os.Remove(listFile) }()

	// Try fast copy first (no re-encoding)
	err = p.joinWithCopy(ctx, listFile, dest)
	if err == nil {
		return nil
	}

	// Fast copy failed, fall back to re-encoding
	return p.joinWithReencode(ctx, listFile, dest)
}

// joinWithCopy attempts to concatenate videos using stream copy (no re-encoding).
func (p *FFmpegProcessor) joinWithCopy(ctx context.Context, listFile, output string) error {
	args := []string{
		"-y",           // Overwrite output file
		"-f", "concat", // Use concat demuxer
		"-safe", "0", // Allow absolute paths
		"-i", listFile, // Input file list
		"-c", "copy", // Copy streams without re-encoding
		output, // Output file
	}
	return p.runFFmpeg(ctx, args)
}

// joinWithReencode concatenates videos by re-encoding with libx264/aac.
func (p *FFmpegProcessor) joinWithReencode(ctx context.Context, listFile, output string) error {
	args := []string{
		"-y",           // Overwrite output file
		"-f", "concat", // Use concat demuxer
		"-safe", "0", // Allow absolute paths
		"-i", listFile, // Input file list
		"-c:v", "libx264", // Video codec
		"-preset", "fast", // Encoding speed preset
		"-crf", "23", // Quality (lower = better, 23 is default)
		"-r", strconv.Itoa(p.frameRate), // Output frame rate
		"-pix_fmt", "yuv420p", // Pixel format for compatibility
		"-c:a", "aac", // Audio codec
		"-b:a", "128k", // Audio bitrate
		output, // Output file
	}
	return p.runFFmpeg(ctx, args)
}

// createConcatList creates a temporary file containing the list of video files
// in the format required by ffmpeg's concat demuxer.
func (p *FFmpegProcessor) createConcatList(segments []string) (string, error) {
	f, err := os.CreateTemp("", "ffmpeg-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, path := range segments {
		// Convert to absolute path for safety
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		// Escape single quotes in path
		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapedPath); err != nil {
			return "", fmt.Errorf("write to concat list: %w", err)
		}
	}

	return f.Name(), nil
}

// copyFile copies a file from src to dst.
func (p *FFmpegProcessor) copyFile(src, dst string) error {
	input, err := os.ReadFile(src) // #nosec G304 - src is provided by trusted internal code
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	if err := os.WriteFile(dst, input, 0600); err != nil {
		return fmt.Errorf("write destination file: %w", err)
	}
	return nil
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// Duration returns the duration in seconds of a media file.
// It uses ffprobe to extract the duration metadata.
func (p *FFmpegProcessor) Duration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(stdout.String()), "%f", &duration)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}
