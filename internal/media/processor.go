// Package media provides video assembly and probing via the ffmpeg CLI.
package media

import "context"

// Processor defines the video processing operations the pipeline needs.
type Processor interface {
	// Concat joins multiple video files into a single output file at the
	// configured frame rate. It first attempts a fast stream copy and falls
	// back to re-encoding with libx264/aac if the copy fails due to
	// incompatible codecs.
	Concat(ctx context.Context, segments []string, dest string) error

	// Duration returns the duration in seconds of a media file.
	Duration(ctx context.Context, path string) (float64, error)
}
