// Package gemini provides the generative-service client used by the
// production pipeline. It wraps the official genai SDK behind a small
// interface covering text, image, and long-running video generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	genai "google.golang.org/genai"
)

// Static errors for generative client operations.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("gemini: API key is required")
	// ErrEmptyResponse is returned when the model returns no candidates or parts.
	ErrEmptyResponse = errors.New("gemini: empty model response")
	// ErrNoImage is returned when an image request yields no image part.
	ErrNoImage = errors.New("gemini: response contains no image part")
	// ErrGenerationFailed is returned when a video operation finishes without a result.
	ErrGenerationFailed = errors.New("gemini: video generation failed")
	// ErrPollTimeout is returned when a video operation exceeds the poll deadline.
	ErrPollTimeout = errors.New("gemini: video generation timed out")
)

// ImageOptions controls image generation requests.
type ImageOptions struct {
	// AspectRatio is a hint embedded in the request, e.g. "16:9".
	AspectRatio string
	// WithText requests a combined text+image response (thumbnail style).
	WithText bool
}

// Client defines the generative operations the pipeline depends on.
type Client interface {
	// GenerateJSON sends a text prompt and returns the raw structured text.
	// Callers are responsible for fence-stripping and decoding; the response
	// is untrusted external data.
	GenerateJSON(ctx context.Context, prompt string) (string, error)

	// GenerateImage sends an image prompt and returns the first inline image
	// bytes. Returns ErrNoImage when the response has no image part.
	GenerateImage(ctx context.Context, prompt string, opts ImageOptions) ([]byte, error)

	// GenerateVideo starts a long-running video generation seeded by the
	// given PNG image, polls until completion or deadline, and writes the
	// resulting clip to dest.
	GenerateVideo(ctx context.Context, prompt string, imagePNG []byte, dest string) error
}

// GenClient is the genai-backed implementation of Client.
type GenClient struct {
	cli *genai.Client

	textModel  string
	imageModel string
	videoModel string

	pollInterval    time.Duration
	maxPollInterval time.Duration
	pollTimeout     time.Duration

	logger *slog.Logger
}

// Option configures a GenClient.
type Option func(*GenClient)

// WithModels sets the text, image, and video model names.
func WithModels(text, image, video string) Option {
	return func(c *GenClient) {
		if text != "" {
			c.textModel = text
		}
		if image != "" {
			c.imageModel = image
		}
		if video != "" {
			c.videoModel = video
		}
	}
}

// WithPollInterval sets the initial interval between video operation polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *GenClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithPollTimeout sets the total deadline for a video operation.
func WithPollTimeout(d time.Duration) Option {
	return func(c *GenClient) {
		if d > 0 {
			c.pollTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *GenClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a genai-backed generative client.
// If apiKey is empty, it is read from the GEMINI_API_KEY environment variable.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*GenClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	c := &GenClient{
		cli:             cli,
		textModel:       "gemini-2.5-flash",
		imageModel:      "gemini-2.5-flash-image",
		videoModel:      "veo-3.1-generate-preview",
		pollInterval:    10 * time.Second,
		maxPollInterval: 30 * time.Second,
		pollTimeout:     10 * time.Minute,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateJSON sends a text prompt and returns the model's raw text output.
// The request asks for application/json, but the result is still treated as
// untrusted and is fence-stripped by the caller before decoding.
func (c *GenClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.cli.Models.GenerateContent(ctx, c.textModel,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateImage sends an image prompt and returns the first inline image.
func (c *GenClient) GenerateImage(ctx context.Context, prompt string, opts ImageOptions) ([]byte, error) {
	modalities := []string{"IMAGE"}
	if opts.WithText {
		modalities = []string{"TEXT", "IMAGE"}
	}
	if opts.AspectRatio != "" {
		prompt = fmt.Sprintf("%s\n\nAspect ratio: %s", prompt, opts.AspectRatio)
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.imageModel,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseModalities: modalities},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate image: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, ErrNoImage
}

// GenerateVideo starts a video generation seeded by imagePNG, polls the
// long-running operation with a capped backoff until the deadline, downloads
// the produced clip, and writes it to dest.
func (c *GenClient) GenerateVideo(ctx context.Context, prompt string, imagePNG []byte, dest string) error {
	var image *genai.Image
	if len(imagePNG) > 0 {
		image = &genai.Image{ImageBytes: imagePNG, MIMEType: "image/png"}
	}

	op, err := c.cli.Models.GenerateVideos(ctx, c.videoModel, prompt, image, nil)
	if err != nil {
		return fmt.Errorf("gemini: start video generation: %w", err)
	}

	op, err = waitForVideo(ctx, op, pollConfig{
		interval:    c.pollInterval,
		maxInterval: c.maxPollInterval,
		timeout:     c.pollTimeout,
		logger:      c.logger,
	}, func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		return c.cli.Operations.GetVideosOperation(ctx, op, nil)
	})
	if err != nil {
		return err
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return ErrGenerationFailed
	}
	video := op.Response.GeneratedVideos[0].Video

	data, err := c.cli.Files.Download(ctx, video, nil)
	if err != nil {
		return fmt.Errorf("gemini: download video: %w", err)
	}
	if len(data) == 0 {
		data = video.VideoBytes
	}
	if len(data) == 0 {
		return ErrGenerationFailed
	}

	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return fmt.Errorf("gemini: write video file: %w", err)
	}
	return nil
}

// pollFunc fetches the current state of a video operation.
type pollFunc func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)

type pollConfig struct {
	interval    time.Duration
	maxInterval time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// waitForVideo polls op until it is done, the deadline passes, or ctx is
// cancelled. The interval doubles between polls up to maxInterval.
func waitForVideo(ctx context.Context, op *genai.GenerateVideosOperation, cfg pollConfig, poll pollFunc) (*genai.GenerateVideosOperation, error) {
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	deadline := time.Now().Add(cfg.timeout)
	interval := cfg.interval

	for !op.Done {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w after %s", ErrPollTimeout, cfg.timeout)
		}

		cfg.logger.Debug("waiting for video generation",
			slog.Duration("interval", interval),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gemini: poll cancelled: %w", ctx.Err())
		case <-time.After(interval):
		}

		next, err := poll(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("gemini: poll operation: %w", err)
		}
		op = next

		interval *= 2
		if cfg.maxInterval > 0 && interval > cfg.maxInterval {
			interval = cfg.maxInterval
		}
	}
	return op, nil
}

// Compile-time check that GenClient implements Client.
var _ Client = (*GenClient)(nil)
