// Package upload publishes finished videos to YouTube via the Data API v3.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// educationCategoryID is YouTube's category for educational content.
const educationCategoryID = "27"

var (
	// ErrMissingCredentials is returned when OAuth credentials are incomplete.
	ErrMissingCredentials = errors.New("youtube client id, client secret and refresh token are required")
	// ErrUploadFailed is returned when the API rejects the video upload.
	ErrUploadFailed = errors.New("youtube upload failed")
)

// Credentials holds the OAuth2 installed-app credentials for a channel.
// The refresh token is obtained once out of band and reused for every upload.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Request describes one video to publish.
type Request struct {
	VideoPath     string
	ThumbnailPath string
	Title         string
	Description   string
	Tags          []string
	Privacy       string
}

// Result reports a completed upload.
type Result struct {
	VideoID string
	URL     string
}

// Publisher uploads finished videos.
type Publisher interface {
	Upload(ctx context.Context, req Request) (*Result, error)
}

// YouTubeUploader implements Publisher against the YouTube Data API.
type YouTubeUploader struct {
	svc    *youtube.Service
	logger *slog.Logger
}

// Option configures a YouTubeUploader.
type Option func(*YouTubeUploader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *YouTubeUploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// NewYouTubeUploader builds an authenticated uploader. The token expiry is
// set in the past so the first request always exchanges the refresh token.
func NewYouTubeUploader(ctx context.Context, creds Credentials, opts ...Option) (*YouTubeUploader, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, ErrMissingCredentials
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	client := &http.Client{
		Transport: &oauth2.Transport{Source: conf.TokenSource(ctx, token)},
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	u := &YouTubeUploader{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Upload publishes the video and, best effort, sets its thumbnail.
// A thumbnail failure is logged and does not fail the upload.
func (u *YouTubeUploader) Upload(ctx context.Context, req Request) (*Result, error) {
	f, err := os.Open(req.VideoPath) // #nosec G304 - path is built by trusted internal code
	if err != nil {
		return nil, fmt.Errorf("opening video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if fi, err := f.Stat(); err == nil {
		u.logger.Info("uploading video",
			"title", req.Title,
			"size_mb", fmt.Sprintf("%.1f", float64(fi.Size())/1024/1024))
	}

	privacy := req.Privacy
	if privacy == "" {
		privacy = "private"
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  educationCategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.svc.Videos.Insert([]string{"snippet", "status"}, video)
	uploaded, err := call.Media(f).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	result := &Result{
		VideoID: uploaded.Id,
		URL:     fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id),
	}
	u.logger.Info("video uploaded", "video_id", result.VideoID, "url", result.URL)

	if req.ThumbnailPath != "" {
		if err := u.setThumbnail(ctx, result.VideoID, req.ThumbnailPath); err != nil {
			u.logger.Warn("setting thumbnail failed", "video_id", result.VideoID, "error", err)
		}
	}
	return result, nil
}

func (u *YouTubeUploader) setThumbnail(ctx context.Context, videoID, path string) error {
	f, err := os.Open(path) // #nosec G304 - path is built by trusted internal code
	if err != nil {
		return fmt.Errorf("opening thumbnail: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := u.svc.Thumbnails.Set(videoID).Media(f).Context(ctx).Do(); err != nil {
		return fmt.Errorf("setting thumbnail: %w", err)
	}
	return nil
}
