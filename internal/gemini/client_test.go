package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"
)

func TestWaitForVideo_CompletesAfterPolls(t *testing.T) {
	ctx := context.Background()
	polls := 0

	done := &genai.GenerateVideosOperation{Done: true}
	op, err := waitForVideo(ctx, &genai.GenerateVideosOperation{}, pollConfig{
		interval: time.Millisecond,
		timeout:  time.Second,
	}, func(_ context.Context, _ *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		polls++
		if polls < 3 {
			return &genai.GenerateVideosOperation{}, nil
		}
		return done, nil
	})

	require.NoError(t, err)
	assert.True(t, op.Done)
	assert.Equal(t, 3, polls)
}

func TestWaitForVideo_TimeoutSurfacesErrPollTimeout(t *testing.T) {
	ctx := context.Background()

	_, err := waitForVideo(ctx, &genai.GenerateVideosOperation{}, pollConfig{
		interval: time.Millisecond,
		timeout:  5 * time.Millisecond,
	}, func(_ context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		// Never completes.
		return op, nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPollTimeout)
}

func TestWaitForVideo_PollErrorIsNotATimeout(t *testing.T) {
	ctx := context.Background()
	remoteErr := errors.New("remote exploded")

	_, err := waitForVideo(ctx, &genai.GenerateVideosOperation{}, pollConfig{
		interval: time.Millisecond,
		timeout:  time.Second,
	}, func(_ context.Context, _ *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		return nil, remoteErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, remoteErr)
	assert.NotErrorIs(t, err, ErrPollTimeout)
}

func TestWaitForVideo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := waitForVideo(ctx, &genai.GenerateVideosOperation{}, pollConfig{
		interval: time.Hour, // would block forever without cancellation
		timeout:  2 * time.Hour,
	}, func(_ context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		return op, nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitForVideo_IntervalIsCapped(t *testing.T) {
	ctx := context.Background()
	polls := 0

	start := time.Now()
	_, err := waitForVideo(ctx, &genai.GenerateVideosOperation{}, pollConfig{
		interval:    time.Millisecond,
		maxInterval: 2 * time.Millisecond,
		timeout:     250 * time.Millisecond,
	}, func(_ context.Context, _ *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		polls++
		if polls == 20 {
			return &genai.GenerateVideosOperation{Done: true}, nil
		}
		return &genai.GenerateVideosOperation{}, nil
	})

	require.NoError(t, err)
	// With the cap at 2ms, twenty polls finish well before an uncapped
	// doubling sequence (1+2+4+...+2^19 ms) ever could.
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := NewClient(context.Background(), "")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}
