package thumb

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWritesValidPNG(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "thumb.png")
	require.NoError(t, g.Render("1M GOROUTINES", dest))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 720, img.Bounds().Dy())
}

func TestRenderCustomSize(t *testing.T) {
	g, err := NewGenerator(WithSize(640, 360))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "small.png")
	require.NoError(t, g.Render("Channels Explained", dest))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy())
}

func TestRenderLongTextStillEncodes(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "long.png")
	err = g.Render("A very long thumbnail line that needs wrapping across rows", dest)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderFailsOnBadDestination(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	err = g.Render("text", filepath.Join(t.TempDir(), "missing", "thumb.png"))
	assert.Error(t, err)
}
