// Package thumb renders fallback thumbnails locally when generative image
// creation is unavailable.
package thumb

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
)

// Generator renders text-on-background thumbnails as PNG files.
type Generator struct {
	width    int
	height   int
	face     font.Face
	bg       color.NRGBA
	accent   color.NRGBA
	fontSize float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSize overrides the output dimensions.
func WithSize(width, height int) Option {
	return func(g *Generator) {
		if width > 0 && height > 0 {
			g.width = width
			g.height = height
		}
	}
}

// WithFontFile loads a custom TTF font instead of the bundled one.
func WithFontFile(path string) Option {
	return func(g *Generator) {
		face, err := loadFontFace(path, g.fontSize)
		if err == nil {
			g.face = face
		}
	}
}

// NewGenerator creates a thumbnail generator using the bundled bold font.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		width:    defaultWidth,
		height:   defaultHeight,
		bg:       color.NRGBA{R: 0x1A, G: 0x1A, B: 0x2E, A: 0xFF},
		accent:   color.NRGBA{R: 0xE9, G: 0x45, B: 0x60, A: 0xFF},
		fontSize: 110,
	}

	parsed, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing bundled font: %w", err)
	}
	g.face = truetype.NewFace(parsed, &truetype.Options{
		Size:    g.fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Render draws the text centered on a dark background with an accent bar
// and writes the result as a PNG to dest.
func (g *Generator) Render(text, dest string) error {
	w, h := float64(g.width), float64(g.height)

	dc := gg.NewContext(g.width, g.height)
	dc.SetColor(g.bg)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	// Accent bar along the bottom edge
	dc.SetColor(g.accent)
	dc.DrawRectangle(0, h-24, w, 24)
	dc.Fill()

	dc.SetFontFace(g.face)
	dc.SetColor(color.White)
	dc.DrawStringWrapped(strings.ToUpper(text), w/2, h/2, 0.5, 0.5, w*0.85, 1.3, gg.AlignCenter)

	f, err := os.Create(dest) // #nosec G304 - dest is built by trusted internal code
	if err != nil {
		return fmt.Errorf("creating thumbnail file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := dc.EncodePNG(f); err != nil {
		return fmt.Errorf("encoding thumbnail PNG: %w", err)
	}
	return nil
}

func loadFontFace(path string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing TTF: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
