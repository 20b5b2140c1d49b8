package preview

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/canvasedit/internal/document"
)

var ErrEmptyArea = errors.New("preview: content area is empty")

// TextRenderer draws a text element's words wrapped to the element width.
type TextRenderer struct {
	Face       font.Face
	Color      color.Color
	LineHeight int // 0 uses the face height
	Padding    int
}

var _ document.ContentRenderer = (*TextRenderer)(nil)

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{
		Face:    basicfont.Face7x13,
		Color:   color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff},
		Padding: 4,
	}
}

func (r *TextRenderer) Render(ctx context.Context, el document.Element, width, height int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyArea
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if el.Kind != document.KindText || el.Text == "" {
		return img, nil
	}

	lineHeight := r.LineHeight
	if lineHeight <= 0 {
		lineHeight = r.Face.Metrics().Height.Ceil()
	}
	ascent := r.Face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.Color),
		Face: r.Face,
	}
	maxWidth := fixed.I(width - 2*r.Padding)
	y := r.Padding + ascent
	for _, line := range Wrap(r.Face, el.Text, maxWidth) {
		if y-ascent >= height {
			break
		}
		d.Dot = fixed.P(r.Padding, y)
		d.DrawString(line)
		y += lineHeight
	}
	return img, nil
}

// Wrap breaks text into lines no wider than maxWidth. Words are kept whole:
// a word wider than maxWidth sits alone on its line. Newlines always break.
func Wrap(face font.Face, text string, maxWidth fixed.Int26_6) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if line != "" && font.MeasureString(face, candidate) > maxWidth {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// contentImage renders el's content at its own size, capped at limit pixels
// per side.
func contentImage(ctx context.Context, cr document.ContentRenderer, el document.Element, limit int) (image.Image, error) {
	w := min(int(el.Transform.Width+0.5), limit)
	h := min(int(el.Transform.Height+0.5), limit)
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyArea
	}
	img, err := cr.Render(ctx, el, w, h)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		fit := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(fit, fit.Bounds(), img, b, draw.Src, nil)
		return fit, nil
	}
	return img, nil
}
