// Package preview rasterizes boards into PNG thumbnails.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/engine"
)

const (
	DefaultMaxSize = 2048
	emptySize      = 64
	margin         = 16.0
	contentLimit   = 4096

	// kappa places cubic control points for a quarter ellipse.
	kappa = 0.5522847498
)

type Style struct {
	Background  color.Color
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64 // pixels
}

var DefaultStyle = Style{
	Background:  color.White,
	Fill:        color.RGBA{R: 0xe8, G: 0xee, B: 0xf7, A: 0xff},
	Stroke:      color.RGBA{R: 0x3b, G: 0x5b, B: 0x8c, A: 0xff},
	StrokeWidth: 2,
}

// Renderer draws whole boards. Text content goes through Content.
type Renderer struct {
	Content document.ContentRenderer
	Style   Style
	MaxSize int
}

func NewRenderer(content document.ContentRenderer, maxSize int) *Renderer {
	if content == nil {
		content = NewTextRenderer()
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Renderer{Content: content, Style: DefaultStyle, MaxSize: maxSize}
}

// view maps board coordinates into image pixels: the union of all element
// bounds plus a margin, scaled down to fit MaxSize.
func (r *Renderer) view(b *document.Board) (engine.Matrix2D, int, int) {
	bounds := b.Bounds(b.Order...)
	if bounds.IsEmpty() {
		return engine.Identity(), emptySize, emptySize
	}
	w := bounds.Width + 2*margin
	h := bounds.Height + 2*margin
	scale := math.Min(1, float64(r.MaxSize)/math.Max(w, h))
	m := engine.Scale(scale, scale).Multiply(engine.Translate(margin-bounds.X, margin-bounds.Y))
	return m, pixels(w * scale), pixels(h * scale)
}

// pixels rounds a scaled extent up to whole pixels, ignoring float noise so
// that an extent scaled to exactly MaxSize stays MaxSize.
func pixels(v float64) int {
	return max(1, int(math.Ceil(v-1e-6)))
}

// Render rasterizes b bottom to top.
func (r *Renderer) Render(ctx context.Context, b *document.Board) (*image.RGBA, error) {
	view, w, h := r.view(b)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.Style.Background), image.Point{}, draw.Src)

	scale := math.Hypot(view[0], view[1])
	ras := vector.NewRasterizer(w, h)
	for _, el := range b.Ordered() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.drawElement(ctx, img, ras, view, scale, el); err != nil {
			return nil, fmt.Errorf("render element %s: %w", el.ID, err)
		}
	}
	return img, nil
}

func (r *Renderer) drawElement(ctx context.Context, img *image.RGBA, ras *vector.Rasterizer, view engine.Matrix2D, scale float64, el *document.Element) error {
	t := el.Transform
	t.Width, t.Height = math.Abs(t.Width), math.Abs(t.Height)
	toImage := view.Multiply(engine.Placement(t))

	switch el.Kind {
	case document.KindRect, document.KindEllipse:
		shape := rectPath
		if el.Kind == document.KindEllipse {
			shape = ellipsePath
		}
		inset := r.Style.StrokeWidth / scale
		fillShape(img, ras, toImage, t.Width/2, t.Height/2, shape, r.Style.Stroke)
		if t.Width > 2*inset && t.Height > 2*inset {
			fillShape(img, ras, toImage, t.Width/2-inset, t.Height/2-inset, shape, r.Style.Fill)
		}
	case document.KindText:
		content, err := contentImage(ctx, r.Content, *el, contentLimit)
		if errors.Is(err, ErrEmptyArea) {
			return nil
		}
		if err != nil {
			return err
		}
		cb := content.Bounds()
		src := toImage.
			Multiply(engine.Translate(-t.Width/2, -t.Height/2)).
			Multiply(engine.Scale(t.Width/float64(cb.Dx()), t.Height/float64(cb.Dy())))
		draw.BiLinear.Transform(img, aff3(src), content, cb, draw.Over, nil)
	}
	return nil
}

// WritePNG renders b and encodes it as PNG.
func (r *Renderer) WritePNG(ctx context.Context, w io.Writer, b *document.Board) error {
	img, err := r.Render(ctx, b)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func aff3(m engine.Matrix2D) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

type pathFunc func(ras *vector.Rasterizer, m engine.Matrix2D, hw, hh float64)

func fillShape(img *image.RGBA, ras *vector.Rasterizer, m engine.Matrix2D, hw, hh float64, shape pathFunc, c color.Color) {
	b := img.Bounds()
	ras.Reset(b.Dx(), b.Dy())
	ras.DrawOp = draw.Over
	shape(ras, m, hw, hh)
	ras.ClosePath()
	ras.Draw(img, b, image.NewUniform(c), image.Point{})
}

func pt(m engine.Matrix2D, x, y float64) (float32, float32) {
	p := m.TransformPoint(engine.V(x, y))
	return float32(p.X), float32(p.Y)
}

func rectPath(ras *vector.Rasterizer, m engine.Matrix2D, hw, hh float64) {
	ras.MoveTo(pt(m, -hw, -hh))
	ras.LineTo(pt(m, hw, -hh))
	ras.LineTo(pt(m, hw, hh))
	ras.LineTo(pt(m, -hw, hh))
}

// ellipsePath traces four cubic quarter arcs. Affine maps keep Béziers
// Béziers, so control points are transformed directly.
func ellipsePath(ras *vector.Rasterizer, m engine.Matrix2D, hw, hh float64) {
	kx, ky := kappa*hw, kappa*hh
	cube := func(c1x, c1y, c2x, c2y, x, y float64) {
		ax, ay := pt(m, c1x, c1y)
		bx, by := pt(m, c2x, c2y)
		cx, cy := pt(m, x, y)
		ras.CubeTo(ax, ay, bx, by, cx, cy)
	}
	ras.MoveTo(pt(m, hw, 0))
	cube(hw, ky, kx, hh, 0, hh)
	cube(-kx, hh, -hw, ky, -hw, 0)
	cube(-hw, -ky, -kx, -hh, 0, -hh)
	cube(kx, -hh, hw, -ky, hw, 0)
}
