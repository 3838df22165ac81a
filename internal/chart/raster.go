package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi      = 72.0
	fontSize = 11.0

	// Dash pattern for grid lines: 2 px on, 4 px off.
	dashOn  = 2
	dashOff = 4
)

// Dark theme matching the original monitor palette.
var (
	backgroundColor = color.RGBA{R: 0x0a, G: 0x0e, B: 0x27, A: 0xff}

	styleColors = map[Style]color.RGBA{
		StyleAxis:    {R: 0x44, G: 0x44, B: 0x44, A: 0xff},
		StyleGrid:    {R: 0x22, G: 0x22, B: 0x22, A: 0xff},
		StyleSeries:  {R: 0x00, G: 0xff, B: 0x88, A: 0xff},
		StyleLabel:   {R: 0x66, G: 0x66, B: 0x66, A: 0xff},
		StyleCaption: {R: 0x88, G: 0x88, B: 0x88, A: 0xff},
	}
)

// Rasterizer draws chart primitives onto RGBA frames.
type Rasterizer struct {
	context  *freetype.Context
	fontFace font.Face
}

// NewRasterizer creates a rasterizer with the embedded Go font.
func NewRasterizer() (*Rasterizer, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)

	return &Rasterizer{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (r *Rasterizer) Close() error {
	if r.fontFace != nil {
		return r.fontFace.Close()
	}
	return nil
}

// Frame renders the primitives onto a fresh width x height image.
func (r *Rasterizer) Frame(prims []Primitive, width, height int) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)

	for _, p := range prims {
		switch p := p.(type) {
		case Line:
			drawLine(img, p.X1, p.Y1, p.X2, p.Y2, styleColors[p.Style], p.Dashed)

		case Polyline:
			for i := 1; i < len(p.Points); i++ {
				a, b := p.Points[i-1], p.Points[i]
				drawLine(img, a.X, a.Y, b.X, b.Y, styleColors[p.Style], false)
			}

		case Text:
			if err := r.drawText(p); err != nil {
				return nil, fmt.Errorf("drawing text %q: %w", p.S, err)
			}
		}
	}

	return img, nil
}

func (r *Rasterizer) drawText(t Text) error {
	r.context.SetSrc(image.NewUniform(styleColors[t.Style]))

	metrics := r.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	if t.Vertical {
		// No glyph rotation with freetype; stack the runes instead.
		runes := []rune(t.S)
		total := fontHeight * len(runes)
		y := int(t.Y) - total/2 + fontHeight - metrics.Descent.Round()

		for _, c := range runes {
			s := string(c)
			w := font.MeasureString(r.fontFace, s).Round()
			pt := freetype.Pt(int(t.X)-w/2, y)
			if _, err := r.context.DrawString(s, pt); err != nil {
				return err
			}
			y += fontHeight
		}
		return nil
	}

	x := int(t.X)
	switch t.Anchor {
	case AnchorMiddle:
		x -= font.MeasureString(r.fontFace, t.S).Round() / 2
	case AnchorEnd:
		x -= font.MeasureString(r.fontFace, t.S).Round()
	}

	baseline := int(t.Y) + fontHeight/2 - metrics.Descent.Round()
	_, err := r.context.DrawString(t.S, freetype.Pt(x, baseline))
	return err
}

// drawLine plots a segment by stepping along its longer axis. Good enough
// for 1 px chart strokes; no anti-aliasing.
func drawLine(img *image.RGBA, x1, y1, x2, y2 float64, c color.RGBA, dashed bool) {
	dx, dy := x2-x1, y2-y1
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		img.Set(int(x1), int(y1), c)
		return
	}

	for i := 0; i <= steps; i++ {
		if dashed && i%(dashOn+dashOff) >= dashOn {
			continue
		}
		t := float64(i) / float64(steps)
		img.Set(int(x1+dx*t), int(y1+dy*t), c)
	}
}
