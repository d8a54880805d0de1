package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Raster is an RGBA image surface. Text is drawn with the Go Regular font.
type Raster struct {
	img   *image.RGBA
	font  *truetype.Font
	faces map[float64]font.Face
}

// NewRaster allocates a width×height pixel surface.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Raster) Clear(bg color.RGBA) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (r *Raster) FillRect(x, y, w, h float64, c color.RGBA) {
	r.fill(pixelRect(x, y, w, h), c)
}

// StrokeRect draws the border inside the rectangle so adjacent tiles never
// overlap each other's outline.
func (r *Raster) StrokeRect(x, y, w, h float64, c color.RGBA, width float64) {
	outer := pixelRect(x, y, w, h)
	sw := int(math.Max(1, math.Round(width)))
	if outer.Dx() <= 2*sw || outer.Dy() <= 2*sw {
		r.fill(outer, c)
		return
	}
	r.fill(image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+sw), c)
	r.fill(image.Rect(outer.Min.X, outer.Max.Y-sw, outer.Max.X, outer.Max.Y), c)
	r.fill(image.Rect(outer.Min.X, outer.Min.Y+sw, outer.Min.X+sw, outer.Max.Y-sw), c)
	r.fill(image.Rect(outer.Max.X-sw, outer.Min.Y+sw, outer.Max.X, outer.Max.Y-sw), c)
}

func (r *Raster) Text(s string, cx, cy, size float64, c color.RGBA) {
	face := r.face(size)
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: face,
	}
	m := face.Metrics()
	width := d.MeasureString(s)
	// Center the ascent+descent box on cy.
	baseline := fixed.Int26_6(math.Round(cy*64)) + (m.Ascent-m.Descent)/2
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(math.Round(cx*64)) - width/2,
		Y: baseline,
	}
	d.DrawString(s)
}

// EncodePNG writes the surface as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (r *Raster) face(size float64) font.Face {
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[size] = f
	return f
}

func (r *Raster) fill(rect image.Rectangle, c color.RGBA) {
	rect = rect.Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func pixelRect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+w)),
		int(math.Round(y+h)),
	)
}
