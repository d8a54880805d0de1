package render

import (
	"fmt"
	"image/color"
)

// Style is the paint used for one monitor tile.
type Style struct {
	Fill            color.RGBA
	Stroke          color.RGBA
	StrokeWidth     float64
	NumberColor     color.RGBA
	ResolutionColor color.RGBA
}

// Theme groups every paint the renderer uses.
type Theme struct {
	Background       color.RGBA
	Active           Style
	Inactive         Style
	PlaceholderColor color.RGBA
	PlaceholderSize  float64
}

// DefaultTheme is the light theme of the settings window.
var DefaultTheme = Theme{
	Background: hex(0xffffff),
	Active: Style{
		Fill:            hex(0x000000),
		Stroke:          hex(0x000000),
		StrokeWidth:     2,
		NumberColor:     hex(0xffffff),
		ResolutionColor: hex(0xffffff),
	},
	Inactive: Style{
		Fill:            hex(0xf5f5f5),
		Stroke:          hex(0xd0d0d0),
		StrokeWidth:     1,
		NumberColor:     hex(0x999999),
		ResolutionColor: hex(0xbbbbbb),
	},
	PlaceholderColor: hex(0x666666),
	PlaceholderSize:  14,
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// HexString formats c as #rrggbb.
func HexString(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
