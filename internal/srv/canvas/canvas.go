// Package canvas holds the drawing helpers shared by the content modules
// and the renderer's error image.
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var ink = image.NewUniform(color.Gray{Y: 0})

// New returns a white canvas of the given size. The display device handles
// the black and white conversion.
func New(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	return img
}

func AddLabel(img draw.Image, x, y int, label string) {
	AddLabelFace(img, x, y, label, bitmapfont.Face)
}

func AddLabelFace(img draw.Image, x, y int, label string, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  ink,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func AddCenteredLabel(img draw.Image, y int, label string) {
	AddCenteredLabelFace(img, y, label, bitmapfont.Face)
}

func AddCenteredLabelFace(img draw.Image, y int, label string, face font.Face) {
	width := img.Bounds().Dx()
	labelWidth := font.MeasureString(face, label).Ceil()
	AddLabelFace(img, (width-labelWidth)/2, y, label, face)
}

func LabelWidth(face font.Face, label string) int {
	return font.MeasureString(face, label).Ceil()
}
