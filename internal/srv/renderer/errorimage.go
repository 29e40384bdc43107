package renderer

import (
	"image"

	"github.com/neoblast-cz/inkframe/internal/srv/canvas"
)

// ErrorImage synthesizes the fallback bitmap shown when resolution or
// rendering fails: a light background with a single line of text.
func ErrorImage(width, height int, message string) image.Image {
	img := canvas.New(width, height)
	canvas.AddLabelFace(img, 20, height/2, "Error: "+message, canvas.MessageFace())
	return img
}
