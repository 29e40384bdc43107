package canvas

import (
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
)

var messageFaceCandidates = []string{
	"DejaVuSans.ttf",
	"Arial.ttf",
	"arial.ttf",
	"Helvetica.ttf",
}

var (
	messageFace     font.Face
	messageFaceOnce sync.Once
)

// MessageFace returns a readable face for status and error text: the first
// usable TrueType font found on the system, falling back to the built-in
// bitmap font.
func MessageFace() font.Face {
	messageFaceOnce.Do(func() {
		for _, candidate := range messageFaceCandidates {
			fontPath, err := findfont.Find(candidate)
			if err != nil {
				continue
			}
			fontData, err := os.ReadFile(fontPath)
			if err != nil {
				continue
			}
			parsedFont, err := truetype.Parse(fontData)
			if err != nil {
				logrus.Debugf("Unusable font %s: %v", fontPath, err)
				continue
			}
			logrus.Debugf("Message font: %s", fontPath)
			messageFace = truetype.NewFace(parsedFont, &truetype.Options{Size: 18})
			return
		}
		messageFace = bitmapfont.Face
	})
	return messageFace
}
