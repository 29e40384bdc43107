package module

import (
	"image"
	"time"

	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/neoblast-cz/inkframe/internal/srv/canvas"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

type ClockProvider struct{}

func NewClockProvider() *ClockProvider {
	return &ClockProvider{}
}

func (p *ClockProvider) Name() string {
	return "clock"
}

func (p *ClockProvider) DisplayName() string {
	return "Clock"
}

func (p *ClockProvider) Description() string {
	return "Large current time with the date below"
}

func (p *ClockProvider) DefaultSettings() Settings {
	return Settings{
		"time_format": "15:04",
		"date_format": "Monday, January 2",
	}
}

func (p *ClockProvider) Render(width, height int, settings Settings, rctx RenderContext) (image.Image, error) {
	location, err := time.LoadLocation(rctx.Timezone)
	if err != nil {
		logrus.Warnf("Unknown timezone %q, using local time", rctx.Timezone)
		location = time.Local
	}
	now := time.Now().In(location)

	timeFormat := settings["time_format"]
	if timeFormat == "" {
		timeFormat = "15:04"
	}
	dateFormat := settings["date_format"]
	if dateFormat == "" {
		dateFormat = "Monday, January 2"
	}

	img := canvas.New(width, height)

	// Draw the time with the bitmap font, then upscale it so the digits
	// stay crisp on the panel.
	timeText := now.Format(timeFormat)
	glyphWidth := canvas.LabelWidth(bitmapfont.Face, timeText) + 2
	const glyphHeight = 16
	small := canvas.New(glyphWidth, glyphHeight)
	canvas.AddLabel(small, 1, 12, timeText)

	scale := (width * 2 / 3) / glyphWidth
	if maxScale := (height / 2) / glyphHeight; maxScale >= 1 && scale > maxScale {
		scale = maxScale
	}
	if scale < 1 {
		scale = 1
	}
	scaledWidth := glyphWidth * scale
	scaledHeight := glyphHeight * scale
	target := image.Rect(0, 0, scaledWidth, scaledHeight).
		Add(image.Pt((width-scaledWidth)/2, height/3-scaledHeight/2))
	xdraw.NearestNeighbor.Scale(img, target, small, small.Bounds(), xdraw.Over, nil)

	canvas.AddCenteredLabelFace(img, height*2/3, now.Format(dateFormat), canvas.MessageFace())

	return img, nil
}
