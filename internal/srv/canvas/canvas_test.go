package canvas

import (
	"testing"
)

func TestNewCanvasIsWhite(t *testing.T) {
	img := New(20, 10)
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for _, pixel := range img.Pix {
		if pixel != 255 {
			t.Fatal("canvas not white")
		}
	}
}

func TestAddLabelDrawsInk(t *testing.T) {
	img := New(100, 30)
	AddLabel(img, 2, 20, "hello")

	inked := false
	for _, pixel := range img.Pix {
		if pixel < 128 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("label drew nothing")
	}
}

func TestAddCenteredLabelStaysInsideCanvas(t *testing.T) {
	img := New(200, 30)
	AddCenteredLabel(img, 20, "centered")

	// Nothing on the outer columns: the text must sit inside.
	for y := 0; y < 30; y++ {
		if img.GrayAt(0, y).Y < 128 || img.GrayAt(199, y).Y < 128 {
			t.Fatal("centered label touched the canvas edge")
		}
	}
}

func TestMessageFaceAlwaysAvailable(t *testing.T) {
	face := MessageFace()
	if face == nil {
		t.Fatal("no message face resolved")
	}
	if got := MessageFace(); got != face {
		t.Error("MessageFace not cached")
	}

	img := New(300, 40)
	AddLabelFace(img, 5, 25, "Error: something broke", face)
	inked := false
	for _, pixel := range img.Pix {
		if pixel < 128 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("message face drew nothing")
	}
}
