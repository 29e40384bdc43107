package module

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePhoto(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetGray(x, y, color.Gray{Y: shade})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func centerShade(t *testing.T, img image.Image) uint8 {
	t.Helper()
	bounds := img.Bounds()
	c := color.GrayModel.Convert(img.At(bounds.Dx()/2, bounds.Dy()/2)).(color.Gray)
	return c.Y
}

func TestPhotosCursorAdvancesAndWraps(t *testing.T) {
	dir := t.TempDir()
	writePhoto(t, filepath.Join(dir, "a.png"), 0)
	writePhoto(t, filepath.Join(dir, "b.png"), 255)

	provider := NewPhotosProvider(dir)
	settings := Settings{"photo_dir": dir}

	var shades []uint8
	for i := 0; i < 3; i++ {
		img, err := provider.Render(200, 100, settings, RenderContext{})
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		shades = append(shades, centerShade(t, img))
	}

	if shades[0] >= 128 || shades[1] < 128 || shades[2] >= 128 {
		t.Errorf("shades = %v, want dark/light/dark (cursor a, b, wrap to a)", shades)
	}
}

func TestPhotosEmptyFolderShowsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	provider := NewPhotosProvider(dir)

	img, err := provider.Render(400, 200, Settings{"photo_dir": dir}, RenderContext{})
	if err != nil {
		t.Fatalf("empty folder must not fail: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 200 {
		t.Errorf("placeholder size = %v", img.Bounds())
	}
}

func TestPhotosMissingFolderFails(t *testing.T) {
	provider := NewPhotosProvider("uploads")
	_, err := provider.Render(400, 200, Settings{"photo_dir": "/does/not/exist"}, RenderContext{})
	if err == nil {
		t.Fatal("missing folder not reported")
	}
}

func TestPhotosUnreadableFileFails(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("not an image"), 0660)
	if err != nil {
		t.Fatal(err)
	}

	provider := NewPhotosProvider(dir)
	_, err = provider.Render(400, 200, Settings{"photo_dir": dir}, RenderContext{})
	if err == nil {
		t.Fatal("undecodable photo not reported")
	}
}

func TestIsPhotoFilename(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"holiday.jpg", true},
		{"holiday.JPEG", true},
		{"cat.png", true},
		{"cat.webp", true},
		{"notes.txt", false},
		{"archive.tar.gz", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		if got := IsPhotoFilename(tt.name); got != tt.want {
			t.Errorf("IsPhotoFilename(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
