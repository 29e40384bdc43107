package module

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/neoblast-cz/inkframe/internal/srv/canvas"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
}

// IsPhotoFilename reports whether the file name carries a displayable photo
// extension.
func IsPhotoFilename(name string) bool {
	return photoExtensions[strings.ToLower(filepath.Ext(name))]
}

// PhotosProvider shows one photo from the photo folder per render,
// advancing an internal cursor each time.
type PhotosProvider struct {
	defaultPhotoDir string

	lock         sync.Mutex
	currentIndex int
}

func NewPhotosProvider(defaultPhotoDir string) *PhotosProvider {
	return &PhotosProvider{defaultPhotoDir: defaultPhotoDir}
}

func (p *PhotosProvider) Name() string {
	return "photos"
}

func (p *PhotosProvider) DisplayName() string {
	return "Photo Album"
}

func (p *PhotosProvider) Description() string {
	return "Rotates through your photos, one per refresh"
}

func (p *PhotosProvider) DefaultSettings() Settings {
	return Settings{"photo_dir": p.defaultPhotoDir}
}

func (p *PhotosProvider) Render(width, height int, settings Settings, rctx RenderContext) (image.Image, error) {
	photoDir := settings["photo_dir"]
	if photoDir == "" {
		photoDir = p.defaultPhotoDir
	}

	entries, err := os.ReadDir(photoDir)
	if err != nil {
		return nil, fmt.Errorf("photo folder not found: %s", photoDir)
	}

	var photos []string
	for _, entry := range entries {
		if !entry.IsDir() && IsPhotoFilename(entry.Name()) {
			photos = append(photos, entry.Name())
		}
	}
	sort.Strings(photos)

	if len(photos) == 0 {
		return p.noPhotosImage(width, height), nil
	}

	p.lock.Lock()
	p.currentIndex = p.currentIndex % len(photos)
	photoName := photos[p.currentIndex]
	p.currentIndex++
	p.lock.Unlock()

	logrus.Infof("Displaying photo: %s", photoName)
	return p.renderPhoto(width, height, filepath.Join(photoDir, photoName))
}

// renderPhoto loads the photo, fits it to the display keeping its aspect
// ratio and centers it on a white canvas.
func (p *PhotosProvider) renderPhoto(width, height int, path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	photo, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	photoWidth := photo.Bounds().Dx()
	photoHeight := photo.Bounds().Dy()
	fittedWidth := width
	fittedHeight := photoHeight * width / photoWidth
	if fittedHeight > height {
		fittedHeight = height
		fittedWidth = photoWidth * height / photoHeight
	}

	img := canvas.New(width, height)
	target := image.Rect(0, 0, fittedWidth, fittedHeight).
		Add(image.Pt((width-fittedWidth)/2, (height-fittedHeight)/2))
	xdraw.ApproxBiLinear.Scale(img, target, photo, photo.Bounds(), xdraw.Src, nil)
	return img, nil
}

func (p *PhotosProvider) noPhotosImage(width, height int) image.Image {
	img := canvas.New(width, height)
	canvas.AddCenteredLabelFace(img, height/2, "No photos found. Upload some via the web UI!", canvas.MessageFace())
	return img
}
