package device

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/neoblast-cz/inkframe/internal/srv/config"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"
)

func NewDisplay(cfg *config.Store, simulationMode bool) *Display {
	return &Display{
		width:           cfg.DisplayWidth(),
		height:          cfg.DisplayHeight(),
		previewFilename: cfg.CompletePreviewFilename(),
		simulationMode:  simulationMode,
	}
}

func (d *Display) Start() {
	logrus.Infof("Start display device")

	if d.simulationMode {
		d.startSimulation()
		return
	}

	if _, err := host.Init(); err != nil {
		logrus.Fatalf("Unable to initialize periph host: %v\n", err)
	}

	// Open a handle to the first available SPI bus:
	spiPort, err := spireg.Open("")
	if err != nil {
		logrus.Fatalf("Unable to open spi bus: %v\n", err)
	}

	dc := gpioreg.ByName("GPIO22")
	reset := gpioreg.ByName("GPIO27")
	busy := gpioreg.ByName("GPIO17")
	if dc == nil || reset == nil || busy == nil {
		logrus.Fatalf("Unable to resolve e-ink control pins\n")
	}

	panel, err := inky.New(spiPort, dc, reset, busy, &inky.Opts{
		Model:       inky.WHAT,
		ModelColor:  inky.Black,
		BorderColor: inky.White,
	})
	if err != nil {
		logrus.Fatalf("Unable to initialize e-ink panel: %v\n", err)
	}

	d.spiPort = spiPort
	d.panel = panel
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")

	if d.simulationMode {
		d.closeSimulationWindow()
		return
	}

	if d.spiPort != nil {
		d.spiPort.Close()
	}
}

// Init prepares the panel for an update. The inky controller wakes on
// demand, so this only verifies the device is usable.
func (d *Display) Init() error {
	if !d.simulationMode && d.panel == nil {
		return fmt.Errorf("display device not started")
	}
	return nil
}

// Show pushes the image to the panel (or the simulation window) and always
// saves a preview PNG for the web UI.
func (d *Display) Show(img image.Image) error {
	d.lock.Lock()
	d.lastImg = img
	d.lock.Unlock()

	err := d.writePreview(img)
	if err != nil {
		logrus.Warnf("Unable to save preview: %v", err)
	}

	if d.simulationMode {
		d.invalidateSimulationWindow()
		logrus.Infof("Simulation mode: image saved to %s", d.previewFilename)
		return nil
	}

	frame := img
	if !img.Bounds().Eq(d.panel.Bounds()) {
		resized := image.NewGray(d.panel.Bounds())
		xdraw.ApproxBiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		frame = resized
	}
	err = d.panel.Draw(d.panel.Bounds(), frame, image.Point{})
	if err != nil {
		return fmt.Errorf("e-ink draw: %w", err)
	}
	logrus.Infof("E-ink panel updated")
	return nil
}

// Sleep powers the panel down between updates. The inky driver already
// does this after each Draw, so there is nothing left to do.
func (d *Display) Sleep() error {
	logrus.Debugf("Display sleep")
	return nil
}

func (d *Display) LastImage() image.Image {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.lastImg
}

func (d *Display) writePreview(img image.Image) error {
	err := os.MkdirAll(filepath.Dir(d.previewFilename), 0770)
	if err != nil {
		return err
	}
	file, err := os.Create(d.previewFilename)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
