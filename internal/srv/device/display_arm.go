package device

import (
	"image"
	"sync"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/inky"
)

type Display struct {
	width           int
	height          int
	previewFilename string
	simulationMode  bool

	lock    sync.RWMutex
	lastImg image.Image

	spiPort spi.PortCloser
	panel   *inky.Dev
}

func (d *Display) startSimulation() {
}

func (d *Display) invalidateSimulationWindow() {
}

func (d *Display) closeSimulationWindow() {
}
