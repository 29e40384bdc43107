package device

import (
	"image"
	"log"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
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

	simulationWindow *app.Window
}

func (d *Display) startSimulation() {
	d.simulationWindow = app.NewWindow(
		app.Title("inkframe"),
		app.Size(unit.Px(float32(d.width)), unit.Px(float32(d.height))),
		app.MinSize(unit.Px(float32(d.width/2)), unit.Px(float32(d.height/2))))
	go func() {
		if err := d.gioloop(); err != nil {
			log.Fatal(err)
		}
	}()
	go app.Main()
}

func (d *Display) invalidateSimulationWindow() {
	d.simulationWindow.Invalidate()
}

func (d *Display) closeSimulationWindow() {
	d.simulationWindow.Close()
}

func (d *Display) gioloop() error {
	var ops op.Ops
	for {
		e := <-d.simulationWindow.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			d.lock.RLock()
			lastImg := d.lastImg
			d.lock.RUnlock()

			if lastImg != nil {
				img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
				img.Layout(gtx)
			}
			e.Frame(gtx.Ops)
		}
	}
}
