// Package renderer sits between the scheduler and the content modules: it
// resolves which provider and settings to use, turns any failure into a
// visible error bitmap, and drives the display sink.
package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/neoblast-cz/inkframe/internal/srv/config"
	"github.com/neoblast-cz/inkframe/internal/srv/module"
	"github.com/sirupsen/logrus"
)

// Sink is the display backend. Each call is safe to issue in the fixed
// Init, Show, Sleep sequence regardless of prior failures.
type Sink interface {
	Init() error
	Show(img image.Image) error
	Sleep() error
}

type Renderer struct {
	cfg      *config.Store
	registry *module.Registry
	sink     Sink
}

func New(cfg *config.Store, registry *module.Registry, sink Sink) *Renderer {
	return &Renderer{
		cfg:      cfg,
		registry: registry,
		sink:     sink,
	}
}

// RenderAndShow renders the named module (the active module when the name
// is empty) and pushes the result to the sink. Resolution and provider
// failures are absorbed into an error bitmap; only sink failures are
// returned.
func (r *Renderer) RenderAndShow(moduleName string) error {
	if moduleName == "" {
		moduleName = r.cfg.ActiveModule()
	}

	img, err := r.Render(moduleName)
	if err != nil {
		logrus.Errorf("Error in module %s: %v", moduleName, err)
		img = ErrorImage(r.cfg.DisplayWidth(), r.cfg.DisplayHeight(), err.Error())
	}

	err = r.show(img)
	if err != nil {
		return err
	}
	logrus.Infof("Display updated successfully")
	return nil
}

// Render resolves the provider and its settings and produces the module's
// bitmap without touching the sink. It is the single settings-resolution
// path, shared by the scheduled renders and the previews.
func (r *Renderer) Render(moduleName string) (image.Image, error) {
	provider, ok := r.registry.Get(moduleName)
	if !ok {
		return nil, fmt.Errorf("unknown module: %s", moduleName)
	}

	settings := module.Settings(r.cfg.ModuleSettings(moduleName))
	if len(settings) == 0 {
		settings = provider.DefaultSettings().Clone()
	}

	rctx := module.RenderContext{Timezone: r.cfg.Timezone()}
	if moduleName == "tasks" {
		rctx.HabitsSettings = r.cfg.ModuleSettings("habits")
	}

	logrus.Infof("Rendering module: %s", moduleName)
	return provider.Render(r.cfg.DisplayWidth(), r.cfg.DisplayHeight(), settings, rctx)
}

// RenderPreview renders the named module to PNG bytes, bypassing the sink.
func (r *Renderer) RenderPreview(moduleName string) ([]byte, error) {
	img, err := r.Render(moduleName)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = png.Encode(&buf, img)
	if err != nil {
		return nil, fmt.Errorf("unable to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// show drives the sink through Init, Show, Sleep. Sleep runs even when
// Show fails, so the panel is never left awake.
func (r *Renderer) show(img image.Image) (err error) {
	err = r.sink.Init()
	if err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	defer func() {
		sleepErr := r.sink.Sleep()
		if sleepErr != nil && err == nil {
			err = fmt.Errorf("display sleep: %w", sleepErr)
		}
	}()

	showErr := r.sink.Show(img)
	if showErr != nil {
		err = fmt.Errorf("display show: %w", showErr)
	}
	return err
}
