package srv

import (
	"github.com/neoblast-cz/inkframe/internal/srv/config"
	"github.com/neoblast-cz/inkframe/internal/srv/device"
	"github.com/neoblast-cz/inkframe/internal/srv/module"
	"github.com/neoblast-cz/inkframe/internal/srv/renderer"
	"github.com/neoblast-cz/inkframe/internal/srv/scheduler"
	"github.com/neoblast-cz/inkframe/internal/version"
	"github.com/sirupsen/logrus"
)

type ServerApp struct {
	*config.Store

	registry      *module.Registry
	displayDevice *device.Display
	rend          *renderer.Renderer
	sched         *scheduler.Scheduler
	apiDevice     *device.Api
}

func NewServerApp(configDir string, debugMode bool, simulationMode bool) *ServerApp {

	logrus.Debugf("Creation of inkframe server %s ...", version.AppVersion.String())

	app := &ServerApp{
		Store: config.NewStore(configDir),
	}

	// Module registry: add new modules here (one line per module)
	app.registry = module.NewRegistry()
	app.registry.Register(module.NewClockProvider())
	app.registry.Register(module.NewPhotosProvider(app.CompleteUploadsFolder()))
	app.registry.Register(module.NewTasksProvider())

	app.displayDevice = device.NewDisplay(app.Store, simulationMode)
	app.rend = renderer.New(app.Store, app.registry, app.displayDevice)
	app.sched = scheduler.New(app.rend.RenderAndShow, app.Store)
	app.apiDevice = device.NewApi(app.Store, app.registry, app.rend, app.sched)

	logrus.Debugln("Server created")

	return app
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting inkframe server ...")

	// Start display device
	s.displayDevice.Start()

	// Pick up config edits made outside the api
	s.Store.StartWatch()

	// Start the render scheduler (renders the active module immediately)
	s.sched.Start()

	// Start api device
	if s.Store.Api().Enabled {
		s.apiDevice.Start()
	}
}

func (s *ServerApp) Stop() {
	logrus.Printf("Stopping inkframe server ...")

	// Stop api
	if s.Store.Api().Enabled {
		s.apiDevice.Stop()
	}

	// Stop scheduler and wait for the render worker to exit
	logrus.Infof("Stop render worker")
	s.sched.Stop()
	<-s.sched.Done()

	// Stop config watcher
	s.Store.StopWatch()

	// Stop display device
	s.displayDevice.Stop()

	logrus.Printf("Server stopped")
}
