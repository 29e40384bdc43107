package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime/debug"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/neoblast-cz/inkframe/apimodel"
	"github.com/neoblast-cz/inkframe/internal/srv/config"
	"github.com/neoblast-cz/inkframe/internal/srv/module"
	"github.com/neoblast-cz/inkframe/internal/srv/renderer"
	"github.com/neoblast-cz/inkframe/internal/srv/scheduler"
	"github.com/sirupsen/logrus"
)

const maxUploadBytes = 16 << 20 // photo upload limit

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Api is the JSON control surface consumed by the configuration web UI:
// schedule and settings edits, forced refresh, previews, photo management.
type Api struct {
	router *mux.Router
	server *http.Server

	cfg      *config.Store
	registry *module.Registry
	rend     *renderer.Renderer
	sched    *scheduler.Scheduler
}

func NewApi(cfg *config.Store, registry *module.Registry, rend *renderer.Renderer, sched *scheduler.Scheduler) *Api {
	api := Api{
		cfg:      cfg,
		registry: registry,
		rend:     rend,
		sched:    sched,
	}

	api.router = mux.NewRouter().StrictSlash(false)

	apiRouter := api.router.PathPrefix("/api").Subrouter()
	apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						GlobalErrorAction(w, fmt.Sprintf("%v", rec), http.StatusInternalServerError)
					}
				}()

				// Check API key when one is configured
				apiKey := api.cfg.Api().ApiKey
				if apiKey != "" && r.Header.Get("x-api-key") != apiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")

	apiRouter.HandleFunc("/config", api.configAction).Methods("GET")
	apiRouter.HandleFunc("/settings", api.updateScheduleAction).Methods("PUT")
	apiRouter.HandleFunc("/module/{name}/settings", api.moduleSettingsAction).Methods("GET")
	apiRouter.HandleFunc("/module/{name}/settings", api.updateModuleSettingsAction).Methods("PUT")
	apiRouter.HandleFunc("/refresh", api.refreshAction).Methods("POST")
	apiRouter.HandleFunc("/preview", api.previewAction).Methods("GET")
	apiRouter.HandleFunc("/preview/{name}", api.previewModuleAction).Methods("POST")
	apiRouter.HandleFunc("/photos", api.photoListAction).Methods("GET")
	apiRouter.HandleFunc("/photos", api.uploadPhotoAction).Methods("POST")
	apiRouter.HandleFunc("/photos/{filename}", api.deletePhotoAction).Methods("DELETE")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Content-Type", "x-api-key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(cfg.Api().Port, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 240,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

func (d *Api) Start() {
	logrus.Infof("Start api device")

	go func() {
		err := d.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logrus.Error(err)
		}
	}()
}

func (d *Api) Stop() {
	logrus.Infof("Stop api device")
	d.server.Shutdown(context.Background())
}

func (d *Api) configAction(w http.ResponseWriter, r *http.Request) {
	reply := apimodel.ConfigReply{
		ActiveModule:   d.cfg.ActiveModule(),
		RefreshMinutes: d.cfg.RefreshMinutes(),
		Rotation:       []apimodel.RotationEntry{},
		Modules:        []apimodel.ModuleInfo{},
	}
	for _, entry := range d.cfg.Rotation() {
		reply.Rotation = append(reply.Rotation, apimodel.RotationEntry{
			Module:          entry.Module,
			DurationMinutes: entry.DurationMinutes,
		})
	}
	for _, name := range d.registry.Names() {
		provider, _ := d.registry.Get(name)
		reply.Modules = append(reply.Modules, apimodel.ModuleInfo{
			Name:        provider.Name(),
			DisplayName: provider.DisplayName(),
			Description: provider.Description(),
		})
	}
	jsonAction(w, reply)
}

func (d *Api) updateScheduleAction(w http.ResponseWriter, r *http.Request) {
	var update apimodel.ScheduleUpdate
	err := json.NewDecoder(r.Body).Decode(&update)
	if err != nil {
		ErrorStatusAction(w, r, http.StatusBadRequest)
		return
	}

	rotation := make([]config.RotationEntry, 0, len(update.Rotation))
	for _, entry := range update.Rotation {
		if entry.DurationMinutes <= 0 {
			entry.DurationMinutes = config.DefaultDurationMinutes
		}
		rotation = append(rotation, config.RotationEntry{
			Module:          entry.Module,
			DurationMinutes: entry.DurationMinutes,
		})
	}
	if update.RefreshMinutes <= 0 {
		update.RefreshMinutes = config.DefaultRefreshMinutes
	}

	d.cfg.SetSchedule(update.RefreshMinutes, rotation)
	d.cfg.Save()
	jsonAction(w, apimodel.StatusReply{Status: "ok"})
}

func (d *Api) moduleSettingsAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	provider, ok := d.registry.Get(name)
	if !ok {
		GlobalErrorAction(w, "Module not found", http.StatusNotFound)
		return
	}

	settings := d.cfg.ModuleSettings(name)
	if len(settings) == 0 {
		settings = provider.DefaultSettings()
	}
	jsonAction(w, settings)
}

func (d *Api) updateModuleSettingsAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	_, ok := d.registry.Get(name)
	if !ok {
		GlobalErrorAction(w, "Module not found", http.StatusNotFound)
		return
	}

	var settings map[string]string
	err := json.NewDecoder(r.Body).Decode(&settings)
	if err != nil {
		ErrorStatusAction(w, r, http.StatusBadRequest)
		return
	}

	d.cfg.SetModuleSettings(name, settings)
	d.cfg.Save()
	jsonAction(w, apimodel.StatusReply{Status: "ok"})
}

func (d *Api) refreshAction(w http.ResponseWriter, r *http.Request) {
	d.sched.ForceRefresh()
	jsonAction(w, apimodel.StatusReply{Status: "ok", Message: "Refresh triggered"})
}

func (d *Api) previewAction(w http.ResponseWriter, r *http.Request) {
	previewFilename := d.cfg.CompletePreviewFilename()
	_, err := os.Stat(previewFilename)
	if err != nil {
		GlobalErrorAction(w, "No preview available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, previewFilename)
}

// previewModuleAction renders a module to the preview file without pushing
// it to the e-ink panel.
func (d *Api) previewModuleAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	_, ok := d.registry.Get(name)
	if !ok {
		GlobalErrorAction(w, "Module not found", http.StatusNotFound)
		return
	}

	data, err := d.rend.RenderPreview(name)
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}
	err = os.WriteFile(d.cfg.CompletePreviewFilename(), data, 0660)
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonAction(w, apimodel.StatusReply{Status: "ok"})
}

func (d *Api) photoListAction(w http.ResponseWriter, r *http.Request) {
	uploadsFolder := d.cfg.CompleteUploadsFolder()
	entries, err := os.ReadDir(uploadsFolder)
	if err != nil && !os.IsNotExist(err) {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reply := apimodel.PhotoListReply{Photos: []string{}}
	for _, entry := range entries {
		if !entry.IsDir() && module.IsPhotoFilename(entry.Name()) {
			reply.Photos = append(reply.Photos, entry.Name())
		}
	}
	sort.Strings(reply.Photos)
	jsonAction(w, reply)
}

func (d *Api) uploadPhotoAction(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxUploadBytes)
	if err != nil {
		ErrorStatusAction(w, r, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		GlobalErrorAction(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	safeName := unsafeFilenameChars.ReplaceAllString(header.Filename, "_")
	if safeName == "" {
		GlobalErrorAction(w, "Empty filename", http.StatusBadRequest)
		return
	}

	uploadsFolder := d.cfg.CompleteUploadsFolder()
	err = os.MkdirAll(uploadsFolder, 0770)
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}

	target, err := os.Create(filepath.Join(uploadsFolder, safeName))
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer target.Close()
	_, err = io.Copy(target, file)
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logrus.Infof("Photo uploaded: %s", safeName)
	jsonAction(w, apimodel.UploadReply{Status: "ok", Filename: safeName})
}

func (d *Api) deletePhotoAction(w http.ResponseWriter, r *http.Request) {
	safeName := unsafeFilenameChars.ReplaceAllString(mux.Vars(r)["filename"], "_")
	path := filepath.Join(d.cfg.CompleteUploadsFolder(), safeName)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonAction(w, apimodel.StatusReply{Status: "ok"})
}

func jsonAction(w http.ResponseWriter, reply interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	errorMessage := &apimodel.ErrorMessage{
		ErrStatusCode: status,
		ErrMessage:    title,
	}

	if title == "" {
		switch status {
		case http.StatusOK:
			errorMessage.ErrMessage = "Ok"
		case http.StatusNotFound:
			errorMessage.ErrMessage = "Page not found"
		case http.StatusMethodNotAllowed:
			errorMessage.ErrMessage = "Method not allowed"
		case http.StatusForbidden:
			errorMessage.ErrMessage = "Forbidden"
		case http.StatusServiceUnavailable:
			errorMessage.ErrMessage = "Service unavailable"
		case http.StatusBadRequest:
			errorMessage.ErrMessage = "Bad request"
		default:
			errorMessage.ErrMessage = "Internal error"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorMessage)
}
