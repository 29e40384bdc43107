package device

import (
	"bytes"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/neoblast-cz/inkframe/apimodel"
	"github.com/neoblast-cz/inkframe/internal/srv/config"
	"github.com/neoblast-cz/inkframe/internal/srv/module"
	"github.com/neoblast-cz/inkframe/internal/srv/renderer"
	"github.com/neoblast-cz/inkframe/internal/srv/scheduler"
)

type nullSink struct{}

func (s *nullSink) Init() error                { return nil }
func (s *nullSink) Show(img image.Image) error { return nil }
func (s *nullSink) Sleep() error               { return nil }

func newTestApi(t *testing.T) (*Api, *config.Store, *httptest.Server) {
	t.Helper()
	cfg := config.NewStore(t.TempDir())

	registry := module.NewRegistry()
	registry.Register(module.NewClockProvider())
	registry.Register(module.NewPhotosProvider(cfg.CompleteUploadsFolder()))

	rend := renderer.New(cfg, registry, &nullSink{})
	sched := scheduler.New(rend.RenderAndShow, cfg)
	api := NewApi(cfg, registry, rend, sched)

	server := httptest.NewServer(api.router)
	t.Cleanup(server.Close)
	return api, cfg, server
}

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("unable to decode reply: %v", err)
	}
}

func TestIsAlive(t *testing.T) {
	_, _, server := newTestApi(t)

	resp, err := http.Get(server.URL + "/api/is_alive")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestConfigReply(t *testing.T) {
	_, _, server := newTestApi(t)

	resp, err := http.Get(server.URL + "/api/config")
	if err != nil {
		t.Fatal(err)
	}
	var reply apimodel.ConfigReply
	decodeJSON(t, resp, &reply)

	if reply.ActiveModule != "clock" {
		t.Errorf("ActiveModule = %q", reply.ActiveModule)
	}
	if len(reply.Modules) != 2 || reply.Modules[0].Name != "clock" {
		t.Errorf("Modules = %v", reply.Modules)
	}
}

func TestUpdateSchedule(t *testing.T) {
	_, cfg, server := newTestApi(t)

	update := apimodel.ScheduleUpdate{
		RefreshMinutes: 15,
		Rotation: []apimodel.RotationEntry{
			{Module: "photos", DurationMinutes: 2},
			{Module: "clock", DurationMinutes: 0},
		},
	}
	body, _ := json.Marshal(update)
	req, _ := http.NewRequest("PUT", server.URL+"/api/settings", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if got := cfg.RefreshMinutes(); got != 15 {
		t.Errorf("RefreshMinutes = %d", got)
	}
	rotation := cfg.Rotation()
	if len(rotation) != 2 || rotation[0].Module != "photos" {
		t.Errorf("Rotation = %v", rotation)
	}
	if rotation[1].DurationMinutes != config.DefaultDurationMinutes {
		t.Errorf("zero duration not coerced: %v", rotation[1])
	}
	if got := cfg.ActiveModule(); got != "photos" {
		t.Errorf("ActiveModule fallback = %q", got)
	}
}

func TestModuleSettingsRoundTrip(t *testing.T) {
	_, cfg, server := newTestApi(t)

	// Defaults come back when nothing is stored
	resp, err := http.Get(server.URL + "/api/module/clock/settings")
	if err != nil {
		t.Fatal(err)
	}
	var settings map[string]string
	decodeJSON(t, resp, &settings)
	if settings["time_format"] == "" {
		t.Errorf("default settings missing: %v", settings)
	}

	body, _ := json.Marshal(map[string]string{"time_format": "3:04 PM"})
	req, _ := http.NewRequest("PUT", server.URL+"/api/module/clock/settings", bytes.NewReader(body))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := cfg.ModuleSettings("clock")["time_format"]; got != "3:04 PM" {
		t.Errorf("stored settings = %q", got)
	}
}

func TestUnknownModuleSettingsIs404(t *testing.T) {
	_, _, server := newTestApi(t)

	resp, err := http.Get(server.URL + "/api/module/fitness/settings")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRefreshTriggersScheduler(t *testing.T) {
	_, _, server := newTestApi(t)

	resp, err := http.Post(server.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var reply apimodel.StatusReply
	decodeJSON(t, resp, &reply)
	if reply.Status != "ok" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestPreviewModuleWritesPreviewFile(t *testing.T) {
	_, cfg, server := newTestApi(t)

	resp, err := http.Post(server.URL+"/api/preview/clock", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if _, err := os.Stat(cfg.CompletePreviewFilename()); err != nil {
		t.Errorf("preview file not written: %v", err)
	}

	// And the preview endpoint serves it back
	resp, err = http.Get(server.URL + "/api/preview")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("preview status = %d", resp.StatusCode)
	}
}

func TestPhotoUploadListDelete(t *testing.T) {
	_, cfg, server := newTestApi(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "my holiday photo!.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake photo bytes"))
	writer.Close()

	resp, err := http.Post(server.URL+"/api/photos", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	var uploadReply apimodel.UploadReply
	decodeJSON(t, resp, &uploadReply)
	if uploadReply.Filename != "my_holiday_photo_.png" {
		t.Errorf("sanitized filename = %q", uploadReply.Filename)
	}
	if _, err := os.Stat(filepath.Join(cfg.CompleteUploadsFolder(), uploadReply.Filename)); err != nil {
		t.Errorf("uploaded file missing: %v", err)
	}

	resp, err = http.Get(server.URL + "/api/photos")
	if err != nil {
		t.Fatal(err)
	}
	var listReply apimodel.PhotoListReply
	decodeJSON(t, resp, &listReply)
	if len(listReply.Photos) != 1 || listReply.Photos[0] != uploadReply.Filename {
		t.Errorf("photo list = %v", listReply.Photos)
	}

	req, _ := http.NewRequest("DELETE", server.URL+"/api/photos/"+uploadReply.Filename, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if _, err := os.Stat(filepath.Join(cfg.CompleteUploadsFolder(), uploadReply.Filename)); !os.IsNotExist(err) {
		t.Error("photo not deleted")
	}
}
