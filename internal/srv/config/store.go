package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const configFilename = "config.yaml"
const previewFilename = "preview.png"
const uploadsFolder = "uploads"

// Store holds the live configuration, shared between the render worker
// (reader) and the web API (writer). Accessors return value snapshots so a
// caller never observes a torn read.
type Store struct {
	ConfigDir string

	lock sync.RWMutex
	doc  Document

	watcher *watcher
}

func NewStore(configDir string) *Store {
	store := &Store{
		ConfigDir: configDir,
	}

	// Check configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = os.MkdirAll(configDir, 0770)
			if err != nil {
				logrus.Fatalf("Unable to create config folder: %v\n", err)
			}
		} else {
			logrus.Fatalf("Unable to access config folder: %s", configDir)
		}
	}

	rawConfig, err := os.ReadFile(store.CompleteConfigFilename())
	if err == nil {
		err = yaml.Unmarshal(rawConfig, &store.doc)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}
	} else {
		// Create default config file
		logrus.Infof("Create default config file")
		err = yaml.Unmarshal(DefaultFile, &store.doc)
		if err != nil {
			logrus.Fatalf("Unable to interpret default config file: %v\n", err)
		}
		store.Save()
	}

	return store
}

func (s *Store) CompleteConfigFilename() string {
	return filepath.Join(s.ConfigDir, configFilename)
}

func (s *Store) CompletePreviewFilename() string {
	return filepath.Join(s.ConfigDir, previewFilename)
}

func (s *Store) CompleteUploadsFolder() string {
	return filepath.Join(s.ConfigDir, uploadsFolder)
}

// Reload replaces the in-memory document with the on-disk one. A file that
// fails to parse leaves the current document untouched.
func (s *Store) Reload() error {
	rawConfig, err := os.ReadFile(s.CompleteConfigFilename())
	if err != nil {
		return err
	}
	var doc Document
	err = yaml.Unmarshal(rawConfig, &doc)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.doc = doc
	return nil
}

func (s *Store) Save() {
	s.lock.RLock()
	rawConfig, err := yaml.Marshal(&s.doc)
	s.lock.RUnlock()
	if err != nil {
		logrus.Fatalf("Unable to serialize config file: %v\n", err)
	}
	logrus.Debugf("Save config file: %s", s.CompleteConfigFilename())
	err = os.WriteFile(s.CompleteConfigFilename(), rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save config file: %v\n", err)
	}
}

// region Read accessors

func (s *Store) ActiveModule() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.doc.ActiveModule == "" {
		return DefaultActiveModule
	}
	return s.doc.ActiveModule
}

func (s *Store) RefreshMinutes() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.doc.Display.RefreshMinutes <= 0 {
		return DefaultRefreshMinutes
	}
	return s.doc.Display.RefreshMinutes
}

// Rotation returns a copy of the rotation list with durations coerced to a
// positive value, so the scheduler can hold one snapshot per pass.
func (s *Store) Rotation() []RotationEntry {
	s.lock.RLock()
	defer s.lock.RUnlock()
	rotation := make([]RotationEntry, len(s.doc.Rotation))
	copy(rotation, s.doc.Rotation)
	for i := range rotation {
		if rotation[i].DurationMinutes <= 0 {
			rotation[i].DurationMinutes = DefaultDurationMinutes
		}
	}
	return rotation
}

func (s *Store) ModuleSettings(name string) map[string]string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	settings := make(map[string]string, len(s.doc.Modules[name]))
	for key, value := range s.doc.Modules[name] {
		settings[key] = value
	}
	return settings
}

func (s *Store) Timezone() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.doc.Display.Timezone == "" {
		return DefaultTimezone
	}
	return s.doc.Display.Timezone
}

func (s *Store) DisplayWidth() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.doc.Display.Width <= 0 {
		return DefaultWidth
	}
	return s.doc.Display.Width
}

func (s *Store) DisplayHeight() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.doc.Display.Height <= 0 {
		return DefaultHeight
	}
	return s.doc.Display.Height
}

func (s *Store) Api() ApiParam {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.doc.Api
}

// endregion

// region Write accessors

func (s *Store) SetModuleSettings(name string, settings map[string]string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.doc.Modules == nil {
		s.doc.Modules = map[string]map[string]string{}
	}
	copied := make(map[string]string, len(settings))
	for key, value := range settings {
		copied[key] = value
	}
	s.doc.Modules[name] = copied
}

// SetSchedule updates the refresh interval and the rotation list together.
// When the rotation is non-empty, its first entry becomes the fallback
// active module.
func (s *Store) SetSchedule(refreshMinutes int, rotation []RotationEntry) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.doc.Display.RefreshMinutes = refreshMinutes
	s.doc.Rotation = make([]RotationEntry, len(rotation))
	copy(s.doc.Rotation, rotation)
	if len(rotation) > 0 {
		s.doc.ActiveModule = rotation[0].Module
	}
}

func (s *Store) SetActiveModule(name string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.doc.ActiveModule = name
}

// endregion
