package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

type watcher struct {
	fsWatcher *fsnotify.Watcher

	timerLock   sync.Mutex
	reloadTimer *time.Timer
}

// StartWatch reloads the document whenever config.yaml changes on disk, so
// edits made outside the web API are honored at the scheduler's next
// decision point. Events are debounced to avoid reading partial writes.
func (s *Store) StartWatch() {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		logrus.Warnf("Config watcher unavailable: %v", err)
		return
	}
	err = fsWatcher.Add(s.ConfigDir)
	if err != nil {
		logrus.Warnf("Unable to watch config folder: %v", err)
		fsWatcher.Close()
		return
	}
	s.watcher = &watcher{fsWatcher: fsWatcher}

	logrus.Infof("Start config watcher")
	go func() {
		for {
			select {
			case ev, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != configFilename {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				s.watcher.scheduleReload(s)
			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				if err != nil {
					logrus.Warnf("Config watcher error: %v", err)
				}
			}
		}
	}()
}

func (s *Store) StopWatch() {
	if s.watcher == nil {
		return
	}
	logrus.Infof("Stop config watcher")
	s.watcher.fsWatcher.Close()
}

func (w *watcher) scheduleReload(s *Store) {
	w.timerLock.Lock()
	defer w.timerLock.Unlock()
	if w.reloadTimer != nil {
		w.reloadTimer.Stop()
	}
	w.reloadTimer = time.AfterFunc(250*time.Millisecond, func() {
		err := s.Reload()
		if err != nil {
			logrus.Warnf("Config reload failed: %v", err)
			return
		}
		logrus.Infof("Config reloaded: %s", s.CompleteConfigFilename())
	})
}
