package web

import (
	"log"

	"github.com/go-while/go-ttsweb/internal/reload"
)

// startReloadWatcher watches the template and static directories and pushes
// a reload to connected pages on every change.
func (s *WebServer) startReloadWatcher() error {
	w, err := reload.NewWatcher()
	if err != nil {
		return err
	}
	dirs := []string{s.Config.TemplateDir}
	if s.Config.StaticDir != "" {
		dirs = append(dirs, s.Config.StaticDir)
	}
	err = w.Watch(dirs, func(path string) {
		n := s.Reload.Broadcast(path)
		log.Printf("[RELOAD]: %s changed, notified %d page(s)", path, n)
	})
	if err != nil {
		w.Stop()
		return err
	}

	s.mux.Lock()
	if s.closed {
		// Shutdown ran while the watcher was starting
		s.mux.Unlock()
		w.Stop()
		return nil
	}
	s.watcher = w
	s.mux.Unlock()
	log.Printf("[RELOAD]: watching %v", dirs)
	return nil
}
