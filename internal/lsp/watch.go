package lsp

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// watchSchemaFile reloads the snapshot when a file-backed catalog changes
// on disk. Editors that write via rename (vim, most IDEs) drop the watch on
// the old inode, so the path is re-added after such events.
func (s *Server) watchSchemaFile(path string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("schema watcher", "error", err)
		return
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		s.logger.Error("schema watcher", "path", path, "error", err)
		return
	}
	s.logger.Info("watching schema file", "path", path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				_ = watcher.Remove(path)
				if err := watcher.Add(path); err != nil {
					s.logger.Warn("schema file gone; watch dropped", "path", path, "error", err)
					return
				}
			}
			if err := s.refreshSchema(context.Background()); err != nil {
				s.logger.Error("schema reload", "error", err)
				continue
			}
			s.sendNotification("window/showMessage", &ShowMessageParams{
				Type:    MessageTypeInfo,
				Message: "Schema reloaded",
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("schema watcher", "error", err)
		}
	}
}
