package settings

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the store's file for external edits (e.g. a user hand-
// editing wireless_ips) and reloads in place, publishing the refreshed
// wireless IP list on the returned channel. It feeds
// registry.WatchWireless's knownIPs input (SPEC_FULL C.5). The watcher
// stops when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan []string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan []string, 1)
	go func() {
		defer w.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.reload(); err != nil {
					log.Debugf("reload %s: %v", s.path, err)
					continue
				}
				select {
				case out <- s.WirelessIPs():
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Debugf("watch %s: %v", s.path, err)
			}
		}
	}()
	return out, nil
}
