package main

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/jobendik/laser-sub002/internal/config"
)

// TuningWatcher reloads a tuning file whenever it changes on disk. Updates
// holds the latest successfully parsed tuning; parse failures go to Errors.
type TuningWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	Updates chan config.Tuning
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewTuningWatcher watches the directory holding path so editors that
// replace the file on save are still seen.
func NewTuningWatcher(path string) (*TuningWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "tuning path")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "fsnotify")
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	tw := &TuningWatcher{
		watcher: w,
		path:    abs,
		Updates: make(chan config.Tuning, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go tw.run()
	return tw, nil
}

// Close stops the watcher.
func (tw *TuningWatcher) Close() error {
	var err error
	tw.once.Do(func() {
		close(tw.closeCh)
		err = tw.watcher.Close()
		<-tw.done
	})
	return err
}

func (tw *TuningWatcher) run() {
	defer close(tw.done)
	for {
		select {
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			t, err := config.Load(tw.path)
			if err != nil {
				replace(tw.Errors, err)
				continue
			}
			replace(tw.Updates, t)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			replace(tw.Errors, err)
		case <-tw.closeCh:
			return
		}
	}
}

// replace drops a stale pending value so the newest one always fits.
func replace[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
