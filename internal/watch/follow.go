// Package watch follows a growing text file and hands every new line to a
// callback, the way tail -f does.
package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ErrNotRegular is returned when the followed path is not a regular file.
var ErrNotRegular = errors.New("not a regular file")

// Follower reads lines appended to a file.
type Follower struct {
	path    string
	offset  int64
	partial []byte
	ready   chan struct{}
}

// NewFollower creates a follower that starts reading at offset. Use the
// size of the content already consumed so nothing is emitted twice.
func NewFollower(path string, offset int64) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	return &Follower{
		path:   abs,
		offset: offset,
		ready:  make(chan struct{}),
	}, nil
}

// Ready is closed once the watcher is in place.
func (f *Follower) Ready() <-chan struct{} {
	return f.ready
}

// Run watches the file until ctx ends or emit fails. Each complete line is
// passed to emit without its newline; a trailing partial line waits for the
// rest of it. If the file shrinks it is read again from the start.
func (f *Follower) Run(ctx context.Context, emit func(string) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Debug("fsnotify watching dir", "dir", dir, "file", f.path)
	close(f.ready)

	// Catch up on anything written before the watch started.
	if err := f.drain(emit); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			if err := f.drain(emit); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

// drain reads from the offset to the end of the file and emits whole lines.
func (f *Follower) drain(emit func(string) error) error {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		// Removed mid-replace; the Create event brings it back.
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < f.offset {
		log.Debug("File truncated, reading from start", "file", f.path)
		f.offset = 0
		f.partial = nil
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	f.offset += int64(len(data))

	f.partial = append(f.partial, data...)
	for {
		i := bytes.IndexByte(f.partial, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimRight(f.partial[:i], "\r"))
		f.partial = f.partial[i+1:]
		if err := emit(line); err != nil {
			return err
		}
	}
	return nil
}
