package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
)

var frameExts = []string{".jpg", ".jpeg", ".png", ".webp"}

var (
	openDirsMu sync.Mutex
	openDirs   = map[string]struct{}{}
)

// DirOpener serves frames from image files in a directory, in name order,
// looping at the end. It stands in for a hardware camera.
type DirOpener struct {
	Dir string
}

func (o DirOpener) Open(ctx context.Context) (Device, error) {
	dir, err := filepath.Abs(o.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, dir)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, dir)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnavailable, dir)
	}
	if info.Mode().Perm()&0o002 != 0 {
		return nil, fmt.Errorf("%w: %s is world-writable", ErrInsecureContext, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, dir)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(frameExts, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", ErrUnavailable, dir)
	}

	openDirsMu.Lock()
	defer openDirsMu.Unlock()
	if _, busy := openDirs[dir]; busy {
		return nil, ErrBusy
	}
	openDirs[dir] = struct{}{}

	return &dirDevice{dir: dir, files: files}, nil
}

type dirDevice struct {
	dir   string
	files []string

	mu     sync.Mutex
	next   int
	closed bool
}

func (d *dirDevice) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrReleased
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (d *dirDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	openDirsMu.Lock()
	delete(openDirs, d.dir)
	openDirsMu.Unlock()
	return nil
}
