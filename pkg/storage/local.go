package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// fileDisk serves images from a directory. Absolute paths bypass the root
// so the CLI can upload files named on the command line.
type fileDisk struct {
	root string
}

// NewLocalDisk roots a disk at dir, made absolute against the working directory.
func NewLocalDisk(dir string) Disk {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &fileDisk{root: dir}
}

func (d *fileDisk) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.root, filepath.FromSlash(p))
}

func wrap(op, p string, err error) error {
	return fmt.Errorf("storage/local: %s %s: %w", op, p, err)
}

func (d *fileDisk) Put(ctx context.Context, p string, content []byte) error {
	return d.PutStream(ctx, p, bytes.NewReader(content))
}

// PutStream writes through a temp file in the target directory and renames
// it into place, so readers never see a partial image.
func (d *fileDisk) PutStream(_ context.Context, p string, r io.Reader) error {
	full := d.resolve(p)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrap("mkdir", p, err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return wrap("create", p, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return wrap("write", p, err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("close", p, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return wrap("rename", p, err)
	}
	return nil
}

func (d *fileDisk) Get(ctx context.Context, p string) ([]byte, error) {
	rc, err := d.GetStream(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (d *fileDisk) GetStream(_ context.Context, p string) (io.ReadCloser, error) {
	f, err := os.Open(d.resolve(p))
	if err != nil {
		return nil, wrap("open", p, err)
	}
	return f, nil
}

func (d *fileDisk) stat(p string) (fs.FileInfo, error) {
	info, err := os.Stat(d.resolve(p))
	if err != nil {
		return nil, wrap("stat", p, err)
	}
	return info, nil
}

func (d *fileDisk) Exists(_ context.Context, p string) bool {
	info, err := d.stat(p)
	return err == nil && !info.IsDir()
}

func (d *fileDisk) Size(_ context.Context, p string) (int64, error) {
	info, err := d.stat(p)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (d *fileDisk) LastModified(_ context.Context, p string) (time.Time, error) {
	info, err := d.stat(p)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (d *fileDisk) URL(p string) string {
	return "file://" + filepath.ToSlash(d.resolve(strings.TrimLeft(p, "/")))
}

func (d *fileDisk) Delete(_ context.Context, p string) error {
	if err := os.Remove(d.resolve(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return wrap("delete", p, err)
	}
	return nil
}

// Files lists regular files directly under directory, sorted.
func (d *fileDisk) Files(_ context.Context, directory string) ([]string, error) {
	entries, err := os.ReadDir(d.resolve(directory))
	if err != nil {
		return nil, wrap("list", directory, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.ToSlash(filepath.Join(directory, e.Name())))
		}
	}
	sort.Strings(out)
	return out, nil
}
