// Package filex wraps local files as upload sources and prepares local
// directories for downloads.
package filex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrNotRegular = errors.New("not a regular file")

// EnsureDir creates dir (relative paths are resolved against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// LocalFile is a regular file on disk. Size is captured when the file is
// opened with Stat so validation never touches the content.
type LocalFile struct {
	path string
	name string
	size int64
}

func Stat(path string) (*LocalFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	return &LocalFile{path: path, name: fi.Name(), size: fi.Size()}, nil
}

func (f *LocalFile) Name() string { return f.name }
func (f *LocalFile) Size() int64  { return f.size }
func (f *LocalFile) Path() string { return f.path }

func (f *LocalFile) Open() (io.ReadSeekCloser, error) {
	return os.Open(f.path)
}

// Expand turns a list of paths into upload sources. Directories are walked
// recursively; their regular files are returned in lexical order.
func Expand(paths []string) ([]*LocalFile, error) {
	var out []*LocalFile

	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !fi.IsDir() {
			lf, err := Stat(p)
			if err != nil {
				return nil, err
			}
			out = append(out, lf)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			lf, err := Stat(path)
			if err != nil {
				return err
			}
			out = append(out, lf)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	return out, nil
}

// MemFile is an in-memory upload source.
type MemFile struct {
	name string
	data []byte
}

func NewMemFile(name string, data []byte) *MemFile {
	return &MemFile{name: name, data: data}
}

func (f *MemFile) Name() string { return f.name }
func (f *MemFile) Size() int64  { return int64(len(f.data)) }

func (f *MemFile) Open() (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader(f.data)}, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
