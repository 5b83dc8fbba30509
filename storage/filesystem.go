package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileSystem stores objects below a root folder
type LocalFileSystem struct {
	Folder string
}

// NewFileSystem creates a new local file system storage
func NewFileSystem(folder string) (*LocalFileSystem, error) {
	if folder == "" {
		folder = "./uploads"
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for folder %s: %w", folder, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder %s: %w", abs, err)
	}

	return &LocalFileSystem{Folder: abs}, nil
}

// GetFullPath resolves p below the root folder, rejecting traversal
func (fs *LocalFileSystem) GetFullPath(p string) (string, error) {
	p = NormalizePath(p)
	if p == "" {
		return "", errors.New("path cannot be empty")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid path: %s", p)
		}
	}
	return filepath.Join(fs.Folder, filepath.FromSlash(p)), nil
}

// GetStream opens the object for reading
func (fs *LocalFileSystem) GetStream(p string) (io.ReadCloser, error) {
	fullPath, err := fs.GetFullPath(p)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat file %s: %w", p, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	return os.Open(fullPath)
}

// Put stores the reader into the given path
func (fs *LocalFileSystem) Put(p string, r io.Reader) (*Object, error) {
	if r == nil {
		return nil, errors.New("reader cannot be nil")
	}
	fullPath, err := fs.GetFullPath(p)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, r)
	if err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to copy data to file: %w", err)
	}

	info, err := dst.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	modTime := info.ModTime()
	return &Object{
		Path:         NormalizePath(p),
		Name:         filepath.Base(fullPath),
		LastModified: &modTime,
		Size:         size,
	}, nil
}

// Delete deletes a file, missing files are not an error
func (fs *LocalFileSystem) Delete(p string) error {
	fullPath, err := fs.GetFullPath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", p, err)
	}
	return nil
}

// GetURL returns the relative object path, served by the uploads route
func (fs *LocalFileSystem) GetURL(p string) (string, error) {
	p = NormalizePath(p)
	if p == "" {
		return "", errors.New("path cannot be empty")
	}
	return p, nil
}
