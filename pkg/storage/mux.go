package storage

import (
	"context"
	"fmt"
	"io"
)

// Mux routes "s3://bucket/key" paths to an [S3Store] and all other paths
// to a local FileStore.
type Mux struct {
	local FileStore
	s3    *S3Store
}

// NewMux creates a Mux. client may be nil, in which case s3:// paths fail
// with [ErrNoS3].
func NewMux(local FileStore, client S3Client) *Mux {
	m := &Mux{local: local}
	if client != nil {
		m.s3 = NewS3(client)
	}
	return m
}

func (m *Mux) route(path string) (FileStore, error) {
	if !IsS3URI(path) {
		return m.local, nil
	}
	if m.s3 == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoS3, path)
	}
	return m.s3, nil
}

// Read implements FileStore.
func (m *Mux) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	fs, err := m.route(path)
	if err != nil {
		return nil, err
	}
	return fs.Read(ctx, path)
}

// Write implements FileStore.
func (m *Mux) Write(ctx context.Context, path string) (io.WriteCloser, error) {
	fs, err := m.route(path)
	if err != nil {
		return nil, err
	}
	return fs.Write(ctx, path)
}

// Delete implements FileStore.
func (m *Mux) Delete(ctx context.Context, path string) error {
	fs, err := m.route(path)
	if err != nil {
		return err
	}
	return fs.Delete(ctx, path)
}

// Exists implements FileStore.
func (m *Mux) Exists(ctx context.Context, path string) (bool, error) {
	fs, err := m.route(path)
	if err != nil {
		return false, err
	}
	return fs.Exists(ctx, path)
}

var _ FileStore = (*Mux)(nil)
