// Package storage abstracts where voicematch reads audio, manifests and
// normalization statistics from, and where it writes derived artifacts.
//
// Three backends are provided:
//
//   - [Local]: a directory on disk; absolute paths bypass the root.
//   - [S3Store]: objects on S3 or any S3-compatible store, addressed as
//     "s3://bucket/key".
//   - [Mux]: routes "s3://bucket/key" paths to S3 and everything else
//     to a local store, so CLI arguments can mix both.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNoS3 is returned by [Mux] for s3:// paths when no S3 client is configured.
var ErrNoS3 = errors.New("storage: s3 path given but no s3 client configured")

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated. Implementations must be safe for
// concurrent use.
type FileStore interface {
	// Read opens the named file for reading. The caller must close the
	// returned ReadCloser. A missing file yields an error wrapping
	// os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating it if it exists.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadFile reads the whole named file from fs.
func ReadFile(ctx context.Context, fs FileStore, path string) ([]byte, error) {
	r, err := fs.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
