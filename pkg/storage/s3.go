package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const s3Scheme = "s3://"

// ErrMalformedS3URI is returned for "s3://" paths without a bucket or key.
var ErrMalformedS3URI = errors.New("storage: malformed s3 uri")

// S3Object names one object as bucket and key.
type S3Object struct {
	Bucket string
	Key    string
}

// ParseS3URI parses "s3://bucket/key". Paths without the scheme, a bucket
// or a key fail with ErrMalformedS3URI.
func ParseS3URI(uri string) (S3Object, error) {
	rest, ok := strings.CutPrefix(uri, s3Scheme)
	if !ok {
		return S3Object{}, fmt.Errorf("%w: %q", ErrMalformedS3URI, uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" || key == "" {
		return S3Object{}, fmt.Errorf("%w: %q", ErrMalformedS3URI, uri)
	}
	return S3Object{Bucket: bucket, Key: key}, nil
}

// IsS3URI reports whether p uses the s3:// scheme.
func IsS3URI(p string) bool {
	return strings.HasPrefix(p, s3Scheme)
}

func (o S3Object) String() string {
	return s3Scheme + o.Bucket + "/" + o.Key
}

// S3Client is the subset of the S3 API used by [S3Store].
// *s3.Client satisfies it.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store implements FileStore over S3. Every path is a full
// "s3://bucket/key" URI, so one store serves clips spread over several
// buckets.
type S3Store struct {
	client S3Client
}

// NewS3 creates an S3-backed FileStore.
func NewS3(client S3Client) *S3Store {
	return &S3Store{client: client}
}

// Read fetches the object with GetObject. A missing bucket or key wraps
// os.ErrNotExist, like a missing local file.
func (s *S3Store) Read(ctx context.Context, uri string) (io.ReadCloser, error) {
	obj, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return nil, s3Error("read", obj, err)
	}
	return out.Body, nil
}

// Write streams to a background PutObject through an io.Pipe. Close blocks
// until the upload finishes and returns its error. The content type
// follows the key's extension.
func (s *S3Store) Write(ctx context.Context, uri string) (io.WriteCloser, error) {
	obj, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	w := &s3Writer{pw: pw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(obj.Bucket),
			Key:         aws.String(obj.Key),
			Body:        pr,
			ContentType: aws.String(contentType(obj.Key)),
		})
		if err != nil {
			w.uploadErr = s3Error("write", obj, err)
		}
		// Unblock pending writes if the upload failed early.
		pr.CloseWithError(w.uploadErr)
	}()
	return w, nil
}

// Delete removes the object. S3 treats missing keys as success.
func (s *S3Store) Delete(ctx context.Context, uri string) error {
	obj, err := ParseS3URI(uri)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	}); err != nil {
		return s3Error("delete", obj, err)
	}
	return nil
}

// Exists issues a HeadObject.
func (s *S3Store) Exists(ctx context.Context, uri string) (bool, error) {
	obj, err := ParseS3URI(uri)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err == nil {
		return true, nil
	}
	if err = s3Error("stat", obj, err); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

type s3Writer struct {
	pw        *io.PipeWriter
	done      chan struct{}
	uploadErr error
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *s3Writer) Close() error {
	w.pw.Close()
	<-w.done
	return w.uploadErr
}

// s3Error wraps err with the operation and object. Missing objects and
// buckets wrap os.ErrNotExist.
func s3Error(op string, obj S3Object, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return fmt.Errorf("storage: %s %s: %w", op, obj, os.ErrNotExist)
		}
	}
	return fmt.Errorf("storage: %s %s: %w", op, obj, err)
}

// contentType maps the artifacts voicematch reads and writes to MIME types.
func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".msgpack":
		return "application/msgpack"
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".txt":
		return "text/plain"
	}
	return "application/octet-stream"
}

var _ FileStore = (*S3Store)(nil)
