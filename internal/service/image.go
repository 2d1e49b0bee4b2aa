package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"bitwise74/account-api/aws"
	"bitwise74/account-api/pkg/security"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/chenyahui/gin-cache/persist"
)

var ErrImageNotFound = errors.New("image not found")

// ImageStore keeps profile images. Names are generated by the store and are
// the only thing persisted on the user row.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// Image names are generated tokens, anything else can't be ours
func validImageName(name string) bool {
	if len(name) != security.TokenSize {
		return false
	}

	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}

	return true
}

// ImageCacheKey is the response cache key of a served image
func ImageCacheKey(name string) string {
	return "image:" + name
}

// CachedImageStore drops the cached response of an image once it's deleted
type CachedImageStore struct {
	ImageStore
	Cache persist.CacheStore
}

func (s *CachedImageStore) Delete(ctx context.Context, name string) error {
	if err := s.ImageStore.Delete(ctx, name); err != nil {
		return err
	}

	// A miss is reported as an error by the memory store
	_ = s.Cache.Delete(ImageCacheKey(name))
	return nil
}

// LocalImageStore keeps images on disk under <upload dir>/<profile dir>
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore creates the upload folders if they don't exist yet
func NewLocalImageStore(uploadDir, profileDir string) (*LocalImageStore, error) {
	dir := filepath.Join(uploadDir, profileDir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload folders, %w", err)
	}

	return &LocalImageStore{dir: dir}, nil
}

func (s *LocalImageStore) Save(_ context.Context, data []byte, _ string) (string, error) {
	name, err := security.NewToken(security.TokenSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate image name, %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image, %w", err)
	}

	return name, nil
}

func (s *LocalImageStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !validImageName(name) {
		return nil, ErrImageNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrImageNotFound
		}

		return nil, fmt.Errorf("failed to open image, %w", err)
	}

	return f, nil
}

func (s *LocalImageStore) Delete(_ context.Context, name string) error {
	if !validImageName(name) {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image, %w", err)
	}

	return nil
}

// S3ImageStore keeps images in a bucket, keyed <profile dir>/<name>
type S3ImageStore struct {
	client *aws.S3Client
	prefix string
}

func NewS3ImageStore(client *aws.S3Client, prefix string) *S3ImageStore {
	return &S3ImageStore{client: client, prefix: prefix}
}

func (s *S3ImageStore) key(name string) *string {
	return awssdk.String(path.Join(s.prefix, name))
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	name, err := security.NewToken(security.TokenSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate image name, %w", err)
	}

	_, err = s.client.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        s.client.Bucket,
		Key:           s.key(name),
		Body:          bytes.NewReader(data),
		ContentType:   awssdk.String(contentType),
		ContentLength: awssdk.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image, %w", err)
	}

	return name, nil
}

func (s *S3ImageStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !validImageName(name) {
		return nil, ErrImageNotFound
	}

	out, err := s.client.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.client.Bucket,
		Key:    s.key(name),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrImageNotFound
		}

		return nil, fmt.Errorf("failed to fetch image, %w", err)
	}

	return out.Body, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, name string) error {
	if !validImageName(name) {
		return nil
	}

	_, err := s.client.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.client.Bucket,
		Key:    s.key(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image, %w", err)
	}

	return nil
}
