package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tagit/internal/ports"
)

const objectSuffix = ".json"

// ErrBucketMissing is returned by Open when the bucket does not exist
// and CreateBucket is off.
var ErrBucketMissing = errors.New("bucket does not exist")

// Config contains the connection settings for an S3 compatible store
type Config struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Prefix       string `yaml:"prefix"`
	UseSSL       bool   `yaml:"use_ssl"`
	CreateBucket bool   `yaml:"create_bucket"`
}

// Storage keeps one JSON object per identity
type Storage struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// Ensure Storage implements TagStorage
var _ ports.TagStorage = (*Storage)(nil)

// Open connects to the endpoint and checks the bucket
func Open(ctx context.Context, config Config) (*Storage, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if !config.CreateBucket {
			return nil, fmt.Errorf("%w: %s", ErrBucketMissing, config.Bucket)
		}
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	prefix := strings.Trim(config.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &Storage{
		client:     client,
		bucketName: config.Bucket,
		prefix:     prefix,
	}, nil
}

func (s *Storage) objectName(id string) string {
	return s.prefix + base64.RawURLEncoding.EncodeToString([]byte(id)) + objectSuffix
}

func (s *Storage) parseObjectName(name string) (string, bool) {
	encoded, ok := strings.CutPrefix(name, s.prefix)
	if !ok {
		return "", false
	}
	encoded, ok = strings.CutSuffix(encoded, objectSuffix)
	if !ok || strings.Contains(encoded, "/") {
		return "", false
	}
	id, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(id), true
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// Read fetches and decodes the object of key
func (s *Storage) Read(ctx context.Context, key string) ([]string, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return tags, true, nil
}

// Write uploads the encoded tags of key, replacing any previous object
func (s *Storage) Write(ctx context.Context, key string, tags []string) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucketName, s.objectName(key),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

// Delete removes the object of key. S3 treats a missing object as success.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucketName, s.objectName(key), minio.RemoveObjectOptions{})
}

// Keys lists every identity under the prefix
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	return s.collectKeys(ctx, func(ctx context.Context) <-chan minio.ObjectInfo {
		return s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
			Prefix:    s.prefix,
			Recursive: true,
		})
	})
}

// collectKeys drains a listing. The listing runs under its own context so
// that returning early on an error stops the producer goroutine.
func (s *Storage) collectKeys(ctx context.Context, list func(context.Context) <-chan minio.ObjectInfo) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ids []string
	for obj := range list(ctx) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if id, ok := s.parseObjectName(obj.Key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Close is a no-op; the minio client holds no session
func (s *Storage) Close() error {
	return nil
}
