package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3 compatible artifact bucket
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// S3Filer writes artifacts as objects of a bucket
type S3Filer struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Filer creates a filer for the configured bucket. The bucket is created on first write if missing.
func NewS3Filer(cfg S3Config) (*S3Filer, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Filer{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

func (f *S3Filer) ensureBucket(ctx context.Context) error {
	f.initOnce.Do(func() {
		exists, err := f.client.BucketExists(ctx, f.bucketName)
		if err != nil {
			f.initErr = err
			return
		}
		if exists {
			return
		}
		f.initErr = f.client.MakeBucket(ctx, f.bucketName, minio.MakeBucketOptions{Region: f.region})
	})
	return f.initErr
}

// objectKey maps an artifact to its key inside the bucket
func (f *S3Filer) objectKey(pkg, name string) string {
	key := ArtifactPath(pkg, name)
	if f.prefix == "" {
		return key
	}
	return path.Join(f.prefix, key)
}

// Location returns the s3:// URL of an artifact
func (f *S3Filer) Location(pkg, name string) string {
	return "s3://" + f.bucketName + "/" + f.objectKey(pkg, name)
}

// Write uploads data as a single object
func (f *S3Filer) Write(ctx context.Context, pkg, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := f.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if data == nil {
		data = []byte{}
	}

	_, err := f.client.PutObject(ctx, f.bucketName, f.objectKey(pkg, name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", f.Location(pkg, name), err)
	}
	return nil
}

// Read downloads a previously written artifact
func (f *S3Filer) Read(ctx context.Context, pkg, name string) ([]byte, error) {
	obj, err := f.client.GetObject(ctx, f.bucketName, f.objectKey(pkg, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".properties":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
