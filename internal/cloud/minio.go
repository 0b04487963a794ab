package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/iudanet/bandsync/internal/models"
)

// Minio is a Transport over an S3-compatible bucket.
// Object ETags serve as version tags for conditional writes.
type Minio struct {
	client *minio.Client
	bucket string
	region string
}

// NewMinio connects to the bucket described by creds.
// No request is made until the first call.
func NewMinio(creds models.CloudCredentials) (*Minio, error) {
	if creds.Endpoint == "" || creds.Bucket == "" {
		return nil, fmt.Errorf("%w: endpoint and bucket are required", ErrAuthenticationRequired)
	}
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return nil, fmt.Errorf("%w: access key and secret key are required", ErrAuthenticationRequired)
	}

	client, err := minio.New(creds.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure:       creds.Secure,
		Region:       creds.Region,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	return &Minio{client: client, bucket: creds.Bucket, region: creds.Region}, nil
}

// EnsureBucket creates the bucket if it does not exist.
// Doubles as a credentials check for login.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return mapError("check bucket", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return mapError("create bucket", err)
	}
	return nil
}

// Put uploads data to path
func (m *Minio) Put(ctx context.Context, path string, data []byte, opts PutOptions) (ObjectInfo, error) {
	putOpts := minio.PutObjectOptions{ContentType: contentType(path)}
	if opts.IfMatch != "" {
		putOpts.SetMatchETag(opts.IfMatch)
	}
	if opts.IfNoneMatch {
		putOpts.SetMatchETagExcept("*")
	}

	info, err := m.client.PutObject(ctx, m.bucket, path, bytes.NewReader(data), int64(len(data)), putOpts)
	if err != nil {
		return ObjectInfo{}, mapError("put "+path, err)
	}

	return ObjectInfo{
		Path:         path,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Get downloads the object at path
func (m *Minio) Get(ctx context.Context, path string) ([]byte, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapError("get "+path, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, ObjectInfo{}, mapError("stat "+path, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, ObjectInfo{}, mapError("read "+path, err)
	}

	return data, ObjectInfo{
		Path:         path,
		Size:         stat.Size,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// List returns every object under prefix
func (m *Minio) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, mapError("list "+prefix, obj.Err)
		}
		out = append(out, ObjectInfo{
			Path:         obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

// Delete removes the object at path
func (m *Minio) Delete(ctx context.Context, path string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return mapError("delete "+path, err)
	}
	return nil
}

func contentType(path string) string {
	if strings.HasSuffix(path, ".json") {
		return "application/json"
	}
	return "application/octet-stream"
}

// mapError переводит ошибки S3 в ошибки пакета, сохраняя исходную
func mapError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if sentinel := classify(err); sentinel != nil {
		return fmt.Errorf("%w: %s: %w", sentinel, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	case "PreconditionFailed":
		return ErrPreconditionFailed
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
		return ErrAuthenticationRequired
	case "SlowDown", "InternalError", "ServiceUnavailable", "RequestTimeout", "XMinioServerNotInitialized":
		return ErrTransient
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusPreconditionFailed:
		return ErrPreconditionFailed
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrAuthenticationRequired
	case resp.StatusCode >= http.StatusInternalServerError:
		return ErrTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTransient
		}
		return ErrOffline
	}
	return nil
}
