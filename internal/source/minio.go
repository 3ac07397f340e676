package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
)

// MinioStore is an ObjectStore over any S3-compatible service.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
}

var _ ObjectStore = (*MinioStore)(nil)

// NewMinioStore connects lazily; no request is made until Get or List.
// Without static keys it falls back to the AWS environment and shared
// credentials file, then anonymous access.
func NewMinioStore(rc config.RemoteConfig) (*MinioStore, error) {
	var creds *credentials.Credentials
	if rc.AccessKey != "" {
		creds = credentials.NewStaticV4(rc.AccessKey, rc.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.FileAWSCredentials{},
		})
	}

	client, err := minio.New(rc.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: rc.UseSSL,
		Region: rc.Region,
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't set up the object store client for "+rc.Endpoint,
			"Check source.remote.endpoint is a host[:port].")
	}
	return &MinioStore{client: client, bucket: rc.Bucket, endpoint: rc.Endpoint}, nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.classify(err)
	}
	defer obj.Close()

	// GetObject is lazy; the first read surfaces NoSuchKey.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.classify(err)
	}
	return data, nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *MinioStore) Describe() string {
	return fmt.Sprintf("s3://%s@%s", s.bucket, s.endpoint)
}

// Ping checks the bucket exists and the credentials can see it.
func (s *MinioStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func (s *MinioStore) classify(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket") {
		return ErrNotFound
	}
	return err
}
