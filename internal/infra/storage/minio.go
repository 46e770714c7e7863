package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

// maxPayloadBytes caps a single payload object.
const maxPayloadBytes = 16 << 20

// Minio reads payload objects "<prefix><filename>.json" from one bucket.
type Minio struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewMinio connects to MinIO and checks that the bucket exists. The bucket is
// owned by the reporting collaborator, so a missing bucket is an error.
func NewMinio(ctx context.Context, endpoint, region, bucket, accessKey, secretKey, prefix string, useSSL bool) (*Minio, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", bucket)
	}

	return &Minio{client: cli, bucketName: bucket, prefix: prefix}, nil
}

// Key is the object key for a dataset file name.
func (s *Minio) Key(filename string) string {
	return s.prefix + filename + ".json"
}

// Load implements analytics.Source.
func (s *Minio) Load(ctx context.Context, filename string) (*analytics.Payload, error) {
	if err := checkName(filename); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, s.Key(filename), minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(filename, err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(io.LimitReader(obj, maxPayloadBytes))
	if err != nil {
		return nil, mapMinioErr(filename, err)
	}
	return decode(filename, raw)
}

// Check implements the health checker used by the router.
func (s *Minio) Check(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

// GetObject is lazy: a missing key surfaces on the first read.
func mapMinioErr(filename string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", filename, analytics.ErrNotFound)
	}
	return fmt.Errorf("read payload %s: %w", filename, err)
}

// Filenames lists payload objects under the prefix, newest first.
func (s *Minio) Filenames(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	type item struct {
		name string
		mod  int64
	}
	var items []item
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: s.prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		if !strings.HasSuffix(name, ".json") || strings.Contains(name, "/") {
			continue
		}
		items = append(items, item{name: strings.TrimSuffix(name, ".json"), mod: obj.LastModified.UnixNano()})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].mod != items[j].mod {
			return items[i].mod > items[j].mod
		}
		return items[i].name < items[j].name
	})
	out := make([]string, 0, limit)
	for _, it := range items {
		if len(out) == limit {
			break
		}
		out = append(out, it.name)
	}
	return out, nil
}
