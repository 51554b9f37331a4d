package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/afandal/storeadmin/config"
)

// s3Disk reads catalog images from a bucket, optionally under a key
// prefix. MinIO and R2 work through S3_ENDPOINT with path-style keys.
type s3Disk struct {
	api    *s3.Client
	bucket string
	prefix string
	public string
}

func newS3Disk(ctx context.Context) (*s3Disk, error) {
	bucket := config.StorageS3Bucket()
	if bucket == "" {
		return nil, errors.New("storage/s3: S3_BUCKET is not configured")
	}
	region := config.StorageS3Region()

	loaders := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if k, s := config.StorageS3Key(), config.StorageS3Secret(); k != "" && s != "" {
		loaders = append(loaders, awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(k, s, "")))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: aws config: %w", err)
	}

	endpoint := config.StorageS3Endpoint()
	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	public := strings.TrimRight(config.Get("S3_URL", ""), "/")
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &s3Disk{
		api:    api,
		bucket: bucket,
		prefix: strings.Trim(config.Get("S3_PREFIX", ""), "/"),
		public: public,
	}, nil
}

func (d *s3Disk) key(p string) string {
	p = strings.TrimLeft(p, "/")
	if d.prefix == "" {
		return p
	}
	return path.Join(d.prefix, p)
}

// notFound folds the SDK's missing-object errors into fs.ErrNotExist.
func notFound(err error) error {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("%w: %v", fs.ErrNotExist, err)
	}
	return err
}

func (d *s3Disk) Put(ctx context.Context, p string, content []byte) error {
	_, err := d.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key(p)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(http.DetectContentType(content)),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: put %s: %w", p, err)
	}
	return nil
}

// PutStream buffers r so the SDK can sign a seekable body.
func (d *s3Disk) PutStream(ctx context.Context, p string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("storage/s3: read %s: %w", p, err)
	}
	return d.Put(ctx, p, data)
}

func (d *s3Disk) Get(ctx context.Context, p string) ([]byte, error) {
	rc, err := d.GetStream(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (d *s3Disk) GetStream(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := d.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(d.bucket), Key: aws.String(d.key(p))})
	if err != nil {
		return nil, fmt.Errorf("storage/s3: get %s: %w", p, notFound(err))
	}
	return out.Body, nil
}

func (d *s3Disk) head(ctx context.Context, p string) (*s3.HeadObjectOutput, error) {
	out, err := d.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(d.bucket), Key: aws.String(d.key(p))})
	if err != nil {
		return nil, fmt.Errorf("storage/s3: head %s: %w", p, notFound(err))
	}
	return out, nil
}

func (d *s3Disk) Exists(ctx context.Context, p string) bool {
	_, err := d.head(ctx, p)
	return err == nil
}

func (d *s3Disk) Size(ctx context.Context, p string) (int64, error) {
	out, err := d.head(ctx, p)
	if err != nil {
		return 0, err
	}
	return aws.ToInt64(out.ContentLength), nil
}

func (d *s3Disk) LastModified(ctx context.Context, p string) (time.Time, error) {
	out, err := d.head(ctx, p)
	if err != nil {
		return time.Time{}, err
	}
	return aws.ToTime(out.LastModified), nil
}

func (d *s3Disk) URL(p string) string {
	return d.public + "/" + d.key(p)
}

func (d *s3Disk) Delete(ctx context.Context, p string) error {
	_, err := d.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(d.bucket), Key: aws.String(d.key(p))})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", p, err)
	}
	return nil
}

// Files lists keys directly under directory, relative to the disk prefix.
func (d *s3Disk) Files(ctx context.Context, directory string) ([]string, error) {
	dir := d.key(directory)
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	var out []string
	pages := s3.NewListObjectsV2Paginator(d.api, &s3.ListObjectsV2Input{
		Bucket:    aws.String(d.bucket),
		Prefix:    aws.String(dir),
		Delimiter: aws.String("/"),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage/s3: list %s: %w", directory, err)
		}
		for _, obj := range page.Contents {
			k := aws.ToString(obj.Key)
			if d.prefix != "" {
				k = strings.TrimPrefix(k, d.prefix+"/")
			}
			out = append(out, k)
		}
	}
	return out, nil
}
