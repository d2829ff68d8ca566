// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/deptofdefense/lsdirs/pkg/fs"
)

const (
	Delimiter = "/"
)

// Client is the subset of the S3 API used by the file system.
type Client interface {
	s3.ListObjectsV2APIClient
	s3.HeadObjectAPIClient
}

type S3FileSystem struct {
	bucket   string
	prefix   string
	client   Client
	pageSize int32
}

// ParsePath splits a path in the format s3://bucket/prefix into the bucket and prefix.
func ParsePath(p string) (string, string, error) {
	if !strings.HasPrefix(p, "s3://") {
		return "", "", fmt.Errorf("path %q does not start with \"s3://\"", p)
	}
	parts := strings.SplitN(strings.TrimPrefix(p, "s3://"), "/", 2)
	bucket := parts[0]
	if len(bucket) == 0 {
		return "", "", fmt.Errorf("path %q is missing a bucket", p)
	}
	prefix := ""
	if len(parts) > 1 {
		prefix = strings.Trim(parts[1], "/")
	}
	return bucket, prefix, nil
}

// key returns the object key for the given name.
func (s3fs *S3FileSystem) key(name string) string {
	if len(s3fs.prefix) == 0 {
		return strings.Trim(path.Clean("/"+name), "/")
	}
	return strings.Trim(s3fs.Join(s3fs.prefix, name), "/")
}

// listPrefix returns the prefix that lists the children of the given name.
func (s3fs *S3FileSystem) listPrefix(name string) string {
	if k := s3fs.key(name); len(k) > 0 {
		return k + Delimiter
	}
	return ""
}

func (s3fs *S3FileSystem) IsNotExist(err error) bool {
	if errors.Is(err, iofs.ErrNotExist) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var responseError *http.ResponseError
	if errors.As(err, &responseError) {
		if responseError.HTTPStatusCode() == 404 {
			return true
		}
	}
	return false
}

func (s3fs *S3FileSystem) Join(name ...string) string {
	return path.Join(name...)
}

// OpenDir lists the common prefixes and objects directly below the given name.
// The first page is requested immediately, so a prefix without any keys is reported as not existing.
func (s3fs *S3FileSystem) OpenDir(ctx context.Context, name string) (fs.DirectoryIterator, error) {
	prefix := s3fs.listPrefix(name)
	listObjectsInput := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s3fs.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String(Delimiter),
	}
	if s3fs.pageSize > 0 {
		listObjectsInput.MaxKeys = s3fs.pageSize
	}
	it := &S3DirectoryIterator{
		ctx:       ctx,
		prefix:    prefix,
		paginator: s3.NewListObjectsV2Paginator(s3fs.client, listObjectsInput),
	}
	if err := it.fetch(); err != nil {
		return nil, fmt.Errorf("error listing objects in bucket %q with prefix %q: %w", s3fs.bucket, prefix, err)
	}
	if it.keys == 0 && len(prefix) > 0 {
		return nil, &iofs.PathError{Op: "open", Path: name, Err: iofs.ErrNotExist}
	}
	return it, nil
}

// Stat reports the name as a directory if any key starts with the name and the delimiter.
// Otherwise it returns the metadata of the object with that key.
// A prefix takes precedence over an object with the same name.
func (s3fs *S3FileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	key := s3fs.key(name)
	if len(key) == 0 {
		return NewS3FileInfo("/", time.Time{}, true, int64(0)), nil
	}
	listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3fs.bucket),
		Prefix:  aws.String(key + Delimiter),
		MaxKeys: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(listObjectsOutput.Contents) > 0 || len(listObjectsOutput.CommonPrefixes) > 0 {
		return NewS3FileInfo(path.Base(key), time.Time{}, true, int64(0)), nil
	}
	headObjectOutput, err := s3fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if s3fs.IsNotExist(err) {
			return nil, &iofs.PathError{Op: "stat", Path: name, Err: iofs.ErrNotExist}
		}
		return nil, err
	}
	return NewS3FileInfo(
		path.Base(key),
		aws.ToTime(headObjectOutput.LastModified),
		false,
		headObjectOutput.ContentLength,
	), nil
}

// NewS3FileSystem returns a file system rooted at the prefix within the bucket.
// A page size of zero uses the service default.
func NewS3FileSystem(bucket string, prefix string, client Client, pageSize int32) *S3FileSystem {
	return &S3FileSystem{
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		client:   client,
		pageSize: pageSize,
	}
}
