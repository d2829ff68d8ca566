// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3DirectoryIterator requests one page of keys at a time.
type S3DirectoryIterator struct {
	ctx       context.Context
	prefix    string
	paginator *s3.ListObjectsV2Paginator
	names     []string
	seen      map[string]bool
	keys      int
	err       error
}

// add queues a name once.  An object and a common prefix may share a name,
// possibly on different pages.
func (it *S3DirectoryIterator) add(name string) {
	if len(name) == 0 || it.seen[name] {
		return
	}
	if it.seen == nil {
		it.seen = map[string]bool{}
	}
	it.seen[name] = true
	it.names = append(it.names, name)
}

func (it *S3DirectoryIterator) fetch() error {
	listObjectsOutput, err := it.paginator.NextPage(it.ctx)
	if err != nil {
		return err
	}
	for _, commonPrefix := range listObjectsOutput.CommonPrefixes {
		it.keys++
		it.add(strings.TrimSuffix(strings.TrimPrefix(aws.ToString(commonPrefix.Prefix), it.prefix), Delimiter))
	}
	for _, object := range listObjectsOutput.Contents {
		it.keys++
		key := aws.ToString(object.Key)
		// skip the marker object for the directory itself
		if key == it.prefix {
			continue
		}
		it.add(strings.TrimPrefix(key, it.prefix))
	}
	return nil
}

func (it *S3DirectoryIterator) Next() (string, bool) {
	for len(it.names) == 0 {
		if it.err != nil || !it.paginator.HasMorePages() {
			return "", false
		}
		if err := it.fetch(); err != nil {
			it.err = err
			return "", false
		}
	}
	name := it.names[0]
	it.names = it.names[1:]
	return name, true
}

func (it *S3DirectoryIterator) Err() error {
	return it.err
}

func (it *S3DirectoryIterator) Close() error {
	it.names = nil
	return nil
}
