// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
	"time"
)

// FileSystem is the set of operations the lister needs from a backend.
type FileSystem interface {
	Join(name ...string) string
	IsNotExist(err error) bool
	// OpenDir opens the directory and returns a single-pass iterator over the names of its children.
	OpenDir(ctx context.Context, name string) (DirectoryIterator, error)
	// Stat queries the metadata of a single entry.
	Stat(ctx context.Context, name string) (FileInfo, error)
}

// FileInfo is the result of a metadata query.
type FileInfo interface {
	IsDir() bool
	Name() string
	ModTime() time.Time
	Size() int64
}
