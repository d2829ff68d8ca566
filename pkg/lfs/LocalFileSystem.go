// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/deptofdefense/lsdirs/pkg/fs"
)

type LocalFileSystem struct {
	fs afero.Fs
}

func (lfs *LocalFileSystem) IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (lfs *LocalFileSystem) Join(name ...string) string {
	return filepath.Join(name...)
}

func (lfs *LocalFileSystem) OpenDir(ctx context.Context, name string) (fs.DirectoryIterator, error) {
	f, err := lfs.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &LocalDirectoryIterator{
		file:      f,
		batchSize: DefaultBatchSize,
	}, nil
}

// Stat does not follow symbolic links when the underlying file system supports lstat.
func (lfs *LocalFileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	var fi os.FileInfo
	var err error
	if lstater, ok := lfs.fs.(afero.Lstater); ok {
		fi, _, err = lstater.LstatIfPossible(name)
	} else {
		fi, err = lfs.fs.Stat(name)
	}
	if err != nil {
		return nil, err
	}
	if fi == nil {
		return nil, fmt.Errorf("no file info returned for %q", name)
	}
	return NewLocalFileInfo(fi.Name(), fi.Mode(), fi.ModTime(), fi.Size()), nil
}

// NewLocalFileSystem returns a read-only file system over the operating system.
func NewLocalFileSystem() *LocalFileSystem {
	return NewLocalFileSystemFromFs(afero.NewOsFs())
}

// NewLocalFileSystemFromFs returns a read-only view of the given afero file system.
func NewLocalFileSystemFromFs(base afero.Fs) *LocalFileSystem {
	return &LocalFileSystem{
		fs: afero.NewReadOnlyFs(base),
	}
}
