// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lfs

import (
	"os"
	"time"
)

type LocalFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (fi *LocalFileInfo) IsDir() bool {
	return fi.mode.IsDir()
}

// IsSymlink returns true if the entry itself is a symbolic link.
func (fi *LocalFileInfo) IsSymlink() bool {
	return fi.mode&os.ModeSymlink != 0
}

func (fi *LocalFileInfo) Name() string {
	return fi.name
}

func (fi *LocalFileInfo) ModTime() time.Time {
	return fi.modTime
}

func (fi *LocalFileInfo) Size() int64 {
	return fi.size
}

func NewLocalFileInfo(name string, mode os.FileMode, modTime time.Time, size int64) *LocalFileInfo {
	return &LocalFileInfo{
		name:    name,
		mode:    mode,
		modTime: modTime,
		size:    size,
	}
}
