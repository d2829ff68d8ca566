// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lfs

import (
	"errors"
	"io"

	"github.com/spf13/afero"
)

const (
	DefaultBatchSize = 128
)

// LocalDirectoryIterator reads entry names from an open directory handle in batches.
type LocalDirectoryIterator struct {
	file      afero.File
	batchSize int
	names     []string
	done      bool
	err       error
}

func (it *LocalDirectoryIterator) fill() {
	names, err := it.file.Readdirnames(it.batchSize)
	// names read before a failure are still yielded before the error is reported
	it.names = names
	if err != nil {
		it.done = true
		if !errors.Is(err, io.EOF) {
			it.err = err
		}
	}
	if len(names) == 0 {
		it.done = true
	}
}

func (it *LocalDirectoryIterator) Next() (string, bool) {
	if len(it.names) == 0 {
		if it.done {
			return "", false
		}
		it.fill()
		if len(it.names) == 0 {
			return "", false
		}
	}
	name := it.names[0]
	it.names = it.names[1:]
	return name, true
}

func (it *LocalDirectoryIterator) Err() error {
	return it.err
}

func (it *LocalDirectoryIterator) Close() error {
	return it.file.Close()
}
