// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

// DirectoryIterator yields the names of the children of a directory.
// Next returns false when the directory is exhausted or a read failed.
// Err reports the failure, if any, after Next returns false.
// An iterator cannot be restarted.
type DirectoryIterator interface {
	Next() (string, bool)
	Err() error
	Close() error
}
