// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lister

import (
	"time"
)

// Entry is a child of the scanned directory, classified by its metadata.
// It is the data passed to the line templates.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}
