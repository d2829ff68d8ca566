// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lister

// State is the progress of a single scan.
type State int

const (
	NotStarted State = iota
	Iterating
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Iterating:
		return "iterating"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}
