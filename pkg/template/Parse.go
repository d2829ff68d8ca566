// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package template

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"
)

const (
	DefaultDirectoryTemplate = "Directory: {{ .Name }}"
	DefaultFileTemplate      = "File: {{ .Name }}"
)

// Template renders one output line per entry.
type Template interface {
	Execute(w io.Writer, data any) error
}

var funcMap = template.FuncMap{
	"formatTime": func(t time.Time, f string) string {
		return t.Format(f)
	},
}

// Parse parses a single-line template.  A trailing newline is appended if missing.
func Parse(name string, text string) (Template, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("template %q is empty", name)
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	t, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("error parsing template %q: %w", name, err)
	}
	return t, nil
}
