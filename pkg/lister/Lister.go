// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lister

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/deptofdefense/lsdirs/pkg/fs"
	"github.com/deptofdefense/lsdirs/pkg/log"
	"github.com/deptofdefense/lsdirs/pkg/template"
)

type Config struct {
	// IncludeFiles also writes a line for every entry that is not a directory.
	IncludeFiles      bool
	DirectoryTemplate string
	FileTemplate      string
}

type Lister struct {
	fs                fs.FileSystem
	writer            io.Writer
	logger            *log.SimpleLogger
	includeFiles      bool
	directoryTemplate template.Template
	fileTemplate      template.Template
	state             State
}

// State returns the state of the most recent scan.
func (l *Lister) State() State {
	return l.state
}

func (l *Lister) emit(e Entry) error {
	if e.IsDir {
		return l.directoryTemplate.Execute(l.writer, e)
	}
	if l.includeFiles {
		return l.fileTemplate.Execute(l.writer, e)
	}
	return nil
}

// ListDirectories writes a line for each immediate child of path that is a directory.
// The scan stops at the first failure.  Lines written before the failure are not retracted.
func (l *Lister) ListDirectories(ctx context.Context, path string) error {
	l.state = Iterating
	_ = l.logger.Log("Listing directory", map[string]interface{}{
		"path":          path,
		"include_files": l.includeFiles,
	})
	entries, directories, err := l.listDirectories(ctx, path)
	if err != nil {
		l.state = Failed
		_ = l.logger.Error("Error listing directory", map[string]interface{}{
			"path":        path,
			"entries":     entries,
			"directories": directories,
			"not_found":   l.fs.IsNotExist(err),
			"error":       err.Error(),
		})
		return err
	}
	l.state = Completed
	_ = l.logger.Log("Listed directory", map[string]interface{}{
		"path":        path,
		"entries":     entries,
		"directories": directories,
	})
	return nil
}

func (l *Lister) listDirectories(ctx context.Context, path string) (int, int, error) {
	entries := 0
	directories := 0
	it, err := l.fs.OpenDir(ctx, path)
	if err != nil {
		return entries, directories, fmt.Errorf("error opening directory %q: %w", path, err)
	}
	defer func() { _ = it.Close() }()
	for {
		name, ok := it.Next()
		if !ok {
			break
		}
		entries++
		fi, err := l.fs.Stat(ctx, l.fs.Join(path, name))
		if err != nil {
			return entries, directories, fmt.Errorf("error querying metadata for %q in %q: %w", name, path, err)
		}
		e := Entry{
			// the raw name is still used for the metadata query
			Name:    strings.ToValidUTF8(name, "\uFFFD"),
			IsDir:   fi.IsDir(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}
		_ = l.logger.Debug("Entry", map[string]interface{}{
			"name": e.Name,
			"dir":  e.IsDir,
		})
		if e.IsDir {
			directories++
		}
		if err := l.emit(e); err != nil {
			return entries, directories, fmt.Errorf("error writing entry %q: %w", name, err)
		}
	}
	if err := it.Err(); err != nil {
		return entries, directories, fmt.Errorf("error reading directory %q: %w", path, err)
	}
	return entries, directories, nil
}

// NewLister returns a lister that writes to w.  Empty templates in the config fall back to the defaults.
func NewLister(fileSystem fs.FileSystem, w io.Writer, logger *log.SimpleLogger, config *Config) (*Lister, error) {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = log.NewDiscardLogger()
	}
	directoryTemplateText := config.DirectoryTemplate
	if len(directoryTemplateText) == 0 {
		directoryTemplateText = template.DefaultDirectoryTemplate
	}
	directoryTemplate, err := template.Parse("directory", directoryTemplateText)
	if err != nil {
		return nil, fmt.Errorf("error parsing directory template: %w", err)
	}
	fileTemplateText := config.FileTemplate
	if len(fileTemplateText) == 0 {
		fileTemplateText = template.DefaultFileTemplate
	}
	fileTemplate, err := template.Parse("file", fileTemplateText)
	if err != nil {
		return nil, fmt.Errorf("error parsing file template: %w", err)
	}
	return &Lister{
		fs:                fileSystem,
		writer:            w,
		logger:            logger,
		includeFiles:      config.IncludeFiles,
		directoryTemplate: directoryTemplate,
		fileTemplate:      fileTemplate,
		state:             NotStarted,
	}, nil
}
