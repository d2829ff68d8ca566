// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deptofdefense/lsdirs/pkg/lfs"
	"github.com/deptofdefense/lsdirs/pkg/s3fs"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootCommand := newRootCommand()
	rootCommand.SetOut(stdout)
	rootCommand.SetErr(stderr)
	rootCommand.SetArgs(args)
	err := rootCommand.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func newDirectory(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, d := range []string{"a", "b"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("c"), 0600))
	return dir
}

func lines(s string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, LsdirsVersion+"\n", stdout)
}

func TestList(t *testing.T) {
	dir := newDirectory(t)
	stdout, stderr, err := execute(t, "list", dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Directory: a", "Directory: b"}, lines(stdout))
	assert.Empty(t, stderr)
}

func TestListPathFlag(t *testing.T) {
	dir := newDirectory(t)
	stdout, _, err := execute(t, "list", "--path", dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Directory: a", "Directory: b"}, lines(stdout))
}

func TestListPathEnvironment(t *testing.T) {
	dir := newDirectory(t)
	t.Setenv("LSDIRS_PATH", dir)
	stdout, _, err := execute(t, "list")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Directory: a", "Directory: b"}, lines(stdout))
}

func TestListFiles(t *testing.T) {
	dir := newDirectory(t)
	stdout, _, err := execute(t, "list", dir, "--files")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Directory: a", "Directory: b", "File: c.txt"}, lines(stdout))
}

func TestListDirectoryTemplate(t *testing.T) {
	dir := newDirectory(t)
	stdout, _, err := execute(t, "list", dir, "--directory-template", "{{ .Name }}/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/", "b/"}, lines(stdout))
}

func TestListEmpty(t *testing.T) {
	stdout, _, err := execute(t, "list", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestListNotExist(t *testing.T) {
	stdout, _, err := execute(t, "list", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, stdout)
}

func TestListNotADirectory(t *testing.T) {
	dir := newDirectory(t)
	stdout, _, err := execute(t, "list", filepath.Join(dir, "c.txt"))
	require.Error(t, err)
	assert.Empty(t, stdout)
}

func TestListTooManyArguments(t *testing.T) {
	_, _, err := execute(t, "list", "a", "b")
	assert.Error(t, err)
}

func TestListDryRun(t *testing.T) {
	stdout, _, err := execute(t, "list", filepath.Join(t.TempDir(), "missing"), "--dry-run")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestListInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "list", t.TempDir(), "--log-level", "loud")
	assert.Error(t, err)
}

func TestListLogFile(t *testing.T) {
	dir := newDirectory(t)
	logPath := filepath.Join(t.TempDir(), "lsdirs.log")
	stdout, stderr, err := execute(t, "list", dir, "--log", logPath, "--log-level", "info")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Directory: a", "Directory: b"}, lines(stdout))
	assert.Empty(t, stderr)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Listed directory")
	assert.Contains(t, string(data), "lsdirs_trace_id")
}

func TestInitLoggerClosesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "lsdirs.log")
	logger, closeLog, err := initLogger(&bytes.Buffer{}, logPath, "0600", "info")
	require.NoError(t, err)
	require.NoError(t, logger.Log("Listing directory", nil))
	require.NoError(t, closeLog())
	// closing an already closed file fails, so the first close released the handle
	assert.Error(t, closeLog())
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Listing directory")
}

func TestInitLoggerStderrNeedsNoClose(t *testing.T) {
	stderr := &bytes.Buffer{}
	logger, closeLog, err := initLogger(stderr, "-", "0600", "info")
	require.NoError(t, err)
	require.NoError(t, logger.Log("Listing directory", nil))
	assert.NoError(t, closeLog())
	assert.NoError(t, closeLog())
	assert.Contains(t, stderr.String(), "Listing directory")
}

func TestListLogsErrorsToStderr(t *testing.T) {
	_, stderr, err := execute(t, "list", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, stderr, "Error listing directory")
}

func TestListInvalidS3Path(t *testing.T) {
	_, _, err := execute(t, "list", "s3://")
	assert.Error(t, err)
}

func TestListInvalidS3PageSize(t *testing.T) {
	_, _, err := execute(t, "list", "s3://bucket/prefix", "--aws-s3-page-size", "5000")
	assert.Error(t, err)
}

func TestInitFileSystem(t *testing.T) {
	v := viper.New()

	fileSystem, name, err := initFileSystem(v, "s3://bucket/prefix")
	require.NoError(t, err)
	assert.IsType(t, &s3fs.S3FileSystem{}, fileSystem)
	assert.Equal(t, "/", name)

	fileSystem, name, err = initFileSystem(v, "/tmp")
	require.NoError(t, err)
	assert.IsType(t, &lfs.LocalFileSystem{}, fileSystem)
	assert.Equal(t, "/tmp", name)
}
