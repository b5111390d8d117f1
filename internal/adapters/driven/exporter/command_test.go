package exporter

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// writeScript creates a shell script exporter in dir.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell exporters are not available on windows")
	}
	path := filepath.Join(dir, "export.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func setupSource(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "Timetable.tfx")
	require.NoError(t, os.WriteFile(source, []byte("<timetable/>"), 0644))
	return dir, source
}

func TestCommand_Export_Success(t *testing.T) {
	dir, source := setupSource(t)
	out := filepath.Join(dir, "exports")
	script := writeScript(t, dir, `
set -e
test -f "$1"
echo a > "$2/student_courses.csv"
echo b > "$2/student_timetable.csv"
echo c > "$2/timetable.csv"
`)

	result, err := NewCommand([]string{"sh", script}, 0).Export(context.Background(), source, out)

	require.NoError(t, err)
	assert.Equal(t, out, result.OutputDir)
	assert.Equal(t, []string{
		filepath.Join(out, domain.StudentCourseFile),
		filepath.Join(out, domain.StudentTimetableFile),
		filepath.Join(out, domain.TimetableFile),
	}, result.Files())
}

func TestCommand_Export_MissingOutputFile(t *testing.T) {
	dir, source := setupSource(t)
	script := writeScript(t, dir, `echo a > "$2/student_courses.csv"`)

	_, err := NewCommand([]string{"sh", script}, 0).Export(context.Background(), source, filepath.Join(dir, "out"))

	require.ErrorIs(t, err, domain.ErrExportFailed)
	assert.Contains(t, err.Error(), domain.TimetableFile)
}

func TestCommand_Export_CommandFails(t *testing.T) {
	dir, source := setupSource(t)
	script := writeScript(t, dir, `echo "bad document" >&2; exit 3`)

	_, err := NewCommand([]string{"sh", script}, 0).Export(context.Background(), source, filepath.Join(dir, "out"))

	require.ErrorIs(t, err, domain.ErrExportFailed)
	assert.Contains(t, err.Error(), "bad document")
}

func TestCommand_Export_Timeout(t *testing.T) {
	dir, source := setupSource(t)
	script := writeScript(t, dir, `exec sleep 5`)

	_, err := NewCommand([]string{"sh", script}, 100*time.Millisecond).Export(context.Background(), source, filepath.Join(dir, "out"))

	require.ErrorIs(t, err, domain.ErrExportFailed)
	assert.Contains(t, err.Error(), "timed out")
}

func TestCommand_Export_MissingSource(t *testing.T) {
	dir := t.TempDir()

	_, err := NewCommand([]string{"true"}, 0).Export(context.Background(), filepath.Join(dir, "nope.tfx"), dir)

	assert.ErrorIs(t, err, domain.ErrExportFailed)
}

func TestCommand_Export_EmptyCommand(t *testing.T) {
	_, source := setupSource(t)

	_, err := NewCommand(nil, 0).Export(context.Background(), source, t.TempDir())

	assert.ErrorIs(t, err, domain.ErrExportFailed)
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{domain.StudentCourseFile, domain.StudentTimetableFile, domain.TimetableFile} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	result, err := Collect(dir)
	require.NoError(t, err)
	assert.Len(t, result.Files(), 3)

	require.NoError(t, os.Remove(filepath.Join(dir, domain.StudentCourseFile)))
	_, err = Collect(dir)
	assert.ErrorIs(t, err, domain.ErrExportFailed)
}
