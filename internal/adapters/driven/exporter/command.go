// Package exporter runs the external timetable exporter as a subprocess.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// DefaultTimeout bounds a single export.
const DefaultTimeout = 5 * time.Minute

// Ensure Command implements the interface.
var _ driven.Exporter = (*Command)(nil)

// Command exports by running `<argv...> <source> <outputDir>` and checking
// that the three export files exist afterwards.
type Command struct {
	argv    []string
	timeout time.Duration
}

// NewCommand creates an exporter for argv. A non-positive timeout uses DefaultTimeout.
func NewCommand(argv []string, timeout time.Duration) *Command {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Command{
		argv:    append([]string(nil), argv...),
		timeout: timeout,
	}
}

// Export runs the exporter subprocess.
func (c *Command) Export(ctx context.Context, sourcePath, outputDir string) (domain.ExportResult, error) {
	if len(c.argv) == 0 || c.argv[0] == "" {
		return domain.ExportResult{}, fmt.Errorf("%w: exporter command is empty", domain.ErrExportFailed)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return domain.ExportResult{}, fmt.Errorf("%w: source %s: %v", domain.ErrExportFailed, sourcePath, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return domain.ExportResult{}, fmt.Errorf("%w: creating output directory: %v", domain.ErrExportFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string(nil), c.argv[1:]...), sourcePath, outputDir)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren may hold the output pipes open after a kill.
	cmd.WaitDelay = 2 * time.Second

	logger.Debug("Running exporter: %s %s", c.argv[0], strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ExportResult{}, fmt.Errorf("%w: timed out after %s", domain.ErrExportFailed, c.timeout)
		}
		return domain.ExportResult{}, fmt.Errorf("%w: %v (stderr: %s)",
			domain.ErrExportFailed, err, strings.TrimSpace(stderr.String()))
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		logger.Debug("exporter: %s", out)
	}

	return Collect(outputDir)
}

// Collect returns the export files in outputDir, failing if any is missing.
func Collect(outputDir string) (domain.ExportResult, error) {
	result := domain.ExportResult{
		StudentCoursePath:    filepath.Join(outputDir, domain.StudentCourseFile),
		StudentTimetablePath: filepath.Join(outputDir, domain.StudentTimetableFile),
		TimetablePath:        filepath.Join(outputDir, domain.TimetableFile),
		OutputDir:            outputDir,
	}

	var missing []string
	for _, p := range result.Files() {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			missing = append(missing, filepath.Base(p))
		}
	}
	if len(missing) > 0 {
		return domain.ExportResult{}, fmt.Errorf("%w: missing %s", domain.ErrExportFailed, strings.Join(missing, ", "))
	}
	return result, nil
}
