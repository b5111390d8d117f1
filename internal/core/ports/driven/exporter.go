package driven

import (
	"context"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// Exporter materialises the three export files from a source document.
// It is treated as a pure function with filesystem side effects.
type Exporter interface {
	// Export writes the export files for sourcePath into outputDir.
	// Fails with an I/O or parse error if the source is missing or malformed.
	Export(ctx context.Context, sourcePath, outputDir string) (domain.ExportResult, error)
}
