package sheets

import (
	"context"

	"github.com/Afatsiawu/FMS/internal/core"
)

// Ports for outbound adapters.
type (
	// ArchiveWriter mirrors a closed year to an external spreadsheet.
	ArchiveWriter interface {
		WriteArchive(ctx context.Context, ap core.ArchivedPeriod) (sheetName string, err error)
	}
)
