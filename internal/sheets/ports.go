package sheets

import (
	"context"

	"treasurydash/internal/core"
)

// Ports for outbound adapters.
type (
	// RangeReader fetches raw cell matrices from a spreadsheet.
	RangeReader interface {
		// ReadRange returns the values of a single A1 range.
		ReadRange(ctx context.Context, spreadsheetID, a1Range string) (core.RangeValues, error)

		// BatchRead returns values for several ranges of the same
		// spreadsheet in one round trip, in request order.
		BatchRead(ctx context.Context, spreadsheetID string, a1Ranges []string) ([]core.RangeValues, error)
	}
)
