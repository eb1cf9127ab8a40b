package process

import (
	"treasurydash/internal/core"
)

// ActionColumns maps treasury-action sheet headers to record fields.
type ActionColumns struct {
	Date        string
	Description string
	BTCAmount   string
	BTCTotal    string
	CostBasis   string
	Note        string
}

// DefaultActionColumns matches the header row the treasury sheets share.
func DefaultActionColumns() ActionColumns {
	return ActionColumns{
		Date:        "Date",
		Description: "Description",
		BTCAmount:   "BTC Amount",
		BTCTotal:    "BTC Total",
		CostBasis:   "Cost Basis (USD)",
		Note:        "Note",
	}
}

// TreasuryActions maps raw rows into typed action records. Rows missing a
// parsable date or a non-empty description are excluded; numeric fields
// are best-effort and zero when unparsable. Order of the input is kept.
func TreasuryActions(values [][]any, cols ActionColumns) []core.TreasuryAction {
	if len(values) < 2 {
		return nil
	}
	index := headerIndex(values[0])
	dateIdx, hasDate := index[cols.Date]
	descIdx, hasDesc := index[cols.Description]
	if !hasDate || !hasDesc {
		return nil
	}

	out := make([]core.TreasuryAction, 0, len(values)-1)
	for _, raw := range values[1:] {
		date, ok := core.ParseCellDate(cellAt(raw, dateIdx))
		if !ok {
			continue
		}
		desc := core.CellString(cellAt(raw, descIdx))
		if desc == "" {
			continue
		}

		action := core.TreasuryAction{Date: date, Description: desc}
		if idx, present := index[cols.BTCAmount]; present {
			action.BTCAmount, _ = core.ParseNumeric(cellAt(raw, idx))
		}
		if idx, present := index[cols.BTCTotal]; present {
			action.BTCTotal, _ = core.ParseNumeric(cellAt(raw, idx))
		}
		if idx, present := index[cols.CostBasis]; present {
			action.CostBasis, _ = core.ParseNumeric(cellAt(raw, idx))
		}
		if idx, present := index[cols.Note]; present {
			action.Note = core.CellString(cellAt(raw, idx))
		}
		out = append(out, action)
	}
	return out
}
