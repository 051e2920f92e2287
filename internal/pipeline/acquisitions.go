package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pga/internal"
	"pga/internal/util"
)

const (
	annexAcquisitions  = "Anexo 1 – Lista de aquisições"
	headerItem         = "Item"
	headerProjectRef   = "Projeto"
	acquisitionColumns = 5
)

// ExtractAcquisitions reads the itemized procurement tables of Annex 1. Only
// rows whose first cell is a plain integer are items; a malformed item row is
// logged and skipped.
func ExtractAcquisitions(pages []internal.Page, logger *zap.Logger) []internal.AcquisitionItem {
	out := []internal.AcquisitionItem{}
	for _, page := range pages {
		if !strings.Contains(page.Text, annexAcquisitions) {
			continue
		}
		for _, table := range page.Tables {
			if !isAcquisitionTable(table) {
				continue
			}
			for _, row := range table {
				if !util.IsDigits(row.Cell(0)) {
					continue
				}
				item, err := acquisitionItem(row)
				if err != nil {
					logger.Warn("acquisition row skipped",
						zap.Int("page", page.Number),
						zap.Strings("row", row),
						zap.Error(err),
					)
					continue
				}
				out = append(out, item)
			}
		}
	}
	return out
}

func isAcquisitionTable(table internal.Table) bool {
	if len(table) == 0 {
		return false
	}
	header := table[0]
	return strings.Contains(header.Cell(0), headerItem) && strings.Contains(header.Cell(1), headerProjectRef)
}

func acquisitionItem(row internal.Row) (internal.AcquisitionItem, error) {
	if len(row) < acquisitionColumns {
		return internal.AcquisitionItem{}, fmt.Errorf("expected %d cells, got %d", acquisitionColumns, len(row))
	}

	number, err := strconv.Atoi(row[0])
	if err != nil {
		return internal.AcquisitionItem{}, fmt.Errorf("item number: %w", err)
	}

	quantity := 0
	if util.IsDigits(row[3]) {
		// Out of range quantities fall back to zero like any other unparsable cell.
		if n, err := strconv.Atoi(row[3]); err == nil {
			quantity = n
		}
	}

	return internal.AcquisitionItem{
		ItemNumber:          number,
		ProjectReference:    util.CollapseNewlines(row[1]),
		Description:         strings.TrimSpace(row[2]),
		Quantity:            quantity,
		EstimatedTotalPrice: util.ParseCurrency(row[4]),
	}, nil
}
