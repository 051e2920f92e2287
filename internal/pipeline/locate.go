package pipeline

import (
	"strings"

	"pga/internal"
)

// FindTableByHeader returns the first table on page whose top-left cell
// contains header, or nil.
func FindTableByHeader(page internal.Page, header string) internal.Table {
	for _, table := range page.Tables {
		if len(table) == 0 || len(table[0]) == 0 {
			continue
		}
		if strings.Contains(table[0][0], header) {
			return table
		}
	}
	return nil
}

// ValueFromTable returns the first non-empty cell to the right of a row label.
// Rows whose first cell contains label but carry no value are passed over.
func ValueFromTable(table internal.Table, label string) string {
	for _, row := range table {
		if row.Cell(0) == "" || !strings.Contains(row[0], label) {
			continue
		}
		for _, cell := range row[1:] {
			if cell != "" {
				return strings.TrimSpace(cell)
			}
		}
	}
	return ""
}

type captureState int

const (
	captureIdle captureState = iota
	captureActive
	captureDone
)

// MultilineValue collects the text between the row starting with startLabel
// and the row starting with stopLabel. The start row contributes its second
// cell; every row after it contributes its first non-empty cell.
func MultilineValue(table internal.Table, startLabel, stopLabel string) string {
	state := captureIdle
	var lines []string

	for _, row := range table {
		label := strings.TrimSpace(row.Cell(0))

		switch {
		case state == captureDone, len(row) == 0:
		case state == captureIdle && row[0] == "":
		case strings.HasPrefix(label, startLabel):
			state = captureActive
			if seed := row.Cell(1); seed != "" {
				lines = append(lines, strings.TrimSpace(seed))
			}
		case state == captureActive && strings.HasPrefix(label, stopLabel):
			state = captureDone
		case state == captureActive:
			if cell, ok := firstNonEmpty(row); ok {
				lines = append(lines, strings.TrimSpace(cell))
			}
		}
	}

	return strings.Join(lines, "\n")
}

func firstNonEmpty(row internal.Row) (string, bool) {
	for _, cell := range row {
		if cell != "" {
			return cell, true
		}
	}
	return "", false
}
