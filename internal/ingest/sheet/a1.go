package sheet

import (
	"fmt"
	"strings"
)

// QuoteSheetName quotes a sheet name for A1 notation, doubling embedded quotes.
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// A1 joins a sheet name and a cell range, e.g. 'Weekly Plan (3/2/2026)'!A:H.
func A1(sheetName, cells string) string {
	return QuoteSheetName(sheetName) + "!" + cells
}

// LogCell returns the column H cell for a 0-based row index.
func LogCell(sheetName string, rowIndex int) string {
	return A1(sheetName, fmt.Sprintf("H%d", rowIndex+1))
}
