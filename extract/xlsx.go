package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx flattens every sheet of an .xlsx payload into tab-separated
// rows, each sheet prefixed with a "--- name ---" header.
func extractXlsx(content []byte) Result {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Result{Status: StatusCorrupt, Err: err}
	}
	defer workbook.Close()

	var parts []string
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return Result{Status: StatusCorrupt, Err: err}
		}

		parts = append(parts, "--- "+sheet+" ---")
		for _, row := range rows {
			parts = append(parts, strings.Join(row, "\t"))
		}
	}

	return Result{Status: StatusOK, Text: strings.TrimSpace(strings.Join(parts, "\n"))}
}
