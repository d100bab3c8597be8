package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable lays rows out under the rounded style shared by every command.
// Columns whose populated cells are all counts or ratios (disc positions,
// track totals, match scores) are right-aligned; everything else stays left.
func renderTable(headers []string, rows [][]string) string {
	width := len(headers)
	if width == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(padRow(headers, width))
	for _, row := range rows {
		tw.AppendRow(padRow(row, width))
	}
	tw.SetColumnConfigs(numericColumnConfigs(width, rows))

	return tw.Render()
}

func padRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func numericColumnConfigs(width int, rows [][]string) []table.ColumnConfig {
	var configs []table.ColumnConfig
	for col := 0; col < width; col++ {
		populated, numeric := 0, 0
		for _, row := range rows {
			if col >= len(row) || row[col] == "" {
				continue
			}
			populated++
			if isNumericCell(row[col]) {
				numeric++
			}
		}
		if populated == 0 || numeric < populated {
			continue
		}
		configs = append(configs, table.ColumnConfig{
			Number:      col + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	return configs
}

// isNumericCell accepts digit runs plus the separators the commands emit in
// numeric columns: "2", "1/4", "0.92".
func isNumericCell(cell string) bool {
	digits := false
	for _, r := range cell {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '/' || r == '.':
		default:
			return false
		}
	}
	return digits
}
