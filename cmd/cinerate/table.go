package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableColumn describes one output column. Format, when set, rewrites the
// rendered cell (used to tint rating scores).
type tableColumn struct {
	Header string
	Align  columnAlignment
	Format func(string) string
}

func renderTable(columns []tableColumn, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header[i] = col.Header
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		}
		if col.Align == alignRight {
			cfg.Align = text.AlignRight
		}
		if col.Format != nil {
			format := col.Format
			cfg.Transformer = func(val any) string {
				return format(fmt.Sprint(val))
			}
		}
		configs = append(configs, cfg)
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
