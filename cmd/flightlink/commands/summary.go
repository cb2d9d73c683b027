package commands

import (
	"io"
	"time"

	"flightlink-service/internal/domain/entity"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderSummary(w io.Writer, summaries ...*entity.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Phase", "Run", "Rows", "Captured", "Failed", "Lost", "Listings", "Skipped", "Duration"})
	for _, s := range summaries {
		if s == nil {
			continue
		}
		t.AppendRow(table.Row{
			s.Phase,
			s.RunID,
			s.Rows,
			s.Captured,
			s.Failed,
			s.Lost,
			s.Listings,
			s.SkippedItems,
			s.Duration().Round(time.Millisecond),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
