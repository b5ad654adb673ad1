package result

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/task"

	"github.com/jung-kurt/gofpdf"
)

type Exporter struct{ mgr *task.Manager }

func NewExporter(mgr *task.Manager) *Exporter { return &Exporter{mgr: mgr} }

func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	all, err := e.mgr.List(ctx)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(all, "", "  ")
	case "csv":
		var b strings.Builder
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "title", "description", "completed", "priority", "created_at", "updated_at"})
		for _, t := range all {
			_ = w.Write([]string{
				fmt.Sprint(t.ID), t.Title, t.Description,
				fmt.Sprint(t.Completed), t.Priority,
				t.CreatedAt.Format("2006-01-02 15:04:05"),
				t.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		w.Flush()
		return []byte(b.String()), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Task Report")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		for _, t := range all {
			status := "open"
			if t.Completed {
				status = "done"
			}
			line := fmt.Sprintf("#%d [%s] %s (%s) created=%s", t.ID, t.Priority, t.Title, status, t.CreatedAt.Format("2006-01-02"))
			pdf.MultiCell(0, 6, line, "0", "L", false)
		}
		var buf strings.Builder
		if err := pdf.Output(io.Writer(&buf)); err != nil {
			return nil, err
		}
		return []byte(buf.String()), nil
	default:
		return nil, task.ValidationError(fmt.Sprintf("unknown format %s", format))
	}
}
