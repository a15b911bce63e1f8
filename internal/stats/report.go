package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lacquerai/rankview/internal/style"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteText prints the report as plain sections and tables.
func (r *Report) WriteText(w io.Writer) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "=== Data info ===\n")
	if r.Source != "" {
		p.Fprintf(w, "Source:  %s\n", r.Source)
	}
	p.Fprintf(w, "Rows:    %d\n", r.Rows)
	p.Fprintf(w, "Columns: %d\n\n", r.Columns)

	summaryRows := make([][]string, len(r.Summary))
	for i, c := range r.Summary {
		summaryRows[i] = []string{c.Name, c.Type, p.Sprintf("%d", c.NonNull), p.Sprintf("%d", c.Missing)}
	}
	if err := style.Table(w, []string{"Column", "Type", "Non-null", "Missing"}, summaryRows); err != nil {
		return err
	}

	if len(r.Describe) > 1 {
		p.Fprintf(w, "\n=== Descriptive statistics ===\n")
		if err := style.Table(w, r.Describe[0], formatCells(p, r.Describe[1:])); err != nil {
			return err
		}
	}

	if len(r.Head) > 1 {
		p.Fprintf(w, "\n=== First %d rows ===\n", len(r.Head)-1)
		if err := style.Table(w, r.Head[0], r.Head[1:]); err != nil {
			return err
		}
	}

	if len(r.ReportMeans) > 0 {
		p.Fprintf(w, "\n=== Mean %s by %s ===\n", r.ReportColumn, r.GroupColumn)
		rows := make([][]string, len(r.ReportMeans))
		for i, g := range r.ReportMeans {
			rows[i] = []string{g.Key, p.Sprintf("%.2f", g.Mean)}
		}
		if err := style.Table(w, []string{r.GroupColumn, "Mean " + r.ReportColumn}, rows); err != nil {
			return err
		}
	}

	return nil
}

// formatCells rounds numeric cells to two decimals with digit grouping and
// leaves everything else untouched.
func formatCells(p *message.Printer, rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				out[i][j] = p.Sprintf("%.2f", v)
			} else {
				out[i][j] = cell
			}
		}
	}
	return out
}

// String renders the report as text.
func (r *Report) String() string {
	var b strings.Builder
	if err := r.WriteText(&b); err != nil {
		return fmt.Sprintf("report: %v", err)
	}
	return b.String()
}
