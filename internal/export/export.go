// Package export writes a ranking to disk in a format chosen by file
// extension.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/lacquerai/rankview/internal/ranking"
	"github.com/stoewer/go-strcase"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format is a supported export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatXLSX, FormatJSON, FormatYAML}

// FormatFromPath picks the format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (supported: csv, xlsx, json, yaml)", ext)
}

// DefaultFileName returns a file name such as "top10-intj.csv".
func DefaultFileName(metric string, n int, format Format) string {
	return fmt.Sprintf("top%d-%s.%s", n, strcase.KebabCase(metric), format)
}

// WriteFile writes r to path in the format implied by its extension.
func WriteFile(r *ranking.Ranking, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(r, f, format); err != nil {
		f.Close()
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	return f.Close()
}

// Write encodes r to w.
func Write(r *ranking.Ranking, w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(r, w)
	case FormatXLSX:
		return writeXLSX(r, w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// Frame converts r into a table with Rank, identifier and metric columns.
func Frame(r *ranking.Ranking) dataframe.DataFrame {
	ranks := make([]int, len(r.Rows))
	ids := make([]string, len(r.Rows))
	scores := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		ranks[i] = row.Rank
		ids[i] = row.Identifier
		scores[i] = strconv.FormatFloat(row.Score, 'f', -1, 64)
	}

	return dataframe.New(
		series.New(ranks, series.Int, "Rank"),
		series.New(ids, series.String, r.Identifier),
		series.New(scores, series.String, r.Metric),
	)
}

func writeCSV(r *ranking.Ranking, w io.Writer) error {
	df := Frame(r)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}

func writeXLSX(r *ranking.Ranking, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Top " + r.Metric
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"Rank", r.Identifier, r.Metric}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return err
	}

	for i, row := range r.Rows {
		line := i + 2
		values := []interface{}{row.Rank, row.Identifier, row.Score}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, line)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}
