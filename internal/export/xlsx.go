// Package export renders extraction results into the secondary output
// formats: an Excel workbook and an HTML preview.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

const (
	questionsSheet = "Questions"
	statsSheet     = "Stats"
)

// Workbook builds an xlsx with one row per question plus an aggregate stats
// sheet.
func Workbook(questions []segment.Question, stats segment.Stats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", questionsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Number", "Stem", "Options", "Confidence", "Low Quality", "Page", "Column"}
	if err := setRow(f, questionsSheet, 1, header); err != nil {
		return nil, err
	}
	for i, q := range questions {
		row := []any{
			q.Number,
			q.Stem,
			joinOptions(q.Options),
			q.Confidence,
			q.LowQuality,
			q.Page,
			q.Column,
		}
		if err := setRow(f, questionsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, fmt.Errorf("add stats sheet: %w", err)
	}
	statRows := [][]any{
		{"Total Pages", stats.TotalPages},
		{"Questions Found", stats.QuestionsFound},
		{"Low Quality Regions", stats.LowQualityRegions},
	}
	for i, row := range statRows {
		if err := setRow(f, statsSheet, i+1, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func joinOptions(opts []segment.Option) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		parts = append(parts, fmt.Sprintf("%s. %s", o.Label, o.Text))
	}
	return strings.Join(parts, " | ")
}
