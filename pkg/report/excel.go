// Package report renders scan results into an .xlsx workbook: a Summary
// sheet plus one sheet per successfully queried entity.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"xasscan/pkg/core"
	"xasscan/pkg/permission"
)

const (
	SummarySheet   = "Summary"
	maxSheetName   = 31
	columnWidth    = 20
	writableColour = "FFC7CE"
	errorSentinel  = "Error"
)

// DefaultLimit is the default number of records shown per entity sheet.
const DefaultLimit = 100

var summaryHeader = []interface{}{"Entity", "Object Count", "Non-readonly Value Fields"}

// Data is everything the workbook is built from.
type Data struct {
	Summaries []core.EntitySummary
	// Records holds the full record set of each entity.
	Records map[string][]core.Record
	// Writable is the per-entity column writability map, computed over
	// the full record sets. Entities missing from it are aggregated on
	// the fly.
	Writable map[string]map[string]bool
}

// SanitizeSheetName removes the characters Excel forbids in sheet names
// and caps the result at 31 characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '*', '/', '\\', '?', ':':
			return -1
		}
		return r
	}, name)
	return truncate(name, maxSheetName)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// titles hands out unique sheet titles. Excel compares them
// case-insensitively.
type titles map[string]bool

func (t titles) claim(entity string) string {
	base := strings.Trim(SanitizeSheetName(entity), "'")
	if base == "" {
		base = "Sheet"
	}
	title := base
	for i := 1; t[strings.ToLower(title)]; i++ {
		suffix := strconv.Itoa(i)
		title = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	t[strings.ToLower(title)] = true
	return title
}

type styles struct {
	bold     int
	writable int
}

func newStyles(f *excelize.File) (styles, error) {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles{}, err
	}
	writable, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{writableColour}},
	})
	if err != nil {
		return styles{}, err
	}
	return styles{bold: bold, writable: writable}, nil
}

// Build creates the workbook in memory. At most limit records are
// written per entity sheet; the caller owns the returned file and must
// Close it.
func Build(data Data, limit int) (*excelize.File, error) {
	if limit < 1 {
		limit = DefaultLimit
	}

	f := excelize.NewFile()
	if err := build(f, data, limit); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Save builds the workbook and writes it to path.
func Save(path string, data Data, limit int) error {
	f, err := Build(data, limit)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func build(f *excelize.File, data Data, limit int) error {
	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return err
	}
	if err := writeSummary(f, st, data.Summaries); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	used := titles{strings.ToLower(SummarySheet): true}
	for _, summary := range data.Summaries {
		if summary.Failed {
			continue
		}
		records := data.Records[summary.Entity]
		writable, ok := data.Writable[summary.Entity]
		if !ok {
			writable = permission.Writable(records)
		}

		title := used.claim(summary.Entity)
		if err := writeEntity(f, st, title, records, writable, limit); err != nil {
			return fmt.Errorf("sheet %q: %w", title, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, st styles, summaries []core.EntitySummary) error {
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "C1", st.bold); err != nil {
		return err
	}

	for i, summary := range summaries {
		row := []interface{}{summary.Entity, summary.Objects, summary.WritableFields}
		if summary.Failed {
			detail := errorSentinel
			if summary.Error != "" {
				detail = summary.Error
			}
			row = []interface{}{summary.Entity, errorSentinel, detail}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeEntity(f *excelize.File, st styles, sheet string, records []core.Record, writable map[string]bool, limit int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if len(records) == 0 {
		return f.SetCellValue(sheet, "A1", "No data available")
	}

	columns := permission.Columns(records)
	header := make([]interface{}, len(columns))
	for i, column := range columns {
		header[i] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, column := range columns {
		style := st.bold
		if writable[column] {
			style = st.writable
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	shown := records
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for r, record := range shown {
		row := make([]interface{}, len(columns))
		for i, column := range columns {
			row[i] = ""
			if attr, ok := record[column]; ok {
				row[i] = attr.Value.Cell()
			}
		}
		start, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, start, &row); err != nil {
			return err
		}
		for i, column := range columns {
			if attr, ok := record[column]; ok && !attr.ReadOnly {
				cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
				if err := f.SetCellStyle(sheet, cell, cell, st.bold); err != nil {
					return err
				}
			}
		}
	}

	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetColWidth(sheet, "A", last, columnWidth); err != nil {
		return err
	}

	if len(records) > limit {
		cell, _ := excelize.CoordinatesToCellName(1, len(shown)+3)
		note := fmt.Sprintf("... Only first %d of %d objects shown.", limit, len(records))
		if err := f.SetCellValue(sheet, cell, note); err != nil {
			return err
		}
	}
	return nil
}
