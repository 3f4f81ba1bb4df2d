// Package dataset reads resumes stored one per row in a CSV or XLSX table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-matcher/internal/apperr"
)

// DefaultTextColumn is the column holding resume text when none is configured.
const DefaultTextColumn = "Resume"

// Options selects the columns to read.
type Options struct {
	// TextColumn holds the resume text. Defaults to DefaultTextColumn.
	TextColumn string `mapstructure:"text-column"`
	// NameColumn optionally holds the candidate name.
	NameColumn string `mapstructure:"name-column"`
	// Sheet selects an XLSX sheet. Defaults to the first one.
	Sheet string `mapstructure:"sheet"`
	// MaxRows limits the number of data rows read; 0 reads all of them.
	MaxRows int `mapstructure:"max-rows"`
}

// Record is one data row.
type Record struct {
	// Row is the 1-based data row number, not counting the header.
	Row  int
	Name string
	Text string
}

// Source names the record for logs and results.
func (r Record) Source(path string) string {
	return fmt.Sprintf("%s#row%d", filepath.Base(path), r.Row)
}

// Load reads the table at path. A missing text or name column is a
// configuration error listing the available columns. Rows with empty text are
// kept so callers can report them individually.
func Load(path string, opts Options) ([]Record, error) {
	if strings.TrimSpace(opts.TextColumn) == "" {
		opts.TextColumn = DefaultTextColumn
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Extraction(path, "file not found", nil)
		}
		return nil, apperr.Extraction(path, "unreadable file", err)
	}

	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path, opts.Sheet)
	default:
		return nil, apperr.Extraction(path, fmt.Sprintf("unsupported dataset type %q (want .csv or .xlsx)", ext), nil)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, apperr.Configuration(path, "dataset has no header row")
	}

	header := rows[0]
	textIdx, err := columnIndex(header, opts.TextColumn)
	if err != nil {
		return nil, err
	}
	nameIdx := -1
	if strings.TrimSpace(opts.NameColumn) != "" {
		if nameIdx, err = columnIndex(header, opts.NameColumn); err != nil {
			return nil, err
		}
	}

	data := rows[1:]
	if opts.MaxRows > 0 && len(data) > opts.MaxRows {
		data = data[:opts.MaxRows]
	}
	if len(data) == 0 {
		return nil, apperr.Configuration(path, "no resumes found")
	}

	records := make([]Record, 0, len(data))
	for i, row := range data {
		records = append(records, Record{
			Row:  i + 1,
			Name: strings.TrimSpace(cell(row, nameIdx)),
			Text: strings.TrimSpace(cell(row, textIdx)),
		})
	}
	return records, nil
}

// columnIndex finds name in header, first exactly and then ignoring case and
// surrounding spaces.
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i, nil
		}
	}
	return -1, apperr.Configuration(name, fmt.Sprintf("column not found (available: %s)", strings.Join(header, ", ")))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Extraction(path, "unreadable file", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Extraction(path, "malformed csv", err)
		}
		rows = append(rows, rec)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperr.Extraction(path, "unreadable xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Configuration(path, "workbook has no sheets")
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperr.Configuration(sheet, fmt.Sprintf("sheet not found (available: %s)", strings.Join(sheets, ", ")))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.Extraction(path, fmt.Sprintf("reading sheet %q", sheet), err)
	}
	return rows, nil
}
