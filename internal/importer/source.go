package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are not CSV, JSON or
// XLSX.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Format is the encoding of an import file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return "", fmt.Errorf("%w: %q is a legacy Excel workbook, save it as .xlsx", ErrUnsupportedFormat, name)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ReadRows reads a single collection. Spreadsheets contribute their first
// sheet.
func ReadRows(format Format, r io.Reader) ([]Row, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatXLSX:
		book, err := ReadWorkbook(r)
		if err != nil {
			return nil, err
		}
		if len(book.Order) == 0 {
			return nil, nil
		}
		return book.Sheets[book.Order[0]], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ReadCSV reads a CSV file whose first record is the header. Blank lines
// are skipped and values are typed with Infer.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return tableRows(records[0], records[1:]), nil
}

// ReadJSON reads a JSON array of objects. Numbers stay numbers, strings
// stay text, and nested values are kept as their JSON text.
func ReadJSON(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		return nil, fmt.Errorf("failed to read json: expected an array of objects: %w", err)
	}

	rows := make([]Row, 0, len(objects))
	for _, obj := range objects {
		row := make(Row, len(obj))
		for k, v := range obj {
			key := NormalizeHeader(k)
			if _, seen := row[key]; seen || key == "" {
				continue
			}
			row[key] = jsonCell(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func jsonCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case string:
		return Text(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String())
		}
		return Number(f)
	case bool:
		if x {
			return Text("true")
		}
		return Text("false")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Cell{}
		}
		return Text(string(b))
	}
}

// Workbook is every sheet of a spreadsheet, read as rows.
type Workbook struct {
	Order  []string
	Sheets map[string][]Row
}

// Sheet returns the rows of the named sheet, nil when it is absent.
func (w Workbook) Sheet(name string) []Row {
	return w.Sheets[name]
}

// ReadWorkbook reads every sheet of an XLSX file. The first row of each
// sheet is its header; raw cell values are typed with Infer, so dates
// stored as serials come back as numbers.
func ReadWorkbook(r io.Reader) (Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Workbook{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	book := Workbook{Sheets: make(map[string][]Row)}
	for _, name := range f.GetSheetList() {
		table, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return Workbook{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		book.Order = append(book.Order, name)
		if len(table) == 0 {
			book.Sheets[name] = nil
			continue
		}
		book.Sheets[name] = tableRows(table[0], table[1:])
	}
	return book, nil
}

func tableRows(header []string, body [][]string) []Row {
	rows := make([]Row, 0, len(body))
	for _, record := range body {
		if blank(record) {
			continue
		}
		values := make([]Cell, len(record))
		for i, v := range record {
			values[i] = Infer(v)
		}
		rows = append(rows, NewRow(header, values))
	}
	return rows
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteSheet appends a sheet with a header row and one row per record.
func WriteSheet(f *excelize.File, name string, header []string, records [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := rec
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
	}
	return nil
}
