// Package rawimport turns uploaded GSTR-2A/2B export files into raw rows.
package rawimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
)

// Result is a parsed export.
type Result struct {
	Sheet   string
	Headers []string
	Rows    []domain.RawRow
	// Unmapped lists headers no column of the profile accepts, with the closest
	// accepted header when one is near enough.
	Unmapped []HeaderSuggestion
}

// Parse reads an export of the given type and keys each data row by its header.
func Parse(r io.Reader, fileType domain.FileType, profile ledger.SourceProfile) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rawimport.Parse: %w", err)
	}

	var (
		sheet string
		grid  [][]string
	)
	switch fileType {
	case domain.FileTypeXLSX:
		sheet, grid, err = readXLSX(data)
	case domain.FileTypeXLS:
		sheet, grid, err = readXLS(data)
	case domain.FileTypeCSV:
		grid, err = readCSV(data)
	default:
		return nil, domain.ErrUnsupportedFileType
	}
	if err != nil {
		return nil, err
	}

	res, err := buildRows(grid, profile)
	if err != nil {
		return nil, err
	}
	res.Sheet = sheet
	return res, nil
}

// preferredSheets are the tabs that carry invoice lines in portal downloads.
var preferredSheets = []string{"b2b", "b2b invoices"}

func pickSheet(names []string) string {
	for _, want := range preferredSheets {
		for _, n := range names {
			if strings.EqualFold(strings.TrimSpace(n), want) {
				return n
			}
		}
	}
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func readXLSX(data []byte) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return "", nil, domain.ErrUnreadableFile
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	return sheet, rows, nil
}

func readXLS(data []byte) (string, [][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		// Portals sometimes serve xlsx bytes under an .xls name.
		if sheet, grid, errX := readXLSX(data); errX == nil {
			return sheet, grid, nil
		}
		return "", nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}

	sheets := wb.GetSheets()
	names := make([]string, len(sheets))
	for i := range sheets {
		names[i] = sheets[i].GetName()
	}
	name := pickSheet(names)
	for i := range sheets {
		if sheets[i].GetName() != name {
			continue
		}
		var grid [][]string
		for _, row := range sheets[i].GetRows() {
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			grid = append(grid, cells)
		}
		return name, grid, nil
	}
	return "", nil, domain.ErrUnreadableFile
}

// readCSV accepts UTF-8 (with or without BOM) and falls back to Windows-1252,
// which is what spreadsheet tools on Windows write by default.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = sniffDelimiter(data)

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	return grid, nil
}

// sniffDelimiter picks ';' or tab when the first line has more of them than commas.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, count := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}
