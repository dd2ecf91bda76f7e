// Package parsers loads sales order exports into in-memory datasets.
//
// Delimited text files (CSV, TSV, ...) and XLSX workbooks are supported.
// Loading tolerates the quirks of spreadsheet exports:
//   - a UTF-8 byte order mark before the first header
//   - Windows-1252 encoded files
//   - short rows, whose missing cells read as absent values
//   - blank rows, which are skipped
//   - currency text such as "$1,234.50" in configured columns
//
// Example usage:
//
//	config := DefaultLoadConfig()
//	config.CurrencyColumns = []string{"Total Price"}
//	ds, stats, err := Load(ctx, "2025 YTD.csv", config)
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"sales-reconciliation-tool/pkg/errors"
)

const utf8BOM = "\ufeff"

// recordSource yields raw records one at a time. Next returns io.EOF after
// the last record.
type recordSource interface {
	Next() (record []string, line int, err error)
	Close() error
}

// checkFile maps stat failures onto file errors
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
		return errors.FileError(errors.CodeDirectoryError, path, err)
	}
	if info.IsDir() {
		return errors.FileError(errors.CodeDirectoryError, path, fmt.Errorf("%s is a directory", path))
	}
	return nil
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func openSource(path string, config *LoadConfig) (recordSource, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	if isWorkbook(path) {
		source, err := openWorkbook(path, config.Sheet)
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	source, err := openDelimited(path, config)
	if err != nil {
		return nil, err
	}
	return source, nil
}

// delimitedSource reads CSV-like files
type delimitedSource struct {
	file   *os.File
	reader *csv.Reader
}

func openDelimited(path string, config *LoadConfig) (*delimitedSource, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	var input io.Reader = file
	if strings.EqualFold(config.Encoding, EncodingWindows1252) {
		input = transform.NewReader(file, charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(input)
	reader.Comma = config.Delimiter
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	return &delimitedSource{file: file, reader: reader}, nil
}

func (s *delimitedSource) Next() ([]string, int, error) {
	record, err := s.reader.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := s.reader.FieldPos(0)
	return record, line, nil
}

func (s *delimitedSource) Close() error {
	return s.file.Close()
}

// workbookSource reads the rows of one XLSX worksheet
type workbookSource struct {
	rows [][]string
	next int
}

func openWorkbook(path, sheet string) (*workbookSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, fmt.Errorf("workbook has no sheets"))
	}

	if sheet == "" {
		sheet = sheets[0]
	} else if !containsString(sheets, sheet) {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "sheet", sheet, nil).
			WithContext("available_sheets", strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	return &workbookSource{rows: rows}, nil
}

func (s *workbookSource) Next() ([]string, int, error) {
	if s.next >= len(s.rows) {
		return nil, 0, io.EOF
	}
	record := s.rows[s.next]
	s.next++
	return record, s.next, nil
}

func (s *workbookSource) Close() error {
	return nil
}

// cleanHeaders trims header names, strips a byte order mark and applies aliases
func cleanHeaders(headers []string, config *LoadConfig) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		cleaned[i] = config.canonical(strings.TrimSpace(header))
	}
	return cleaned
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
