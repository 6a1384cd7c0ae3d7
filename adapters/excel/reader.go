package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"triagelens/domain/table"
	"triagelens/internal"
	"triagelens/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ErrEmptySheet is the message reported when the first sheet has no data rows
const ErrEmptySheet = "empty sheet"

var logger = internal.DefaultLogger.With("DataReader")

// Decode reads the first sheet of an xlsx workbook held in memory. Row 1 is the
// header; every later non-blank row becomes a table row. Later sheets are ignored.
func Decode(source string, data []byte) (rs *table.RowSet, err error) {
	defer func() {
		// excelize can panic on some malformed archives
		if r := recover(); r != nil {
			rs, err = nil, errors.ParseError(fmt.Sprintf("failed to read workbook: %v", r))
		}
	}()

	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to open workbook: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError("workbook has no sheets")
	}
	first := sheets[0]

	rows, err := f.GetRows(first, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read sheet %s: %v", first, err))
	}
	logger.Debug("%s: sheet %q read in %.2fms (%d rows)",
		source, first, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return buildRowSet(source, rows)
}

// DataReader handles reading Excel and CSV files from disk
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into a RowSet named after the file's base name
func (r *DataReader) ReadData() (*table.RowSet, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file %s: %w", strings.ToUpper(r.fileType), r.filePath, err)
	}

	source := filepath.Base(r.filePath)
	if r.fileType == "csv" {
		return DecodeCSV(source, data)
	}
	return Decode(source, data)
}

// DecodeCSV applies the workbook rules to comma separated text
func DecodeCSV(source string, data []byte) (*table.RowSet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read CSV: %v", err))
	}
	return buildRowSet(source, rows)
}

// buildRowSet converts raw string rows into a RowSet
func buildRowSet(source string, rows [][]string) (*table.RowSet, error) {
	if len(rows) == 0 {
		return nil, errors.ParseError(ErrEmptySheet)
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]table.Row, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		width := len(row)
		if width > len(headers) {
			width = len(headers)
		}
		cells := make([]table.Cell, width)
		for j := 0; j < width; j++ {
			cells[j] = table.Parse(row[j])
		}
		dataRows = append(dataRows, table.NewRow(cells...))
	}

	if len(dataRows) == 0 {
		return nil, errors.ParseError(ErrEmptySheet)
	}

	logger.Debug("%s processed (%d columns, %d rows)", source, len(headers), len(dataRows))
	return table.NewRowSet(source, headers, dataRows), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
