package analytics

import (
	"bytes"
	"encoding/csv"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"llm-monitor/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	ColumnTimestamp = "timestamp"
	ColumnCPU       = "cpu_usage"
	ColumnMemory    = "memory_usage"
	ColumnDisk      = "disk_usage"
)

var RequiredColumns = []string{ColumnTimestamp, ColumnCPU, ColumnMemory, ColumnDisk}

type Format int

const (
	FormatXLSX Format = iota
	FormatCSV
	FormatLegacyXLS
	FormatUnsupported
)

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM      = "\uFEFF"
)

// DetectFormat picks a reader from the file name, falling back to content
// sniffing for uploads without an extension.
func DetectFormat(filename string, data []byte) Format {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case bytes.HasPrefix(data, oleSignature):
		return FormatLegacyXLS
	case ext == ".csv" || ext == ".txt":
		return FormatCSV
	case bytes.HasPrefix(data, zipSignature):
		return FormatXLSX
	}

	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	case "":
		if utf8.Valid(data) && bytes.IndexByte(data, 0) < 0 {
			return FormatCSV
		}
	}
	return FormatUnsupported
}

// ParseSamples decodes an uploaded sheet into typed samples. A blank metric
// cell is kept as NaN so aggregation can skip it.
func ParseSamples(filename string, data []byte) ([]models.MetricSample, error) {
	var (
		rows [][]string
		err  error
	)

	switch DetectFormat(filename, data) {
	case FormatLegacyXLS:
		return nil, parseErrorf("legacy .xls workbooks are not supported, save the file as .xlsx")
	case FormatUnsupported:
		return nil, parseErrorf("unsupported file format %q, upload an .xlsx or .csv file", filepath.Ext(filename))
	case FormatCSV:
		rows, err = readCSV(data)
	default:
		rows, err = readXLSX(data)
	}
	if err != nil {
		return nil, err
	}

	return samplesFromRows(rows)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, parseErrorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErrorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, parseErrorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, parseErrorf("failed to read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

func samplesFromRows(rows [][]string) ([]models.MetricSample, error) {
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Err: ErrMissingColumns, Missing: missing}
	}

	samples := make([]models.MetricSample, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		line := i + 1
		sample := models.MetricSample{Timestamp: cell(row, index[ColumnTimestamp])}

		var err error
		if sample.CPUUsage, err = numericCell(row, index[ColumnCPU], ColumnCPU, line); err != nil {
			return nil, err
		}
		if sample.MemoryUsage, err = numericCell(row, index[ColumnMemory], ColumnMemory, line); err != nil {
			return nil, err
		}
		if sample.DiskUsage, err = numericCell(row, index[ColumnDisk], ColumnDisk, line); err != nil {
			return nil, err
		}

		samples = append(samples, sample)
	}

	return samples, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func numericCell(row []string, i int, column string, line int) (float64, error) {
	raw := cell(row, i)
	if raw == "" {
		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || strings.ContainsAny(raw, "xX") {
		return 0, parseErrorf("row %d: column %s: %q is not a number", line, column, raw)
	}
	return v, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
