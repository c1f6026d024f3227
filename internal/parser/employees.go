package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
	ErrEmptyWorkbook     = errors.New("workbook has no data")
)

// LoadError is returned when the payroll sheet cannot be read at all.
// It is fatal for the whole run.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load payroll sheet '%s': %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type EmployeeParser struct {
	log     *slog.Logger
	metrics *metrics.Metrics
}

type EmployeeParserIface interface {
	ParseEmployees(ctx context.Context, path string) ([]models.EmployeeRecord, error)
}

func NewEmployeeParser(log *slog.Logger, metrics *metrics.Metrics) EmployeeParserIface {
	return &EmployeeParser{log: log, metrics: metrics}
}

// ParseEmployees reads the sheet at path and returns its rows as normalized records in source order.
// Any failure is returned as a *LoadError.
func (ep *EmployeeParser) ParseEmployees(ctx context.Context, path string) ([]models.EmployeeRecord, error) {
	log := ep.log.With(slog.String("op", "Parser.ParseEmployees"), slog.String("path", path))

	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	rows, err := readRows(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	headerPos := firstNonBlankRow(rows)
	if headerPos < 0 {
		return nil, &LoadError{Path: path, Err: ErrEmptyWorkbook}
	}

	index := columnIndex(rows[headerPos])
	for _, column := range RequiredColumns {
		if _, ok := index[column]; !ok {
			log.WarnContext(ctx, "Required column is missing, default values will be used", "column", column)
			ep.metrics.ColumnsFilled.WithLabelValues(column).Inc()
		}
	}

	var records []models.EmployeeRecord
	for pos := headerPos + 1; pos < len(rows); pos++ {
		row := rows[pos]
		if isBlankRow(row) {
			continue
		}

		records = append(records, ep.parseRecord(ctx, log, pos+1, row, index))
	}

	log.InfoContext(ctx, "Payroll sheet loaded", "records", len(records))

	return records, nil
}

func (ep *EmployeeParser) parseRecord(
	ctx context.Context,
	log *slog.Logger,
	rowNum int,
	row []string,
	index map[string]int,
) models.EmployeeRecord {
	text := func(column string) string {
		pos, ok := index[column]
		if !ok {
			return ""
		}
		return cellValue(row, pos)
	}

	number := func(column string) decimal.Decimal {
		raw := text(column)
		if raw == "" {
			return decimal.Zero
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			log.DebugContext(ctx, "Value is not numeric, using zero", "row", rowNum, "column", column, "value", raw)
			ep.metrics.ValuesCoerced.WithLabelValues(column).Inc()
			return decimal.Zero
		}
		return value
	}

	return models.EmployeeRecord{
		Row:         rowNum,
		EmployeeID:  text(ColumnEmployeeID),
		Name:        text(ColumnName),
		BasicSalary: number(ColumnBasicSalary),
		Allowance:   number(ColumnAllowance),
		Deductions:  number(ColumnDeductions),
		Email:       text(ColumnEmail),
	}
}

func readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to access file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(path)
	case ".xls":
		return readLegacyWorkbook(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, ext)
	}
}

// readWorkbook returns the raw cell values of the first sheet, so number formats
// like thousands separators do not leak into the coercion step.
func readWorkbook(path string) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptyWorkbook
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheetName, err)
	}

	return rows, nil
}

func readLegacyWorkbook(path string) ([][]string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrEmptyWorkbook
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyWorkbook
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for pos := 0; pos <= int(sheet.MaxRow); pos++ {
		row := sheet.Row(pos)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		cells := make([]string, row.LastCol())
		for col := range cells {
			cells[col] = row.Col(col)
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", readErr)
		}
		rows = append(rows, record)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	return rows, nil
}

func firstNonBlankRow(rows [][]string) int {
	for pos, row := range rows {
		if !isBlankRow(row) {
			return pos
		}
	}

	return -1
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
