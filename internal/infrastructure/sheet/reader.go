package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"batchsend/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Load reads credentials from the first sheet of the workbook at path.
// A missing file or a table without valid rows yields an empty slice.
func Load(path string) ([]domain.Credential, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Error("File not found", "path", path)
			return []domain.Credential{}, nil
		}
		return []domain.Credential{}, err
	}

	rows, err := ReadRows(path)
	if err != nil {
		return []domain.Credential{}, fmt.Errorf("read %s: %w", path, err)
	}

	credentials := domain.ValidCredentials(rows)
	if len(credentials) == 0 {
		slog.Error("No valid address/privatekey pairs found", "path", path, "rows", len(rows))
		return credentials, nil
	}
	if dropped := len(rows) - len(credentials); dropped > 0 {
		slog.Warn("Skipped incomplete rows", "path", path, "skipped", dropped)
	}
	return credentials, nil
}

// ReadRows returns every data row of the first table in the file, keyed by
// header name. CSV files are read as a single table.
func ReadRows(path string) ([]domain.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	default:
		return readWorkbook(path)
	}
}

func readWorkbook(path string) ([]domain.Row, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	table, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return rowsFromTable(table), nil
}

func readCSV(path string) ([]domain.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var table [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		table = append(table, record)
	}
	return rowsFromTable(table), nil
}

func rowsFromTable(table [][]string) []domain.Row {
	if len(table) == 0 {
		return nil
	}
	header := make([]string, len(table[0]))
	for i, cell := range table[0] {
		header[i] = domain.NormalizeHeader(strings.TrimPrefix(cell, "\ufeff"))
	}

	rows := make([]domain.Row, 0, len(table)-1)
	for _, cells := range table[1:] {
		row := make(domain.Row, len(header))
		for i, key := range header {
			if key == "" || i >= len(cells) {
				continue
			}
			if _, seen := row[key]; seen {
				continue
			}
			row[key] = cells[i]
		}
		rows = append(rows, row)
	}
	return rows
}
