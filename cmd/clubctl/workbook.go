// cmd/clubctl/workbook.go
package main

import (
	"fmt"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"github.com/clubfutbol/clubsite/internal/sheetsync"
)

// sheetBatch is one worksheet converted into a sync request.
type sheetBatch struct {
	Sheet   string
	Request sheetsync.Request
}

// readWorkbook converts the selected worksheets into sync requests. With no
// selection every sheet named after a sync type is read and the rest are
// skipped; an explicitly selected sheet must name a sync type.
func readWorkbook(f *excelize.File, selected []string) ([]sheetBatch, []string, error) {
	names := selected
	explicit := len(selected) > 0
	if !explicit {
		names = f.GetSheetList()
	}

	var (
		batches []sheetBatch
		skipped []string
	)
	for _, name := range names {
		syncType, err := sheetsync.ParseType(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			if explicit {
				return nil, nil, fmt.Errorf("sheet %q: %w", name, err)
			}
			skipped = append(skipped, name)
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		data, err := rowsToRecords(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("sheet %q: %w", name, err)
		}

		batches = append(batches, sheetBatch{
			Sheet:   name,
			Request: sheetsync.Request{Type: string(syncType), Data: data},
		})
	}
	return batches, skipped, nil
}

// rowsToRecords maps a header row plus data rows into column records.
// Empty cells become null and blank rows are dropped.
func rowsToRecords(rows [][]string) ([]map[string]any, error) {
	if len(rows) == 0 {
		return []map[string]any{}, nil
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))
	for i, cell := range rows[0] {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		header[i] = name
	}

	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]any, len(header))
		blank := true
		for i, name := range header {
			if name == "" {
				continue
			}
			var value any
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				value = row[i]
				blank = false
			}
			record[name] = value
		}
		if blank {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
