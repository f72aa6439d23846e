package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/aluiziolira/go-scrape-toolkit/models"
)

// writeCSV writes one row per record with one column per distinct
// field across the batch; fields missing from a record become empty
// cells. The header is the field union in first-seen order.
func writeCSV(path string, batch models.Batch) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close csv file: %w", cerr)
		}
	}()

	writer := csv.NewWriter(f)
	fields := batch.Fields()
	if err := writer.Write(fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(fields))
	for _, record := range batch {
		for i, field := range fields {
			row[i] = ""
			if value, ok := record.Get(field); ok {
				row[i] = value.Text()
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// writeJSON writes the full batch as one indented array-of-objects
// document. Record key order is preserved and non-ASCII characters
// are kept verbatim.
func writeJSON(path string, batch models.Batch) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close json file: %w", cerr)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(batch); err != nil {
		return fmt.Errorf("encode json batch: %w", err)
	}
	return nil
}

// writeXLSX writes the batch with csv row/column semantics into a
// single-sheet workbook.
func writeXLSX(path string, batch models.Batch) (err error) {
	workbook := excelize.NewFile()
	defer func() {
		if cerr := workbook.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	const sheet = "Sheet1"
	fields := batch.Fields()

	header := make([]any, len(fields))
	for i, field := range fields {
		header[i] = field
	}
	if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write workbook header: %w", err)
	}

	for rowIdx, record := range batch {
		row := make([]any, len(fields))
		for i, field := range fields {
			if value, ok := record.Get(field); ok {
				row[i] = value.Native()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("address workbook row: %w", err)
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write workbook row: %w", err)
		}
	}

	if err := workbook.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
