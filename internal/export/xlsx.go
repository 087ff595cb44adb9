package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/boxoffice/internal/domain"
)

const sheetName = "Movies"

var header = []any{"ID", "Name", "Description", "Price", "Image URL"}

// WriteXLSX writes movies as a single-sheet workbook, one row per movie
// after a header row.
func WriteXLSX(w io.Writer, movies []*domain.Movie) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, m := range movies {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := []any{m.ID, m.Name, m.Description, m.Price, m.AssetURL}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write movie %s: %w", m.ID, err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 30); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(sheetName, "C", "C", 60); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
