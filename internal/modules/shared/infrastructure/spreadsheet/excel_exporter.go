package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"menu-to-app/internal/modules/menu/domain"
)

// SheetName 出力するシート名
const SheetName = "Menu"

// ContentTypeXLSX xlsxのContent-Type
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headerRow = []interface{}{"dish", "description", "price", "updated_at"}

// ExcelExporter カタログをxlsxに書き出す
type ExcelExporter struct{}

// NewExcelExporter 新しいExcelExporterを作成
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export 1行目にヘッダー、2行目以降に料理を書く
func (e *ExcelExporter) Export(w io.Writer, items []*domain.CatalogItem) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		row := []interface{}{
			item.Dish,
			item.Description,
			item.Price,
			item.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// ContentType xlsxのContent-Typeを返す
func (e *ExcelExporter) ContentType() string {
	return ContentTypeXLSX
}
