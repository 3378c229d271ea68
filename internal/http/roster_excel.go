package httpapi

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"jamaah-data/internal/domain"
)

// GenerateRosterExport 生成名册 Excel 文件
// 表头固定为 domain.ExportColumns 的 32 列，下游报备系统按列位置识别字段
func GenerateRosterExport(roster []*domain.Pilgrim) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Jamaah"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 表头样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 写入表头
	for col, header := range domain.ExportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	// 统一列宽，姓名和地址列放宽
	for i := range domain.ExportColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		width := 18.0
		switch i {
		case 1, 5, 11: // Nama / Nama Paspor / Alamat
			width = 36.0
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 写入数据，从第2行开始（第1行是表头）
	for rowIdx, p := range roster {
		for colIdx, value := range domain.ExportRow(p) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}
