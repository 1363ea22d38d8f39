package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/minhtran24/meanrev-bot/internal/risk"
)

// WriteTradesXLSX writes the trade history to an Excel workbook.
func WriteTradesXLSX(trades []risk.TradeRecord, metrics risk.Metrics, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const sheet = "Trades"
	fx.SetSheetName(fx.GetSheetName(0), sheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	currencyStyle, err := fx.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return err
	}

	headers := []string{"Timestamp", "Type", "Price", "Size", "Value", "PnL"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, trade := range trades {
		r := row + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", r), trade.Timestamp.Format("2006-01-02 15:04:05"))
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", r), string(trade.Type))
		fx.SetCellValue(sheet, fmt.Sprintf("C%d", r), trade.Price)
		fx.SetCellValue(sheet, fmt.Sprintf("D%d", r), trade.Size)
		fx.SetCellValue(sheet, fmt.Sprintf("E%d", r), trade.Value)
		if trade.Type == risk.TradeClose {
			fx.SetCellValue(sheet, fmt.Sprintf("F%d", r), trade.PnL)
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("C%d", r), fmt.Sprintf("F%d", r), currencyStyle)
	}

	// Summary block below the trade rows.
	base := len(trades) + 3
	summary := [][2]interface{}{
		{"Final balance", metrics.Balance},
		{"Total PnL", metrics.TotalPnL},
		{"Win rate", metrics.WinRate},
		{"Max drawdown", metrics.MaxDrawdown},
		{"Total trades", metrics.TotalTrades},
	}
	for i, row := range summary {
		r := base + i
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", r), row[0])
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", r), row[1])
	}

	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "F", 14)

	return fx.SaveAs(path)
}
