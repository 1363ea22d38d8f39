// Package reporting renders run summaries to the console and exports
// trade history to Excel workbooks.
package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/execution"
	"github.com/minhtran24/meanrev-bot/internal/risk"
)

// PrintStartupInfo renders the effective configuration at startup.
func PrintStartupInfo(cfg *config.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("BOT INITIALIZATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbol", cfg.Symbol},
		{"⏰ Interval", cfg.CandleInterval},
		{"🏪 Category", cfg.Category},
		{"🔧 Mode", string(cfg.Mode)},
		{"📐 Position fraction", fmt.Sprintf("%.0f%%", cfg.MaxPositionFraction*100)},
		{"🛑 Stop loss", fmt.Sprintf("%.1f%%", cfg.StopLossPct)},
		{"🎯 Take profit", fmt.Sprintf("%.1f%%", cfg.TakeProfitPct)},
		{"📉 RSI", fmt.Sprintf("%d (%.0f/%.0f)", cfg.RSIPeriod, cfg.RSIOversold, cfg.RSIOverbought)},
		{"📈 Bollinger", fmt.Sprintf("%d × %.1fσ", cfg.BollingerPeriod, cfg.BollingerStdDev)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintFinalStats renders risk and execution statistics at shutdown.
func PrintFinalStats(metrics risk.Metrics, stats execution.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("SESSION SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"💰 Balance", fmt.Sprintf("$%.2f", metrics.Balance)},
		{"💵 Available", fmt.Sprintf("$%.2f", metrics.AvailableBalance)},
		{"📈 Total PnL", fmt.Sprintf("$%.2f", metrics.TotalPnL)},
		{"✅ Win rate", fmt.Sprintf("%.1f%%", metrics.WinRate*100)},
		{"📉 Max drawdown", fmt.Sprintf("%.2f%%", metrics.MaxDrawdown*100)},
		{"🔄 Trades", fmt.Sprintf("%d", metrics.TotalTrades)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📦 Orders total", fmt.Sprintf("%d", stats.TotalOrders)},
		{"✅ Orders filled", fmt.Sprintf("%d", stats.SuccessfulOrders)},
		{"❌ Orders failed", fmt.Sprintf("%d", stats.FailedOrders)},
		{"⏳ Orders pending", fmt.Sprintf("%d", stats.PendingOrders)},
		{"🎯 Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate*100)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}
