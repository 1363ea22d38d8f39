package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/minhtran24/meanrev-bot/internal/bot"
	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/exchange"
	"github.com/minhtran24/meanrev-bot/internal/exchange/bybit"
	"github.com/minhtran24/meanrev-bot/internal/execution"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/internal/market"
	"github.com/minhtran24/meanrev-bot/internal/monitoring"
	"github.com/minhtran24/meanrev-bot/internal/notifications"
	"github.com/minhtran24/meanrev-bot/internal/risk"
	"github.com/minhtran24/meanrev-bot/internal/signal"
	"github.com/minhtran24/meanrev-bot/pkg/reporting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; the environment itself takes precedence.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogDir, cfg.Symbol, cfg.CandleInterval)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Close()

	reporting.PrintStartupInfo(cfg)
	log.Info("logging to %s", log.Path())

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bybit.NewClient(bybit.Config{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		Symbol:    cfg.Symbol,
		Category:  cfg.Category,
		Testnet:   cfg.Testnet,
		Demo:      cfg.Demo,
	})
	log.Info("bybit environment: %s", client.Environment())

	riskMgr := risk.NewManager(cfg, log)

	var gateway exchange.Gateway
	if cfg.Mode == config.ModeLive {
		gateway = client
		balance, err := client.GetAccountBalance(ctx, "USDT")
		if err != nil {
			return fmt.Errorf("fetching account balance: %w", err)
		}
		riskMgr.SetBalance(balance)
		log.Info("live balance: %.2f USDT", balance)
	} else {
		riskMgr.SetBalance(cfg.InitialBalance)
		log.Info("simulated balance: %.2f USDT", cfg.InitialBalance)
	}

	engine := execution.NewEngine(cfg, log, riskMgr, gateway)
	collector := market.NewCollector(cfg, log, client)

	health := monitoring.NewHealthChecker()
	health.SetConnected(true)
	metricsSrv := monitoring.StartServer(cfg.MetricsPort, health)
	log.Info("metrics and health on :%d", cfg.MetricsPort)

	var notifier notifications.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		notifier = notifications.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		log.Info("telegram notifications enabled")
	}

	b := bot.New(bot.Deps{
		Config:    cfg,
		Log:       log,
		Processor: signal.NewProcessor(cfg, log),
		Risk:      riskMgr,
		Engine:    engine,
		Collector: collector,
		Health:    health,
		Notifier:  notifier,
	})

	runErr := b.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	reporting.PrintFinalStats(riskMgr.Metrics(), engine.Stats())

	if trades := riskMgr.TradeHistory(); len(trades) > 0 {
		path := fmt.Sprintf("reports/trades_%s_%s.xlsx",
			cfg.Symbol, time.Now().Format("20060102_150405"))
		if err := reporting.WriteTradesXLSX(trades, riskMgr.Metrics(), path); err != nil {
			log.Error("exporting trade history: %v", err)
		} else {
			log.Info("trade history exported to %s", path)
		}
	}

	return runErr
}
