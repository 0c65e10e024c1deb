package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/dnldd/pricealerts/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alertsCfg := service.AlertsConfig{
		Assets:             cfg.Assets,
		CoinGeckoAPIKey:    cfg.CoinGeckoAPIKey,
		Days:               cfg.Days,
		RefreshInterval:    cfg.RefreshInterval,
		DBEndpoint:         cfg.DBEndpoint,
		DBUser:             cfg.DBUser,
		DBPass:             cfg.DBPass,
		Address:            cfg.Address,
		FlatPolicy:         cfg.FlatPolicy,
		Replay:             cfg.Replay,
		ReplayDataFilepath: cfg.ReplayDataFilepath,
		Cancel:             cancel,
	}
	alerts, err := service.NewAlerts(ctx, &alertsCfg)
	if err != nil {
		log.Printf("creating price alerts service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	alerts.Run(ctx)
}
