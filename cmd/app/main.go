package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"QuantPulse/internal/di"
	"QuantPulse/pkg/config"
	"QuantPulse/pkg/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	mode := flag.String("mode", server.ModeScreen, "run mode: screen or backtest")
	symbols := flag.String("symbols", "", "comma-separated symbol override")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s mode=%s", cfg.Environment, *mode)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	var override []string
	if *symbols != "" {
		override = strings.Split(*symbols, ",")
	}
	app.SetMode(*mode, override)

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
