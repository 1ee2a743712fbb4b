package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"SMCTrader/internal/di"
	"SMCTrader/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	checkOnly := flag.Bool("check", false, "validate the config (with env overrides) and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *checkOnly {
		fmt.Printf("config ok: env=%s backend=%s engine=%s/%s\n",
			cfg.Environment, cfg.Backend.Type, cfg.Engine.Timeframe, cfg.Engine.HTFTimeframe)
		return
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
