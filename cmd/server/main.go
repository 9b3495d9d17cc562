// Package main is the entry point for the voicebridge API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/voicebridge/pkg/api"
	"github.com/james-see/voicebridge/pkg/config"
	"github.com/james-see/voicebridge/pkg/logging"
)

func main() {
	configFile := flag.String("config", "", "TOML config file")
	port := flag.Int("port", 0, "Server port (overrides the config file)")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
	}
	if *port != 0 {
		cfg.Port = *port
	}
	log := logging.New("voicebridge-server", cfg.LogLevel)

	fmt.Printf("Starting voicebridge API server on port %d...\n", cfg.Port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Port)

	if err := api.StartServer(cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
