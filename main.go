package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kwv/georef/georef"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	dumpConfig = flag.String("dump-config", "", "Write the effective configuration to this path and exit")
	version    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("georef version: %s\n", Version)
		return
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := georef.LoadConfig(*configFile)
	if err != nil {
		logger.Printf("%v", err)
		os.Exit(1)
	}

	if *dumpConfig != "" {
		if err := georef.SaveConfig(*dumpConfig, cfg); err != nil {
			logger.Printf("%v", err)
			os.Exit(1)
		}
		if err := validateConfig(cfg, logger); err != nil {
			logger.Printf("wrote %s, but: %v", *dumpConfig, err)
		} else {
			logger.Printf("wrote %s with valid parameters", *dumpConfig)
		}
		return
	}

	if err := validateConfig(cfg, logger); err != nil {
		logger.Printf("%v", err)
		os.Exit(1)
	}

	if err := NewApp(cfg, logger).Run(); err != nil {
		logger.Printf("run failed: %v", err)
		os.Exit(1)
	}
}
