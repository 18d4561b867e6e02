package main

import (
	"github.com/spf13/cobra"

	"strswitch/internal/driver"
	"strswitch/internal/planio"
)

const appName = "strswitch"

// loadConfig reads --config when given, otherwise searches upward from the
// working directory.
func loadConfig(cmd *cobra.Command) (driver.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return driver.Config{}, err
	}
	if path != "" {
		return driver.ReadConfig(path)
	}
	return driver.LoadConfig(".")
}

func openCache(cfg driver.Config, disabled bool) (*planio.Cache, error) {
	if disabled || !cfg.CacheEnabled {
		return nil, nil
	}
	return planio.OpenCache(appName, cfg.CacheDir)
}
