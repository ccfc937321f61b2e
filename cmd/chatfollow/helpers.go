package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/chatfollow/internal/config"
	"github.com/abelbrown/chatfollow/internal/store"
)

// configFlag registers the shared -config flag on fs.
func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", config.DefaultPath(), "Config file")
}

// loadConfig loads the config and makes sure the data directory exists, or exits.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error: create data directory: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openDB opens the message store or exits.
func openDB(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open database: %v\n", err)
		os.Exit(1)
	}
	return st
}
