package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func runConfig() {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfgPath := configFlag(fs)
	write := fs.Bool("write", false, "Save the effective config to -config")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)
	if *write {
		if err := cfg.Save(*cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *cfgPath)
		return
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("# %s\n%s", *cfgPath, data)
}
