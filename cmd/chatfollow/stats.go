package main

import (
	"flag"
	"fmt"
	"os"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	cfgPath := configFlag(fs)
	session := fs.String("session", "", "Restrict scroll counts to one session ID")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)
	st := openDB(cfg)
	defer st.Close()

	total, err := st.Count()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Messages stored:       %d\n", total)

	f, err := os.Open(cfg.EventLogPath())
	if err != nil {
		fmt.Println("Event log:             none")
		return
	}
	defer f.Close()

	c := countKinds(f, *session)
	fmt.Println()
	fmt.Println("=== Scroll decisions ===")
	fmt.Printf("Snapshots:             %d\n", c["scroll.snapshot"])
	fmt.Printf("Forwarded:             %d\n", c["scroll.forward"])
	fmt.Printf("Suppressed:            %d\n", c["scroll.suppress"])
	fmt.Printf("Detached:              %d\n", c["scroll.detached"])
	fmt.Printf("Jumps:                 %d\n", c["control.jump"])
	fmt.Printf("Region missing:        %d\n", c["region.missing"])
	if decided := c["scroll.forward"] + c["scroll.suppress"]; decided > 0 {
		fmt.Printf("Suppression rate:      %.1f%%\n", float64(c["scroll.suppress"])/float64(decided)*100)
	}

	fmt.Println()
	fmt.Println("=== Sessions ===")
	fmt.Printf("Installs:              %d\n", c["scroll.install"])
	fmt.Printf("Startups:              %d\n", c["sys.startup"])
	fmt.Printf("Errors:                %d\n", c["sys.error"]+c["store.error"]+c["feed.error"])
}
