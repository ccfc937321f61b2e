package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/chatfollow/internal/store"
)

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfgPath := configFlag(fs)
	n := fs.Int("n", 20, "Number of recent messages to print")
	width := fs.Int("sender-width", 10, "Sender column width")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)
	st := openDB(cfg)
	defer st.Close()

	msgs, err := st.RecentMessages(*n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(msgs) == 0 {
		fmt.Println("No messages stored yet.")
		return
	}
	printHistory(os.Stdout, msgs, *width)
}

// printHistory writes one line per message with a fixed-width sender column.
func printHistory(w io.Writer, msgs []store.Message, senderWidth int) {
	for _, m := range msgs {
		name := runewidth.FillRight(runewidth.Truncate(m.Sender, senderWidth, "…"), senderWidth)
		fmt.Fprintf(w, "%s  %s  %s\n", m.At.Format("2006-01-02 15:04:05"), name, m.Body)
	}
}
