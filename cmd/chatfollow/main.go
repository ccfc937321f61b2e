// Command chatfollow is a terminal chat log that keeps following new messages
// until you scroll up, and stays put until you jump back down.
//
// Usage:
//
//	chatfollow              Run the chat log
//	chatfollow history      Print stored messages
//	chatfollow events       JSONL event log viewer
//	chatfollow stats        Message and scroll decision counts
//	chatfollow config       Print or write the effective config
package main

import (
	"fmt"
	"os"
)

const usage = `chatfollow - chat log with scroll-aware following

Usage:
  chatfollow [command] [flags]

Commands:
  run         Run the chat log (default)
  history     Print stored messages
  events      JSONL event log viewer
  stats       Message count and scroll decision counts
  config      Print the effective config (-write saves it)

Environment:
  CHATFOLLOW_DATA_DIR   Data directory (default: ~/.chatfollow)
  CHATFOLLOW_TOLERANCE  At-bottom tolerance in rows
  CHATFOLLOW_TRACE      Log every UI message to the event log

Run 'chatfollow <command> -h' for command-specific help.
`

func main() {
	cmd := "run"
	if len(os.Args) >= 2 && os.Args[1] != "" && os.Args[1][0] != '-' {
		cmd = os.Args[1]
		// Strip the program name + subcommand so flag sets see only their flags
		os.Args = os.Args[1:]
	}

	switch cmd {
	case "run":
		runChat()
	case "history":
		runHistory()
	case "events":
		runEvents()
	case "stats":
		runStats()
	case "config":
		runConfig()
	case "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "chatfollow: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
