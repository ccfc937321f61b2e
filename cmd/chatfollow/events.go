package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
)

// eventRecord mirrors otel.Event for decoding. Decoding into a local type
// keeps old logs readable after the event schema changes.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Source    string         `json:"source"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

// eventFilter selects records. Empty fields match everything.
type eventFilter struct {
	Kind     string // prefix, e.g. "scroll" or "scroll.suppress"
	MinLevel string
	Comp     string
	Session  string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.Kind != "" && !strings.HasPrefix(ev.Kind, f.Kind) {
		return false
	}
	if f.MinLevel != "" && levelRank(ev.Level) < levelRank(f.MinLevel) {
		return false
	}
	if f.Comp != "" && ev.Comp != f.Comp {
		return false
	}
	if f.Session != "" && ev.SessionID != f.Session {
		return false
	}
	return true
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	cfgPath := configFlag(fs)
	tail := fs.Int("tail", 50, "Number of recent lines to show")
	follow := fs.Bool("f", false, "Follow mode (like tail -f)")
	kind := fs.String("kind", "", "Filter by event kind prefix (e.g. 'scroll')")
	level := fs.String("level", "", "Minimum level: debug, info, warn, error")
	comp := fs.String("comp", "", "Filter by component name")
	session := fs.String("session", "", "Filter by session ID")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)
	logPath := cfg.EventLogPath()

	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", logPath)
		fmt.Fprintf(os.Stderr, "  Run chatfollow first to generate events.\n")
		os.Exit(1)
	}
	defer f.Close()

	filter := eventFilter{Kind: *kind, MinLevel: *level, Comp: *comp, Session: *session}
	format := func(ev eventRecord, raw []byte) string {
		if *rawJSON {
			return string(raw)
		}
		return formatEvent(ev)
	}

	for _, l := range readTailLines(f, *tail, filter.match) {
		fmt.Println(format(l.ev, l.raw))
	}
	if !*follow {
		return
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if filter.match(ev) {
			fmt.Println(format(ev, line))
		}
	}
}

// formatEvent renders one record as a single human-readable line.
func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-20s", ts, lvl, ev.Comp, ev.Kind)}
	if ev.Msg != "" {
		parts = append(parts, ev.Msg)
	}
	if ev.Source != "" {
		parts = append(parts, "src="+ev.Source)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ev.Extra[k]))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// scanEvents calls fn for every decodable record in r.
func scanEvents(r io.Reader, fn func(ev eventRecord, raw []byte)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		fn(ev, raw)
	}
}

// readTailLines returns the last n records from r that satisfy match.
// It always consumes r, so follow mode starts at the end.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	var ring []parsedLine
	if n > 0 {
		ring = make([]parsedLine, 0, n)
	}
	scanEvents(r, func(ev eventRecord, raw []byte) {
		if n <= 0 || !match(ev) {
			return
		}
		// scanner reuses its buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	})
	return ring
}

// countKinds tallies records by kind, optionally restricted to one session.
func countKinds(r io.Reader, session string) map[string]int {
	match := eventFilter{Session: session}.match
	counts := make(map[string]int)
	scanEvents(r, func(ev eventRecord, _ []byte) {
		if match(ev) {
			counts[ev.Kind]++
		}
	})
	return counts
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
