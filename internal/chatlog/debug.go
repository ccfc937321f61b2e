package chatlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/chatfollow/internal/otel"
	"github.com/abelbrown/chatfollow/internal/scroll"
	"github.com/mattn/go-runewidth"
)

// debugPanelChrome is the number of lines DebugPanel's border and vertical
// padding take. Keep in sync with DebugPanel.
const debugPanelChrome = 4

// debugOverlay renders scroll decision stats and recent events.
// Returns an empty string when ring is nil.
func debugOverlay(ring *otel.RingBuffer, mode func() scroll.Mode, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	modeStr := "n/a"
	if mode != nil {
		modeStr = mode().String()
	}

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Scroll Stats"))
	lines = append(lines, fmt.Sprintf("  Interceptor: %s", modeStr))
	lines = append(lines, fmt.Sprintf("  Snapshots:   %d", stats[otel.KindSnapshot]))
	lines = append(lines, fmt.Sprintf("  Decisions:   %d forwarded, %d suppressed, %d detached",
		stats[otel.KindForward], stats[otel.KindSuppress], stats[otel.KindDetached]))
	lines = append(lines, fmt.Sprintf("  Jumps:       %d", stats[otel.KindJump]))
	lines = append(lines, fmt.Sprintf("  Missing:     %d region lookups", stats[otel.KindRegionMissing]))
	lines = append(lines, fmt.Sprintf("  Feed:        %d messages, %d errors",
		stats[otel.KindMessage], stats[otel.KindFeedError]+stats[otel.KindStoreError]))
	lines = append(lines, fmt.Sprintf("  Buffer:      %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-20s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Source != "" {
			line += "  " + e.Source
		}
		if e.Msg != "" {
			line += "  " + runewidth.Truncate(e.Msg, 30, "…")
		}
		if e.Dur > 0 {
			line += "  " + e.Dur.Round(time.Microsecond).String()
		}
		if e.Err != "" {
			line += "  ERR:" + runewidth.Truncate(e.Err, 30, "…")
		}
		lines = append(lines, line)
	}

	maxHeight := max(1, height-debugPanelChrome)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(76, width-4)
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration compactly. Negative durations clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func debugStatusBar(width int) string {
	k := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + k)
}
