package chatlog

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/abelbrown/chatfollow/internal/host"
	"github.com/abelbrown/chatfollow/internal/otel"
	"github.com/abelbrown/chatfollow/internal/scroll"
	"github.com/abelbrown/chatfollow/internal/store"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// chromeLines is the header plus the footer around the viewport.
const chromeLines = 2

// Options configures a Model. Zero values fall back to the stock names.
type Options struct {
	RegionName     string
	FallbackName   string // second name the scroll region answers to
	ControlName    string
	ShowTimestamps bool
	SenderWidth    int
	MaxMessages    int // 0 keeps everything

	LoadHistory func() tea.Cmd     // optional
	Log         *otel.Logger       // optional
	Ring        *otel.RingBuffer   // optional, feeds the debug overlay
	Mode        func() scroll.Mode // optional, shown in the debug overlay

	// AtBottom reports the follow policy's view of the position. When set it
	// drives the header, the jump line and the unseen counter reset, so the
	// display agrees with what the next append will do.
	AtBottom func() bool
}

// Model is the chat log panel. It is used by pointer: the scroll Slot and the
// hooks hold on to it between updates.
type Model struct {
	opts  Options
	hooks *host.Hooks
	slot  *scroll.Slot

	vp        viewport.Model
	messages  []store.Message
	listeners map[string]func()
	jump      *control
	unseen    int

	width, height int
	ready         bool
	showDebug     bool
	err           error
}

// New builds the panel and registers its scroll-to-bottom implementation in slot.
func New(hooks *host.Hooks, slot *scroll.Slot, opts Options) *Model {
	if opts.RegionName == "" {
		opts.RegionName = host.SelectorScroll
	}
	if opts.FallbackName == "" {
		opts.FallbackName = host.SelectorLog
	}
	if opts.ControlName == "" {
		opts.ControlName = host.SelectorJumpBottom
	}
	if opts.SenderWidth <= 0 {
		opts.SenderWidth = 10
	}

	m := &Model{
		opts:      opts,
		hooks:     hooks,
		slot:      slot,
		listeners: make(map[string]func()),
		jump:      newControl(),
	}
	slot.Register(m.scrollBottom)
	return m
}

// scrollBottom is the panel's own forced scroll, registered in the Slot.
func (m *Model) scrollBottom(sc scroll.ScrollContext) {
	if sc.Target != nil {
		sc.Target.GotoBottom()
	}
}

// Init fires the Ready hook and loads history.
func (m *Model) Init() tea.Cmd {
	ready := func() tea.Msg { return hostReady{} }
	if m.opts.LoadHistory != nil {
		return tea.Batch(ready, m.opts.LoadHistory())
	}
	return ready
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		m.opts.Log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "chatlog", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case hostReady:
		m.hooks.Ready.Call(struct{}{})
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case HistoryLoaded:
		m.loadHistory(msg)
		return m, nil

	case MessageReceived:
		m.Append(msg.Message)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.opts.Log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "chatlog", Msg: msg.String()})
	if m.err != nil {
		m.err = nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Jump):
		m.ActivateJump()
		return m, nil
	case key.Matches(msg, keys.Debug):
		m.showDebug = !m.showDebug
		return m, nil
	case key.Matches(msg, keys.Reload):
		if m.opts.LoadHistory != nil {
			return m, m.opts.LoadHistory()
		}
		return m, nil
	}
	return m, m.scrollWith(msg)
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft &&
		msg.Y == m.height-1 && !m.Following() {
		m.ActivateJump()
		return m, nil
	}
	return m, m.scrollWith(msg)
}

// scrollWith lets the viewport handle msg and notifies scroll listeners when
// the offset moved.
func (m *Model) scrollWith(msg tea.Msg) tea.Cmd {
	if !m.ready {
		return nil
	}
	before := m.vp.YOffset
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	if m.vp.YOffset != before {
		m.notifyScroll()
	}
	return cmd
}

// notifyScroll runs scroll listeners, then clears the unseen counter if the
// view is following again.
func (m *Model) notifyScroll() {
	for _, k := range slices.Sorted(maps.Keys(m.listeners)) {
		m.listeners[k]()
	}
	if m.Following() {
		m.unseen = 0
	}
}

// Append adds a message: PreCreateMessage hook, append, forced scroll.
func (m *Model) Append(msg store.Message) {
	m.hooks.PreCreateMessage.Call(host.Draft{ID: msg.ID, Sender: msg.Sender, At: msg.At})

	m.messages = append(m.messages, msg)
	if n := m.opts.MaxMessages; n > 0 && len(m.messages) > n {
		m.messages = slices.Clone(m.messages[len(m.messages)-n:])
	}
	if !m.ready {
		return
	}

	m.vp.SetContent(m.renderMessages())
	m.slot.Call(scroll.ScrollContext{Target: m, Cause: scroll.CauseAppend})
	if !m.vp.AtBottom() {
		m.unseen++
	}
}

func (m *Model) loadHistory(msg HistoryLoaded) {
	if msg.Err != nil {
		m.err = msg.Err
		m.opts.Log.Error(otel.KindStoreError, "chatlog", msg.Err)
		return
	}

	// Keep live messages that arrived before the history query saw them.
	seen := make(map[string]bool, len(msg.Messages))
	merged := slices.Clone(msg.Messages)
	for _, hm := range msg.Messages {
		seen[hm.ID] = true
	}
	for _, lm := range m.messages {
		if !seen[lm.ID] {
			merged = append(merged, lm)
		}
	}
	m.messages = merged
	m.unseen = 0
	if m.ready {
		m.rebuild()
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vh := max(1, height-chromeLines)
	if !m.ready {
		m.vp = viewport.New(width, vh)
		m.ready = true
	} else {
		m.vp.Width = width
		m.vp.Height = vh
	}
	m.rebuild()
}

// rebuild re-renders the whole panel, asks for the bottom, then lets
// extensions see the new panel.
func (m *Model) rebuild() {
	start := time.Now()
	m.vp.SetContent(m.renderMessages())
	m.slot.Call(scroll.ScrollContext{Target: m, Cause: scroll.CauseRender})
	m.hooks.RenderChatLog.Call(m)
	m.opts.Log.Emit(otel.Event{
		Level: otel.LevelDebug,
		Kind:  otel.KindRender,
		Comp:  "chatlog",
		Count: len(m.messages),
		Dur:   time.Since(start),
		Extra: map[string]any{"offset": m.vp.YOffset, "lines": m.vp.TotalLineCount(), "height": m.vp.Height},
	})
}

// ActivateJump clicks the jump-to-bottom control. Without a handler that
// claims the click, the host falls back to its own forced scroll.
func (m *Model) ActivateJump() {
	if m.jump.activate() {
		return
	}
	m.slot.Call(scroll.ScrollContext{Target: m, Cause: scroll.CauseControl})
}

// GotoBottom moves the view to the last line. It is the receiver side of
// the forced scroll and does not consult any policy.
func (m *Model) GotoBottom() {
	if !m.ready {
		return
	}
	before := m.vp.YOffset
	m.vp.GotoBottom()
	m.unseen = 0
	if m.vp.YOffset != before {
		m.notifyScroll()
	}
}

// Region implements host.Panel. Only the viewport is scrollable, and only
// once it has been laid out. It answers to both the scroll container name and
// the log name.
func (m *Model) Region(selector string) (host.ScrollRegion, bool) {
	if !m.ready || (selector != m.opts.RegionName && selector != m.opts.FallbackName) {
		return nil, false
	}
	return region{m}, true
}

// Control implements host.Panel.
func (m *Model) Control(selector string) (host.Control, bool) {
	if selector != m.opts.ControlName {
		return nil, false
	}
	return m.jump, true
}

// Messages returns the messages in display order.
func (m *Model) Messages() []store.Message {
	return m.messages
}

// Unseen returns how many messages arrived while the view was away from the bottom.
func (m *Model) Unseen() int {
	return m.unseen
}

// Following reports whether the next append will scroll the view: the
// policy's answer when one is wired, else whether the last line is showing.
func (m *Model) Following() bool {
	if !m.ready {
		return true
	}
	if m.opts.AtBottom != nil {
		return m.opts.AtBottom()
	}
	return m.vp.AtBottom()
}

// View renders the panel.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showDebug {
		return debugOverlay(m.opts.Ring, m.opts.Mode, m.width, m.height-1) + "\n" + debugStatusBar(m.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.vp.View(), m.renderFooter())
}

func (m *Model) renderHeader() string {
	title := HeaderStyle.Render("chat")
	var status string
	if m.Following() {
		status = FollowingStyle.Render("following")
	} else {
		status = PausedStyle.Render(fmt.Sprintf("paused · %d new", m.unseen))
	}
	return title + " " + status
}

func (m *Model) renderFooter() string {
	if m.err != nil {
		return ErrorStyle.Width(m.width).Render("Error: " + m.err.Error())
	}
	if !m.Following() {
		return JumpStyle.Render("↓ jump to bottom (G)")
	}
	help := []key.Binding{keys.Jump, keys.Reload, keys.Debug, keys.Quit}
	parts := make([]string, 0, len(help))
	for _, b := range help {
		parts = append(parts, StatusBarKey.Render(b.Help().Key)+StatusBarText.Render(":"+b.Help().Desc))
	}
	return StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m *Model) renderMessages() string {
	if len(m.messages) == 0 {
		return TimeStyle.Render("  No messages yet.")
	}

	sw := m.opts.SenderWidth
	prefixWidth := sw + 2
	if m.opts.ShowTimestamps {
		prefixWidth += 9
	}
	bodyWidth := max(10, m.width-prefixWidth)
	bodyStyle := lipgloss.NewStyle().Width(bodyWidth)

	lines := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		var prefix string
		if m.opts.ShowTimestamps {
			prefix = TimeStyle.Render(msg.At.Format("15:04:05")) + " "
		}
		name := runewidth.FillRight(runewidth.Truncate(msg.Sender, sw, "…"), sw)
		prefix += SenderStyle.Render(name) + "  "
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, prefix, bodyStyle.Render(msg.Body)))
	}
	return strings.Join(lines, "\n")
}

// region exposes the viewport as a host.ScrollRegion.
type region struct {
	m *Model
}

func (r region) ScrollOffset() int  { return r.m.vp.YOffset }
func (r region) ContentExtent() int { return r.m.vp.TotalLineCount() }
func (r region) VisibleExtent() int { return r.m.vp.Height }

func (r region) OnScroll(key string, fn func()) {
	r.m.listeners[key] = fn
}

func (r region) RemoveScrollListener(key string) {
	delete(r.m.listeners, key)
}

// control is the jump-to-bottom button.
type control struct {
	order    []string
	handlers map[string]func() bool
}

func newControl() *control {
	return &control{handlers: make(map[string]func() bool)}
}

func (c *control) Bind(key string, fn func() bool) {
	if _, ok := c.handlers[key]; !ok {
		c.order = append(c.order, key)
	}
	c.handlers[key] = fn
}

func (c *control) Bound(key string) bool {
	_, ok := c.handlers[key]
	return ok
}

// activate runs every handler and reports whether any claimed the click.
func (c *control) activate() bool {
	handled := false
	for _, k := range c.order {
		if c.handlers[k]() {
			handled = true
		}
	}
	return handled
}
