package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/pulsechat/internal/chat"
	"github.com/diogo/pulsechat/internal/models"
	"github.com/diogo/pulsechat/internal/render"
)

const (
	maxSidebarWidth = 34
	inputHeight     = 2
)

type focusArea int

const (
	focusList focusArea = iota
	focusInput
)

// Engine is the part of *chat.Engine the TUI drives.
type Engine interface {
	Conversations() []*models.Conversation
	ActiveID() string
	Typing() (chat.TypingState, bool)
	Select(id string) bool
	Deselect()
	Submit(text string) bool
}

// Message types for the TUI
type (
	engineEventMsg struct {
		event chat.Event
	}
	engineClosedMsg struct{}
)

// Model is the two-pane chat TUI: the conversation list on the left and
// the displayed thread on the right.
type Model struct {
	engine Engine
	events <-chan chat.Event
	copyFn func(string) error
	mdOpts render.Options
	plain  bool

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State mirrored from the engine
	convs    []*models.Conversation
	activeID string
	typing   *chat.TypingState

	cursor   int
	focus    focusArea
	feedback string
	err      error
	ready    bool

	// Dimensions
	width  int
	height int
}

// Option configures a Model
type Option func(*Model)

// WithClipboard replaces the clipboard writer used by ctrl+y
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		if fn != nil {
			m.copyFn = fn
		}
	}
}

// WithMarkdown sets the markdown options for contact messages
func WithMarkdown(opts render.Options) Option {
	return func(m *Model) {
		m.mdOpts = opts
	}
}

// WithPlainText shows message text as is, without markdown rendering
func WithPlainText() Option {
	return func(m *Model) {
		m.plain = true
	}
}

// NewModel creates the chat model. events is a subscription to the engine;
// it may be nil, in which case the view only changes on key presses.
func NewModel(engine Engine, events <-chan chat.Event, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Ellipsis
	s.Style = typingStyle

	m := Model{
		engine:   engine,
		events:   events,
		copyFn:   clipboard.WriteAll,
		mdOpts:   render.DefaultOptions(),
		textarea: ta,
		spinner:  s,
		focus:    focusList,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	if m.activeID != "" {
		m.cursor = m.indexOf(m.activeID)
		m.focus = focusInput
		m.textarea.Focus()
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForEvent(m.events),
	)
}

// waitForEvent turns the next engine event into a tea message.
func waitForEvent(events <-chan chat.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return engineEventMsg{event: ev}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.updateViewport()
		return m, nil

	case engineEventMsg:
		wasTyping := m.typing != nil
		m.refresh()
		if msg.event.Scroll && msg.event.ConversationID == m.activeID {
			m.viewport.GotoBottom()
		}
		cmds := []tea.Cmd{waitForEvent(m.events)}
		if m.typing != nil && !wasTyping {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case engineClosedMsg:
		m.events = nil
		return m, nil

	case spinner.TickMsg:
		if m.typing == nil {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.focus == focusList {
			m.focusInput()
		} else {
			m.focusList()
		}
		return m, nil

	case "esc":
		m.engine.Deselect()
		m.focusList()
		m.feedback = ""
		m.refresh()
		return m, nil

	case "ctrl+y":
		m.copyLastMessage()
		return m, nil

	case "pgup", "pgdown":
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusList {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.convs)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.convs) && m.engine.Select(m.convs[m.cursor].ID) {
				m.feedback = ""
				m.refresh()
				m.viewport.GotoBottom()
				m.focusInput()
			}
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		if m.engine.Submit(m.textarea.Value()) {
			m.textarea.Reset()
			m.feedback = ""
			m.refresh()
			m.viewport.GotoBottom()
		} else if m.activeID == "" {
			m.feedback = "Select a conversation first"
		}
		return m, nil
	}

	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) focusInput() {
	m.focus = focusInput
	m.textarea.Focus()
}

func (m *Model) focusList() {
	m.focus = focusList
	m.textarea.Blur()
}

// refresh mirrors the engine state into the model.
func (m *Model) refresh() {
	m.convs = m.engine.Conversations()
	m.activeID = m.engine.ActiveID()
	if st, ok := m.engine.Typing(); ok {
		m.typing = &st
	} else {
		m.typing = nil
	}
	if m.cursor >= len(m.convs) {
		m.cursor = max(0, len(m.convs)-1)
	}
	m.updateViewport()
}

func (m Model) indexOf(id string) int {
	for i, c := range m.convs {
		if c.ID == id {
			return i
		}
	}
	return 0
}

func (m *Model) copyLastMessage() {
	thread := render.ActiveThread(m.convs, m.activeID, nil)
	if !thread.Selected || len(thread.Items) == 0 {
		m.feedback = "Nothing to copy"
		return
	}
	last := thread.Items[len(thread.Items)-1]
	if err := m.copyFn(last.Text); err != nil {
		m.err = fmt.Errorf("failed to copy to clipboard: %w", err)
		return
	}
	m.err = nil
	m.feedback = "✓ Copied to clipboard"
}

func (m Model) sidebarWidth() int {
	return min(maxSidebarWidth, m.width/3)
}

func (m *Model) resize() {
	mainWidth := m.width - m.sidebarWidth()
	// header (3) + typing line (1) + input panel (inputHeight + 3) + status bar (1) + messages border (2)
	vpHeight := m.height - 3 - 1 - (inputHeight + 3) - 1 - 2
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := mainWidth - 4
	if vpWidth < 10 {
		vpWidth = 10
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(vpWidth - 2)
}

// updateViewport refreshes the viewport content with the active thread
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	thread := render.ActiveThread(m.convs, m.activeID, nil)
	if !thread.Selected {
		m.viewport.SetContent("")
		return
	}

	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	var content strings.Builder
	for i, item := range thread.Items {
		if i > 0 {
			content.WriteString("\n")
		}
		stamp := ""
		if item.Time != "" {
			stamp = " " + timeStyle.Render(item.Time)
		}
		if item.Self {
			label := selfLabelStyle.Render(item.Author) + stamp
			bubble := selfBubbleStyle.Width(bubbleWidth).Render(item.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := otherLabelStyle.Render(item.Author) + stamp
			body := item.Text
			if !m.plain {
				body = render.MessageBody(item.Text, m.mdOpts.WithWidth(bubbleWidth-4))
			}
			bubble := otherBubbleStyle.Width(bubbleWidth).Render(body)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}
	m.viewport.SetContent(content.String())
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return hintStyle.Render("  Loading conversations...")
	}

	sw := m.sidebarWidth()
	main := m.renderMain(m.width - sw)
	sidebar := m.renderSidebar(sw, lipgloss.Height(main))

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(m.width))
}

func (m Model) renderSidebar(width, height int) string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Conversations"))
	b.WriteString("\n")

	inner := width - 4
	for i, item := range render.ConversationList(m.convs, m.activeID) {
		marker := "  "
		if m.focus == focusList && i == m.cursor {
			marker = itemCursorStyle.Render("› ")
		}
		name := itemNameStyle.Render(item.Name)
		if item.Active {
			name = itemActiveStyle.Render(item.Name)
		}
		badge := avatarBadgeStyle.Render(item.AvatarText)
		line := marker + badge + " " + name
		if item.Time != "" {
			line += " " + itemTimeStyle.Render(item.Time)
		}
		preview := itemPreviewStyle.MaxWidth(max(inner-2, 1)).Render(item.Preview)

		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n  ")
		b.WriteString(preview)
		b.WriteString("\n")
	}

	style := sidebarStyle
	if m.focus == focusList {
		style = sidebarFocusedStyle
	}
	return style.Width(width - 2).Height(max(height-2, 1)).Render(b.String())
}

func (m Model) renderMain(width int) string {
	contentWidth := width - 2
	thread := render.ActiveThread(m.convs, m.activeID, m.typing)

	headerContent := titleStyle.Render(thread.Name)
	if thread.Role != "" {
		headerContent = lipgloss.JoinHorizontal(lipgloss.Center,
			headerContent,
			subtitleStyle.Render("  •  "+thread.Role),
		)
	}
	header := headerStyle.Width(contentWidth).Render(headerContent)

	var messages string
	if !thread.Selected {
		messages = m.renderHint(thread.Hint)
	} else {
		messages = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messages)

	typingLine := " "
	if thread.Typing != "" {
		typingLine = typingStyle.Render(" "+thread.Typing) + m.spinner.View()
	}

	inputStyle := inputPanelStyle
	if m.focus == focusInput {
		inputStyle = inputPanelFocusedStyle
	}
	input := inputStyle.Width(contentWidth).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("Message"),
		m.textarea.View(),
	))

	return lipgloss.JoinVertical(lipgloss.Left, header, messagesPanel, typingLine, input)
}

// renderHint centers the no-selection hint in the messages area
func (m Model) renderHint(hint string) string {
	content := hintStyle.Width(m.viewport.Width).Align(lipgloss.Center).Render(hint)
	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	if m.err != nil {
		return errorStyle.Width(width).Render(FormatError(m.err))
	}
	if m.feedback != "" {
		return feedbackStyle.Width(width).Align(lipgloss.Center).Render(m.feedback)
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Tab", "Focus"},
		{"↑↓", "Choose"},
		{"Enter", "Open/Send"},
		{"Esc", "Close"},
		{"Ctrl+Y", "Copy"},
		{"Ctrl+C", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunChat runs the chat TUI on engine until the user quits or ctx ends.
func RunChat(ctx context.Context, engine *chat.Engine, opts ...Option) error {
	events, subID := engine.Subscribe(ctx)
	defer engine.Unsubscribe(subID)

	p := tea.NewProgram(
		NewModel(engine, events, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
