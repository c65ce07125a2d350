// model.go - Bubble Tea model for the chat window.
// The model is a projection of the conversation state plus purely
// presentational state (input buffer, selection, per-message source
// disclosure). All conversation mutations go through the state manager.

package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ncschat/internal/conversation"
)

// Model is the root TUI state.
type Model struct {
	convo  *conversation.Conversation
	client Asker
	logger *zap.Logger

	transcriptDir string

	inputBuffer string
	cursorPos   int

	width  int
	height int

	spinner      int
	status       string
	scrollOffset int  // lines scrolled up from the bottom of the chat area
	autoScroll   bool // snap to the latest message on the next render

	selectedIdx int             // index into visible (non-placeholder) messages, -1 if none
	expanded    map[string]bool // source disclosure per message, keyed by message ID

	showHelp bool
	quitting bool
}

// NewModel builds the chat view over a fresh conversation.
func NewModel(client Asker, transcriptDir string, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		convo:         conversation.New(logger),
		client:        client,
		logger:        logger,
		transcriptDir: transcriptDir,
		width:         80,
		height:        24,
		status:        "Ready",
		autoScroll:    true,
		selectedIdx:   -1,
		expanded:      map[string]bool{},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// visibleMessages returns the messages rendered as bubbles. The loading
// placeholder is never one of them; the typing indicator stands in for it.
func (m Model) visibleMessages() []conversation.Message {
	var visible []conversation.Message
	for _, msg := range m.convo.Messages() {
		if msg.IsLoading {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinnerTickMsg:
		if m.convo.InFlight() {
			m.spinner = (m.spinner + 1) % 10
			return m, spinnerTick()
		}
		return m, nil

	case answerMsg:
		// Single completion point for an exchange: the in-flight flag is
		// cleared by Resolve and Fail alike.
		if msg.err != nil {
			m.logger.Warn("exchange failed", zap.Error(msg.err))
			m.convo.Fail()
			m.status = "Request failed"
		} else {
			m.convo.Resolve(msg.result.Answer, msg.result.Sources)
			m.status = "Ready"
		}
		m.autoScroll = true
		m.scrollOffset = 0
		return m, nil
	}

	return m, nil
}

// insertAtCursor splices text into the input buffer at the rune cursor.
func (m *Model) insertAtCursor(text string) {
	runes := []rune(m.inputBuffer)
	m.inputBuffer = string(runes[:m.cursorPos]) + text + string(runes[m.cursorPos:])
	m.cursorPos += len([]rune(text))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key := msg.String(); key == "esc" || key == "ctrl+g" || key == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	// Typable key input; the field is disabled while a request is in flight.
	// The cursor position is a rune index into the buffer.
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !m.convo.InFlight() {
		m.insertAtCursor(string(msg.Runes))
		return m, nil
	}
	if msg.Type == tea.KeySpace && !m.convo.InFlight() {
		m.insertAtCursor(" ")
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+g":
		m.showHelp = true

	case "enter":
		query, ok := m.convo.Submit(m.inputBuffer)
		if !ok {
			return m, nil
		}
		m.inputBuffer = ""
		m.cursorPos = 0
		m.selectedIdx = -1
		m.status = "Waiting for answer..."
		m.autoScroll = true
		m.scrollOffset = 0
		return m, tea.Batch(askCmd(m.client, query), spinnerTick())

	case "backspace":
		if m.cursorPos > 0 && len(m.inputBuffer) > 0 {
			runes := []rune(m.inputBuffer)
			m.inputBuffer = string(runes[:m.cursorPos-1]) + string(runes[m.cursorPos:])
			m.cursorPos--
		}

	case "delete":
		runes := []rune(m.inputBuffer)
		if m.cursorPos < len(runes) {
			m.inputBuffer = string(runes[:m.cursorPos]) + string(runes[m.cursorPos+1:])
		}

	case "left":
		if m.cursorPos > 0 {
			m.cursorPos--
		}

	case "right":
		if m.cursorPos < len([]rune(m.inputBuffer)) {
			m.cursorPos++
		}

	case "home":
		m.cursorPos = 0

	case "end":
		m.cursorPos = len([]rune(m.inputBuffer))

	case "up":
		if m.inputBuffer == "" {
			visible := m.visibleMessages()
			if m.selectedIdx == -1 && len(visible) > 0 {
				m.selectedIdx = len(visible) - 1
			} else if m.selectedIdx > 0 {
				m.selectedIdx--
			}
			m.autoScroll = false
		}

	case "down":
		if m.inputBuffer == "" {
			visible := m.visibleMessages()
			if m.selectedIdx >= 0 && m.selectedIdx < len(visible)-1 {
				m.selectedIdx++
			} else if m.selectedIdx == len(visible)-1 {
				m.selectedIdx = -1
				m.autoScroll = true
			}
		}

	case "esc":
		m.selectedIdx = -1
		m.autoScroll = true
		m.scrollOffset = 0

	case "tab":
		// Toggle source disclosure for the selected message. The state is
		// local to the render layer, keyed by message identity.
		visible := m.visibleMessages()
		if m.selectedIdx >= 0 && m.selectedIdx < len(visible) {
			selected := visible[m.selectedIdx]
			if len(selected.Sources) > 0 {
				m.expanded[selected.ID] = !m.expanded[selected.ID]
			}
		}

	case "pgup":
		m.scrollOffset += m.chatHeight() / 2
		m.autoScroll = false

	case "pgdown":
		m.scrollOffset -= m.chatHeight() / 2
		if m.scrollOffset <= 0 {
			m.scrollOffset = 0
			m.autoScroll = true
		}

	case "ctrl+y":
		visible := m.visibleMessages()
		if m.selectedIdx >= 0 && m.selectedIdx < len(visible) {
			safe := strings.ReplaceAll(visible[m.selectedIdx].Content, "\x00", "")
			if err := clipboard.WriteAll(safe); err == nil {
				m.status = "Copied message to clipboard"
			} else {
				m.status = "Clipboard unavailable"
			}
		}

	case "ctrl+x":
		if m.inputBuffer != "" {
			safe := strings.ReplaceAll(m.inputBuffer, "\x00", "")
			clipboard.WriteAll(safe)
			m.inputBuffer = ""
			m.cursorPos = 0
		}

	case "ctrl+v":
		if !m.convo.InFlight() {
			if paste, err := clipboard.ReadAll(); err == nil {
				m.insertAtCursor(paste)
			}
		}

	case "ctrl+e":
		if !m.convo.InFlight() {
			path, err := writeTranscript(m.transcriptDir, m.convo.Messages())
			if err != nil {
				m.logger.Warn("transcript export failed", zap.Error(err))
				m.status = "Transcript export failed"
			} else {
				m.status = "Transcript saved to " + path
			}
		}
	}

	return m, nil
}
