// view.go - Rendering for the chat window: role-styled bubbles, the source
// citation badges with their disclosure blocks, the typing indicator and the
// input area. Pure projection of model state; no mutation happens here.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"github.com/mitchellh/go-wordwrap"

	"ncschat/internal/conversation"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	userLabelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("238")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	assistantBubbleStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(lipgloss.Color("252")).
				Padding(0, 2).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	errorBubbleStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(lipgloss.Color("252")).
				Padding(0, 2).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("196"))

	sourceBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("107")).Italic(true)

	sourceBlockStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("145")).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("107")).
				PaddingLeft(1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2)
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m Model) spinnerChar() string {
	return spinnerChars[m.spinner%len(spinnerChars)]
}

// chatHeight is the number of terminal rows available for the message area.
func (m Model) chatHeight() int {
	// header + status + input box (3 rows of text + 2 border rows)
	h := m.height - 2 - 5
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.showHelp {
		return m.helpView()
	}

	header := titleStyle.Render(fmt.Sprintf("NCS Inquiry Chat | Messages: %d", len(m.visibleMessages())))

	statusText := m.status
	if m.convo.InFlight() {
		statusText = loadingStyle.Render(m.spinnerChar() + " " + m.status)
	}
	statusText += " | Enter to send, Tab to show sources, Ctrl+G for help, Ctrl+C to quit"
	status := statusStyle.Render(statusText)

	chat := m.chatView()
	input := m.inputView()

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, status, chat, input)
}

// chatView renders the message bubbles and applies scrolling: the window
// snaps to the latest message whenever the conversation grows.
func (m Model) chatView() string {
	var blocks []string
	for i, msg := range m.visibleMessages() {
		blocks = append(blocks, m.renderMessage(msg, i == m.selectedIdx))
	}

	// The typing indicator stands in for the placeholder while a request is
	// outstanding; the placeholder itself is never rendered.
	if m.convo.InFlight() {
		blocks = append(blocks, loadingStyle.Render(m.spinnerChar()+" Assistant is typing..."))
	}

	content := strings.Join(blocks, "\n")
	lines := strings.Split(content, "\n")

	height := m.chatHeight()
	if len(lines) <= height {
		return strings.Join(padLines(lines, height), "\n")
	}

	offset := m.scrollOffset
	if m.autoScroll {
		offset = 0
	}
	maxOffset := len(lines) - height
	if offset > maxOffset {
		offset = maxOffset
	}
	start := len(lines) - height - offset
	return strings.Join(lines[start:start+height], "\n")
}

func (m Model) renderMessage(msg conversation.Message, selected bool) string {
	bubbleWidth := m.width * 2 / 3
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	wrapped := wordwrap.WrapString(msg.Content, uint(bubbleWidth-6))

	var label string
	var bubble lipgloss.Style
	switch {
	case msg.Role == conversation.RoleUser:
		label = userLabelStyle.Render("You")
		bubble = userBubbleStyle
	case msg.Err:
		label = assistantLabelStyle.Render("Assistant")
		bubble = errorBubbleStyle
	default:
		label = assistantLabelStyle.Render("Assistant")
		bubble = assistantBubbleStyle
	}
	if selected {
		label += statusStyle.Render(" ◀")
	}

	body := wrapped
	if len(msg.Sources) > 0 {
		body += "\n" + m.renderSources(msg, bubbleWidth)
	}

	block := label + "\n" + bubble.Width(bubbleWidth).Render(body)
	if msg.Role == conversation.RoleUser {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}
	return block
}

// renderSources renders the collapsed citation badge, or the quoted excerpt
// blocks when the message's disclosure is toggled open.
func (m Model) renderSources(msg conversation.Message, width int) string {
	n := len(msg.Sources)
	noun := "Sources"
	if n == 1 {
		noun = "Source"
	}

	if !m.expanded[msg.ID] {
		return sourceBadgeStyle.Render(fmt.Sprintf("▸ %d %s Cited", n, noun))
	}

	out := sourceBadgeStyle.Render(fmt.Sprintf("▾ %d %s Cited", n, noun))
	for _, src := range msg.Sources {
		quoted := wordwrap.WrapString("“"+src.Text+"”", uint(width-8))
		out += "\n" + sourceBlockStyle.Render(quoted)
	}
	return out
}

func (m Model) inputView() string {
	var text string
	switch {
	case m.convo.InFlight():
		text = m.spinnerChar() + " Waiting for response..."
	case m.inputBuffer == "":
		text = statusStyle.Render("Ask a question...")
	default:
		runes := []rune(m.inputBuffer)
		var b strings.Builder
		for i := 0; i <= len(runes); i++ {
			if i == m.cursorPos {
				b.WriteString("│")
			}
			if i < len(runes) {
				b.WriteRune(runes[i])
			}
		}
		text = b.String()
	}

	lines := strings.Split(text, "\n")
	for len(lines) < 3 {
		lines = append(lines, "")
	}
	return inputBoxStyle.Width(m.width - 2).Render(strings.Join(lines[:3], "\n"))
}

func (m Model) helpView() string {
	banner := figure.NewFigure("NCS CHAT", "", true).String()
	help := strings.Join([]string{
		banner,
		"Enter       send question",
		"Tab         show/hide sources for the selected message",
		"Up/Down     select a message (with empty input)",
		"Esc         clear selection, follow latest message",
		"PgUp/PgDn   scroll history",
		"Ctrl+Y      copy selected message",
		"Ctrl+X/V    cut / paste input",
		"Ctrl+E      export transcript",
		"Ctrl+C      quit",
		"",
		"Esc or Ctrl+G to close this help",
	}, "\n")
	box := helpBoxStyle.Render(help)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func padLines(lines []string, height int) []string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}
