// commands.go - Bubble Tea commands and messages for the chat view.
// Exactly one askCmd runs per exchange; its result comes back as a single
// answerMsg that is routed to exactly one of Resolve or Fail.

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ncschat/internal/backend"
)

// Asker is the outbound call to the answering service.
type Asker interface {
	Ask(ctx context.Context, query string) (backend.Result, error)
}

// answerMsg delivers the outcome of one exchange.
type answerMsg struct {
	result backend.Result
	err    error
}

type spinnerTickMsg struct{}

// askCmd issues the single outbound request for an exchange. No cancellation
// is threaded through: an abandoned request is dropped with the program.
func askCmd(client Asker, query string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.Ask(context.Background(), query)
		return answerMsg{result: result, err: err}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}
