// transcript.go - On-demand export of the current conversation to a markdown
// file. This is a one-way dump for the user's records; the conversation is
// never reloaded from it.

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ncschat/internal/conversation"
)

// writeTranscript dumps the conversation to a timestamped markdown file in
// dir and returns the file path. The loading placeholder is skipped.
func writeTranscript(dir string, messages []conversation.Message) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create transcript directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# NCS Inquiry Chat Transcript\n\n")
	b.WriteString("Exported: " + time.Now().Format(time.RFC3339) + "\n\n")

	for _, msg := range messages {
		if msg.IsLoading {
			continue
		}
		switch {
		case msg.Role == conversation.RoleUser:
			b.WriteString("## You\n\n")
		case msg.Err:
			b.WriteString("## Assistant (error)\n\n")
		default:
			b.WriteString("## Assistant\n\n")
		}
		b.WriteString(msg.Content + "\n\n")
		for i, src := range msg.Sources {
			b.WriteString(fmt.Sprintf("> Source %d: %s\n", i+1, src.Text))
		}
		if len(msg.Sources) > 0 {
			b.WriteString("\n")
		}
	}

	name := "ncschat-transcript-" + time.Now().Format("20060102-150405") + ".md"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}
