// conversation.go - Conversation state manager for the chat client.
// Owns the ordered message sequence and the single in-flight flag; every
// mutation goes through Submit, Resolve or Fail so the UI never observes an
// inconsistent intermediate state.

package conversation

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// WelcomeText seeds every new conversation as the first assistant message.
	WelcomeText = "Hello! I am the NCS Inquiry Assistant. Ask me anything about customs regulations, tariffs, duties and clearance procedures."

	// FallbackAnswer stands in when the answering service returns an empty answer.
	FallbackAnswer = "I could not find an answer to that question in the knowledge base."

	// ConnectivityErrorText is the fixed message shown for a failed exchange.
	ConnectivityErrorText = "Sorry, I couldn't reach the knowledge service. Please check your connection and try again."
)

// Source is one cited evidence snippet attached to an assistant message.
// Metadata is opaque to the client and carried through for display only.
type Source struct {
	Text     string
	Metadata map[string]any
}

// Message is one turn in the conversation.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Sources   []Source
	IsLoading bool
	Err       bool
}

// Conversation holds the message sequence for one page session. The sequence
// is append-only except for the placeholder-replace step, and at most one
// message has IsLoading=true at any time: the last element, while an exchange
// is outstanding.
type Conversation struct {
	messages []Message
	inFlight bool
	logger   *zap.Logger
}

// New creates a conversation seeded with the welcome message.
func New(logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conversation{
		messages: []Message{{
			ID:      uuid.NewString(),
			Role:    RoleAssistant,
			Content: WelcomeText,
		}},
		logger: logger,
	}
}

// Messages returns the current sequence. Callers must not mutate it.
func (c *Conversation) Messages() []Message { return c.messages }

// Len returns the number of messages, the placeholder included.
func (c *Conversation) Len() int { return len(c.messages) }

// InFlight reports whether an exchange is outstanding.
func (c *Conversation) InFlight() bool { return c.inFlight }

// Submit starts a new exchange: it appends the user message and the loading
// placeholder, marks the exchange in flight and returns the trimmed query for
// the caller to dispatch. Empty input after trimming, or a call while an
// exchange is already outstanding, is a silent no-op.
func (c *Conversation) Submit(text string) (string, bool) {
	query := strings.TrimSpace(text)
	if query == "" || c.inFlight {
		return "", false
	}
	c.messages = append(c.messages,
		Message{ID: uuid.NewString(), Role: RoleUser, Content: query},
		Message{ID: uuid.NewString(), Role: RoleAssistant, IsLoading: true},
	)
	c.inFlight = true
	c.logger.Debug("exchange started", zap.Int("messages", len(c.messages)))
	return query, true
}

// Resolve finishes the outstanding exchange with the service's answer,
// replacing the placeholder in place. An empty answer becomes FallbackAnswer;
// sources keep the order the service returned them in.
func (c *Conversation) Resolve(answer string, sources []Source) {
	if answer == "" {
		answer = FallbackAnswer
	}
	c.replacePlaceholder(Message{
		ID:      uuid.NewString(),
		Role:    RoleAssistant,
		Content: answer,
		Sources: sources,
	})
	c.logger.Debug("exchange answered", zap.Int("sources", len(sources)))
}

// Fail finishes the outstanding exchange with the connectivity-error message.
// Prior messages are untouched; the user must resubmit manually.
func (c *Conversation) Fail() {
	c.replacePlaceholder(Message{
		ID:      uuid.NewString(),
		Role:    RoleAssistant,
		Content: ConnectivityErrorText,
		Err:     true,
	})
	c.logger.Debug("exchange failed")
}

// replacePlaceholder swaps the trailing placeholder for the finalized message
// and clears the in-flight flag. The flag is cleared on every path so a
// completion can never leave it stuck true.
func (c *Conversation) replacePlaceholder(final Message) {
	if !c.inFlight {
		return
	}
	c.inFlight = false
	if n := len(c.messages); n > 0 && c.messages[n-1].IsLoading {
		c.messages[n-1] = final
		return
	}
	// Placeholder missing would mean a bug elsewhere; still deliver the result.
	c.messages = append(c.messages, final)
}
