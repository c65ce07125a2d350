package conversation

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewSeedsWelcomeMessage(t *testing.T) {
	c := New(zap.NewNop())
	if c.Len() != 1 {
		t.Fatalf("expected 1 seeded message, got %d", c.Len())
	}
	first := c.Messages()[0]
	if first.Role != RoleAssistant || first.Content != WelcomeText {
		t.Fatalf("unexpected welcome message: %+v", first)
	}
	if first.IsLoading || first.Err {
		t.Fatalf("welcome message must not be loading or errored")
	}
}

func TestSubmitAppendsUserMessageAndPlaceholder(t *testing.T) {
	c := New(zap.NewNop())
	before := c.Len()

	query, ok := c.Submit("  What is the duty on second-hand clothes?  ")
	if !ok {
		t.Fatalf("expected submit to be accepted")
	}
	if query != "What is the duty on second-hand clothes?" {
		t.Fatalf("expected trimmed query, got %q", query)
	}
	if c.Len() != before+2 {
		t.Fatalf("expected %d messages, got %d", before+2, c.Len())
	}
	if !c.InFlight() {
		t.Fatalf("expected in-flight after submit")
	}

	msgs := c.Messages()
	user := msgs[len(msgs)-2]
	if user.Role != RoleUser || user.Content != query {
		t.Fatalf("unexpected user message: %+v", user)
	}
	placeholder := msgs[len(msgs)-1]
	if placeholder.Role != RoleAssistant || !placeholder.IsLoading || placeholder.Content != "" {
		t.Fatalf("unexpected placeholder: %+v", placeholder)
	}
}

func TestSubmitEmptyOrWhitespaceIsNoOp(t *testing.T) {
	c := New(zap.NewNop())
	before := c.Len()

	for _, input := range []string{"", "   ", "\t\n"} {
		if _, ok := c.Submit(input); ok {
			t.Fatalf("expected submit(%q) to be rejected", input)
		}
	}
	if c.Len() != before || c.InFlight() {
		t.Fatalf("expected no observable effect, len=%d inFlight=%v", c.Len(), c.InFlight())
	}
}

func TestSubmitWhileInFlightIsNoOp(t *testing.T) {
	c := New(zap.NewNop())
	if _, ok := c.Submit("first question"); !ok {
		t.Fatalf("first submit rejected")
	}
	length := c.Len()

	if _, ok := c.Submit("second question"); ok {
		t.Fatalf("expected second submit to be rejected while in flight")
	}
	if c.Len() != length {
		t.Fatalf("conversation length changed: %d -> %d", length, c.Len())
	}
	if !c.InFlight() {
		t.Fatalf("in-flight flag changed by rejected submit")
	}
}

func TestResolveReplacesPlaceholderInPlace(t *testing.T) {
	c := New(zap.NewNop())
	baseline := c.Len()
	c.Submit("What is the duty on second-hand clothes?")

	sources := []Source{
		{Text: "Tariff Schedule Part II, Item 12", Metadata: map[string]any{"section": "12"}},
	}
	c.Resolve("15% ad valorem", sources)

	if c.Len() != baseline+2 {
		t.Fatalf("expected length %d after resolve, got %d", baseline+2, c.Len())
	}
	if c.InFlight() {
		t.Fatalf("in-flight flag stuck after resolve")
	}

	final := c.Messages()[c.Len()-1]
	if final.Role != RoleAssistant || final.IsLoading || final.Err {
		t.Fatalf("unexpected final message: %+v", final)
	}
	if final.Content != "15% ad valorem" {
		t.Fatalf("expected answer content, got %q", final.Content)
	}
	if len(final.Sources) != 1 || final.Sources[0].Text != "Tariff Schedule Part II, Item 12" {
		t.Fatalf("unexpected sources: %+v", final.Sources)
	}
	if final.Sources[0].Metadata["section"] != "12" {
		t.Fatalf("metadata not carried through: %+v", final.Sources[0].Metadata)
	}
}

func TestResolvePreservesSourceOrder(t *testing.T) {
	c := New(zap.NewNop())
	c.Submit("import levy on vehicles")

	sources := []Source{
		{Text: "first"},
		{Text: "second"},
		{Text: "third"},
	}
	c.Resolve("answer", sources)

	final := c.Messages()[c.Len()-1]
	if len(final.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(final.Sources))
	}
	for i, want := range []string{"first", "second", "third"} {
		if final.Sources[i].Text != want {
			t.Fatalf("source %d = %q, want %q", i, final.Sources[i].Text, want)
		}
	}
}

func TestResolveEmptyAnswerUsesFallback(t *testing.T) {
	c := New(zap.NewNop())
	c.Submit("something obscure")

	sources := []Source{{Text: "still cited"}}
	c.Resolve("", sources)

	final := c.Messages()[c.Len()-1]
	if final.Content != FallbackAnswer {
		t.Fatalf("expected fallback answer, got %q", final.Content)
	}
	// Sources returned without an answer are still shown.
	if len(final.Sources) != 1 {
		t.Fatalf("expected sources to be kept, got %+v", final.Sources)
	}
}

func TestFailReplacesPlaceholderWithErrorMessage(t *testing.T) {
	c := New(zap.NewNop())
	c.Submit("first question")
	c.Resolve("first answer", nil)
	baseline := c.Len()

	c.Submit("second question")
	c.Fail()

	if c.Len() != baseline+2 {
		t.Fatalf("expected length %d after fail, got %d", baseline+2, c.Len())
	}
	if c.InFlight() {
		t.Fatalf("in-flight flag stuck after fail")
	}

	final := c.Messages()[c.Len()-1]
	if !final.Err || final.Content != ConnectivityErrorText {
		t.Fatalf("unexpected failure message: %+v", final)
	}
	if len(final.Sources) != 0 {
		t.Fatalf("failure message must not carry sources")
	}

	// Failure is local to one exchange: prior messages untouched.
	if c.Messages()[baseline-1].Content != "first answer" {
		t.Fatalf("prior message altered by failed exchange")
	}
}

func TestAtMostOnePlaceholderAndAlwaysLast(t *testing.T) {
	c := New(zap.NewNop())
	c.Submit("q1")
	c.Resolve("a1", nil)
	c.Submit("q2")

	loading := 0
	for i, m := range c.Messages() {
		if m.IsLoading {
			loading++
			if i != c.Len()-1 {
				t.Fatalf("placeholder at index %d, expected last (%d)", i, c.Len()-1)
			}
		}
	}
	if loading != 1 {
		t.Fatalf("expected exactly 1 placeholder, got %d", loading)
	}
}

func TestSubmitAcceptedAgainAfterResolution(t *testing.T) {
	c := New(zap.NewNop())
	c.Submit("q1")
	c.Fail()
	if _, ok := c.Submit("q2"); !ok {
		t.Fatalf("expected submit to be accepted after failure cleared in-flight")
	}
}

func TestMessageIDsAreUnique(t *testing.T) {
	c := New(zap.NewNop())
	c.Submit("q1")
	c.Resolve("a1", nil)
	c.Submit("q2")
	c.Fail()

	seen := map[string]bool{}
	for _, m := range c.Messages() {
		if m.ID == "" {
			t.Fatalf("message without id: %+v", m)
		}
		if seen[m.ID] {
			t.Fatalf("duplicate message id %q", m.ID)
		}
		seen[m.ID] = true
	}
}
