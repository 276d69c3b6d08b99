package services

import (
	"context"
	"fmt"

	"github.com/agenthub/agenthub/internal/models"
)

// Reply is the assistant turn produced for one user message.
type Reply struct {
	Content    string
	TokenCount *int
	Metadata   map[string]any
}

// Responder produces the assistant reply for a conversation turn. The
// ledger does not care how the reply is generated; real LLM providers and
// the test fixture plug in behind this interface.
type Responder interface {
	Respond(ctx context.Context, agent *models.Agent, history []models.Message, input string) (Reply, error)
}

// PlaceholderResponder echoes the user input. It stands in until a real
// provider integration is wired behind the Responder seam.
type PlaceholderResponder struct{}

// Respond implements Responder.
func (PlaceholderResponder) Respond(_ context.Context, _ *models.Agent, _ []models.Message, input string) (Reply, error) {
	return Reply{
		Content:  fmt.Sprintf("This is a placeholder response. The AI integration is not yet implemented. You said: %q", input),
		Metadata: map[string]any{"plugin": nil, "latency": 0},
	}, nil
}
