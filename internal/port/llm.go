package port

import "context"

// LLM represents a chat language model used for answer synthesis.
type LLM interface {
	// Complete generates a response to the user prompt under the given
	// system prompt.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
