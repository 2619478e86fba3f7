package ai

import "context"

// Generator is a single-turn prompt-in, text-out generation provider.
// The interview, feedback and match services treat the response as opaque
// text; any structure (such as JSON) is extracted by the caller.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
