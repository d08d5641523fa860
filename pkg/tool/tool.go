// Package tool defines the closed dispatch table for model-requested
// actions. The generation collaborator may call a locally-defined action by
// name with structured arguments; the set of available actions is fixed at
// registry construction, so it is statically verifiable.
package tool

import (
	"context"

	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Tool is one action the model can invoke during a chat session
type Tool interface {
	// Spec returns the tool specification for Gemini function calling
	Spec() *genai.Tool

	// Execute runs the tool with the given function call and returns the
	// response
	Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error)

	// Prompt returns additional information to be added to the system
	// prompt. Returns empty string if no additional prompt is needed.
	Prompt(ctx context.Context) string

	// Flags returns CLI flags for this tool, or nil
	Flags() []cli.Flag
}
