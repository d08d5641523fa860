package tool

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// ErrToolNotFound indicates the model requested an action outside the
// registered set
var ErrToolNotFound = goerr.New("tool not found")

// Registry maps function-declaration names to their tools
type Registry struct {
	byName   map[string]Tool
	allTools []Tool
	specs    []*genai.Tool
}

// New creates a registry over the given tools. Tools without function
// declarations contribute nothing to the dispatch table.
func New(tools ...Tool) *Registry {
	r := &Registry{
		byName:   make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		spec := t.Spec()
		if spec == nil || len(spec.FunctionDeclarations) == 0 {
			continue
		}
		r.specs = append(r.specs, spec)
		for _, fd := range spec.FunctionDeclarations {
			r.byName[fd.Name] = t
		}
	}

	return r
}

// Specs returns all tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	return r.specs
}

// Prompts concatenates the extra prompt text of all tools
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.allTools {
		if p := t.Prompt(ctx); p != "" {
			prompts = append(prompts, p)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Flags combines the CLI flags of all tools
func (r *Registry) Flags() []cli.Flag {
	var flags []cli.Flag
	for _, t := range r.allTools {
		if toolFlags := t.Flags(); toolFlags != nil {
			flags = append(flags, toolFlags...)
		}
	}
	return flags
}

// Execute dispatches a function call to the matching tool
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	t, ok := r.byName[fc.Name]
	if !ok {
		return nil, goerr.Wrap(ErrToolNotFound, "unknown action requested", goerr.V("name", fc.Name))
	}

	return t.Execute(ctx, fc)
}
