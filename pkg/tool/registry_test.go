package tool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/nook/pkg/tool"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

type fakeTool struct {
	name     string
	prompt   string
	flags    []cli.Flag
	executed bool
}

func (f *fakeTool) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{Name: f.name},
		},
	}
}

func (f *fakeTool) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	f.executed = true
	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": "ok"},
	}, nil
}

func (f *fakeTool) Prompt(ctx context.Context) string { return f.prompt }
func (f *fakeTool) Flags() []cli.Flag                 { return f.flags }

func TestRegistryDispatch(t *testing.T) {
	search := &fakeTool{name: "search_knowledge_base"}
	save := &fakeTool{name: "create_knowledge_node"}
	registry := tool.New(search, save)

	resp, err := registry.Execute(context.Background(), genai.FunctionCall{
		Name: "create_knowledge_node",
		Args: map[string]any{"title": "x"},
	})
	gt.NoError(t, err)
	gt.V(t, resp).NotNil()
	gt.True(t, save.executed)
	gt.True(t, !search.executed)
}

func TestRegistryUnknownTool(t *testing.T) {
	registry := tool.New(&fakeTool{name: "search_knowledge_base"})

	_, err := registry.Execute(context.Background(), genai.FunctionCall{
		Name: "delete_everything",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, tool.ErrToolNotFound))
}

func TestRegistrySpecs(t *testing.T) {
	registry := tool.New(
		&fakeTool{name: "search_knowledge_base"},
		&fakeTool{name: "create_knowledge_node"},
	)
	gt.A(t, registry.Specs()).Length(2)
}

func TestRegistryPrompts(t *testing.T) {
	registry := tool.New(
		&fakeTool{name: "a", prompt: "first hint"},
		&fakeTool{name: "b"},
		&fakeTool{name: "c", prompt: "second hint"},
	)

	prompts := registry.Prompts(context.Background())
	gt.S(t, prompts).Contains("first hint")
	gt.S(t, prompts).Contains("second hint")
}

func TestRegistryFlags(t *testing.T) {
	registry := tool.New(
		&fakeTool{name: "a", flags: []cli.Flag{&cli.StringFlag{Name: "endpoint"}}},
		&fakeTool{name: "b"},
	)
	gt.A(t, registry.Flags()).Length(1)
}
