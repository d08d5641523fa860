package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Provider exposes the tools of all connected MCP servers as one Tool.
type Provider struct {
	client *Client
	tools  []*remoteTool
}

type remoteTool struct {
	serverName string
	tool       *mcp.Tool
	funcDecl   *genai.FunctionDeclaration
}

// NewProvider builds function declarations for every tool of every
// connected server.
func NewProvider(client *Client) (*Provider, error) {
	p := &Provider{client: client}

	for _, serverName := range client.ServerNames() {
		tools, err := client.Tools(serverName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get tools from server",
				goerr.V("server", serverName))
		}

		for _, t := range tools {
			funcDecl, err := toFunctionDeclaration(t)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert tool",
					goerr.V("server", serverName),
					goerr.V("tool", t.Name))
			}
			p.tools = append(p.tools, &remoteTool{
				serverName: serverName,
				tool:       t,
				funcDecl:   funcDecl,
			})
		}
	}

	return p, nil
}

func toFunctionDeclaration(t *mcp.Tool) (*genai.FunctionDeclaration, error) {
	funcDecl := &genai.FunctionDeclaration{
		Name:        t.Name,
		Description: t.Description,
	}

	if t.InputSchema != nil {
		// InputSchema is an arbitrary value; round-trip through JSON to
		// obtain a typed schema
		schemaJSON, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal input schema")
		}

		var jsSchema jsonschema.Schema
		if err := json.Unmarshal(schemaJSON, &jsSchema); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal input schema")
		}

		schema, err := toGenaiSchema(&jsSchema)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert input schema")
		}
		funcDecl.Parameters = schema
	}

	return funcDecl, nil
}

func (p *Provider) Spec() *genai.Tool {
	if len(p.tools) == 0 {
		return nil
	}

	funcDecls := make([]*genai.FunctionDeclaration, len(p.tools))
	for i, t := range p.tools {
		funcDecls[i] = t.funcDecl
	}
	return &genai.Tool{FunctionDeclarations: funcDecls}
}

func (p *Provider) Prompt(ctx context.Context) string {
	if len(p.tools) == 0 {
		return ""
	}
	return "You also have access to MCP (Model Context Protocol) tools that provide additional capabilities such as file system access or external data sources."
}

func (p *Provider) Flags() []cli.Flag {
	return nil
}

// Execute routes a function call to the server that owns the tool.
func (p *Provider) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	var target *remoteTool
	for _, t := range p.tools {
		if t.funcDecl.Name == fc.Name {
			target = t
			break
		}
	}
	if target == nil {
		return nil, goerr.New("tool not found", goerr.V("name", fc.Name))
	}

	result, err := p.client.CallTool(ctx, target.serverName, target.tool.Name, fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call MCP tool")
	}

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal result")
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": string(resultJSON)},
	}, nil
}
