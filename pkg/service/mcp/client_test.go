package mcp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/nook/pkg/service/mcp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/genai"
)

func newEchoServer() *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "test-http-server",
		Version: "1.0.0",
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "echo",
		Description: "Echo back the message",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, params *struct {
		Message string `json:"message" jsonschema:"Message to echo"`
	}) (*mcpsdk.CallToolResult, any, error) {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: params.Message},
			},
		}, nil, nil
	})

	return server
}

func startHTTPServer(t *testing.T, server *mcpsdk.Server) *httptest.Server {
	handler := mcpsdk.NewStreamableHTTPHandler(func(r *http.Request) *mcpsdk.Server {
		return server
	}, nil)
	testServer := httptest.NewServer(handler)
	t.Cleanup(testServer.Close)
	return testServer
}

func TestStdioTransport(t *testing.T) {
	ctx := context.Background()

	client := mcp.NewClient()
	err := client.Connect(ctx, mcp.ServerConfig{
		Name:      "test-stdio",
		Transport: "stdio",
		Command:   []string{"go", "run", "./testdata/stdio/main.go"},
	})
	gt.NoError(t, err)
	defer client.Close()

	servers := client.ServerNames()
	gt.A(t, servers).Length(1)
	gt.Equal(t, servers[0], "test-stdio")

	tools, err := client.Tools("test-stdio")
	gt.NoError(t, err)
	gt.A(t, tools).Length(1)
	gt.Equal(t, tools[0].Name, "greet")

	result, err := client.CallTool(ctx, "test-stdio", "greet", map[string]any{
		"name": "Nook",
	})
	gt.NoError(t, err)
	gt.V(t, result).NotNil()
	gt.A(t, result.Content).Length(1)

	textContent, ok := result.Content[0].(*mcpsdk.TextContent)
	gt.True(t, ok)
	gt.Equal(t, textContent.Text, "Hello, Nook!")
}

func TestHTTPStreamableTransport(t *testing.T) {
	ctx := context.Background()
	testServer := startHTTPServer(t, newEchoServer())

	client := mcp.NewClient()
	err := client.Connect(ctx, mcp.ServerConfig{
		Name:      "test-http",
		Transport: "http",
		URL:       testServer.URL,
	})
	gt.NoError(t, err)
	defer client.Close()

	tools, err := client.Tools("test-http")
	gt.NoError(t, err)
	gt.A(t, tools).Length(1)
	gt.Equal(t, tools[0].Name, "echo")

	result, err := client.CallTool(ctx, "test-http", "echo", map[string]any{
		"message": "Hello from HTTP!",
	})
	gt.NoError(t, err)
	gt.A(t, result.Content).Length(1)

	textContent, ok := result.Content[0].(*mcpsdk.TextContent)
	gt.True(t, ok)
	gt.Equal(t, textContent.Text, "Hello from HTTP!")
}

func TestUnsupportedTransport(t *testing.T) {
	client := mcp.NewClient()
	err := client.Connect(context.Background(), mcp.ServerConfig{
		Name:      "bad",
		Transport: "carrier-pigeon",
	})
	gt.Error(t, err)
}

func TestProviderExposesTools(t *testing.T) {
	ctx := context.Background()
	testServer := startHTTPServer(t, newEchoServer())

	client := mcp.NewClient()
	gt.NoError(t, client.Connect(ctx, mcp.ServerConfig{
		Name:      "http",
		Transport: "http",
		URL:       testServer.URL,
	}))
	defer client.Close()

	provider, err := mcp.NewProvider(client)
	gt.NoError(t, err)

	spec := provider.Spec()
	gt.V(t, spec).NotNil()
	gt.A(t, spec.FunctionDeclarations).Length(1)
	gt.Equal(t, spec.FunctionDeclarations[0].Name, "echo")

	resp, err := provider.Execute(ctx, genai.FunctionCall{
		Name: "echo",
		Args: map[string]any{"message": "roundtrip"},
	})
	gt.NoError(t, err)
	gt.V(t, resp).NotNil()

	resultText, ok := resp.Response["result"].(string)
	gt.True(t, ok)
	gt.S(t, resultText).Contains("roundtrip")
}

func TestProviderUnknownTool(t *testing.T) {
	ctx := context.Background()
	testServer := startHTTPServer(t, newEchoServer())

	client := mcp.NewClient()
	gt.NoError(t, client.Connect(ctx, mcp.ServerConfig{
		Name:      "http",
		Transport: "http",
		URL:       testServer.URL,
	}))
	defer client.Close()

	provider, err := mcp.NewProvider(client)
	gt.NoError(t, err)

	_, err = provider.Execute(ctx, genai.FunctionCall{Name: "missing"})
	gt.Error(t, err)
}
