// Package mcp connects external Model Context Protocol servers and
// exposes their tools to chat sessions.
package mcp

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/tool"
	"github.com/m-mizutani/nook/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

// Client manages sessions with multiple MCP servers.
type Client struct {
	servers map[string]*server
}

type server struct {
	name    string
	client  *mcp.Client
	session *mcp.ClientSession
	tools   []*mcp.Tool
}

// ServerConfig describes one MCP server to connect to.
type ServerConfig struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"` // "stdio" or "http"
	Command   []string          `yaml:"command"`
	URL       string            `yaml:"url"`
	Env       map[string]string `yaml:"env"`
}

func NewClient() *Client {
	return &Client{
		servers: make(map[string]*server),
	}
}

// Connect establishes a session with one server and caches its tool list.
func (c *Client) Connect(ctx context.Context, cfg ServerConfig) error {
	if _, exists := c.servers[cfg.Name]; exists {
		return goerr.New("server already connected", goerr.V("name", cfg.Name))
	}

	mcpClient := mcp.NewClient(&mcp.Implementation{
		Name:    "nook",
		Version: "0.1.0",
	}, nil)

	var transport mcp.Transport
	var err error
	switch cfg.Transport {
	case "stdio":
		transport, err = stdioTransport(cfg)
	case "http":
		transport, err = httpTransport(cfg)
	default:
		return goerr.New("unsupported transport",
			goerr.V("transport", cfg.Transport),
			goerr.V("supported", []string{"stdio", "http"}))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to create transport", goerr.V("server", cfg.Name))
	}

	session, err := mcpClient.Connect(ctx, transport, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to connect to MCP server", goerr.V("server", cfg.Name))
	}

	toolsResult, err := session.ListTools(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to list tools", goerr.V("server", cfg.Name))
	}

	c.servers[cfg.Name] = &server{
		name:    cfg.Name,
		client:  mcpClient,
		session: session,
		tools:   toolsResult.Tools,
	}

	return nil
}

func stdioTransport(cfg ServerConfig) (mcp.Transport, error) {
	if len(cfg.Command) == 0 {
		return nil, goerr.New("command is required for stdio transport")
	}

	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	if len(cfg.Env) > 0 {
		env := cmd.Env
		for k, v := range cfg.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	return &mcp.CommandTransport{Command: cmd}, nil
}

func httpTransport(cfg ServerConfig) (mcp.Transport, error) {
	if cfg.URL == "" {
		return nil, goerr.New("url is required for http transport")
	}
	return &mcp.StreamableClientTransport{Endpoint: cfg.URL}, nil
}

// Tools returns the cached tool list of one server.
func (c *Client) Tools(serverName string) ([]*mcp.Tool, error) {
	srv, exists := c.servers[serverName]
	if !exists {
		return nil, goerr.New("server not found", goerr.V("name", serverName))
	}
	return srv.tools, nil
}

// ServerNames returns the names of all connected servers.
func (c *Client) ServerNames() []string {
	names := make([]string, 0, len(c.servers))
	for name := range c.servers {
		names = append(names, name)
	}
	return names
}

// CallTool invokes a tool on a specific server.
func (c *Client) CallTool(ctx context.Context, serverName, toolName string, arguments map[string]any) (*mcp.CallToolResult, error) {
	srv, exists := c.servers[serverName]
	if !exists {
		return nil, goerr.New("server not found", goerr.V("name", serverName))
	}

	result, err := srv.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: arguments,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call tool",
			goerr.V("server", serverName),
			goerr.V("tool", toolName))
	}

	return result, nil
}

// Close shuts down all sessions.
func (c *Client) Close() error {
	for name, srv := range c.servers {
		if err := srv.session.Close(); err != nil {
			return goerr.Wrap(err, "failed to close session", goerr.V("server", name))
		}
	}
	c.servers = make(map[string]*server)
	return nil
}

// Config is the YAML configuration file structure.
type Config struct {
	Servers []ServerConfig `yaml:"servers"`
}

// LoadAndConnect reads the configuration and connects every listed
// server. Connection failures are logged and skipped; the provider is
// nil when no server could be reached or no config is given.
func LoadAndConnect(ctx context.Context, configPath string) (tool.Tool, error) {
	if configPath == "" {
		return nil, nil
	}
	logger := logging.From(ctx)

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve config path", goerr.V("path", configPath))
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read MCP config file", goerr.V("path", absPath))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse MCP config file", goerr.V("path", absPath))
	}

	if len(cfg.Servers) == 0 {
		return nil, nil
	}

	client := NewClient()
	connected := 0
	for _, serverCfg := range cfg.Servers {
		if err := client.Connect(ctx, serverCfg); err != nil {
			logger.Warn("failed to connect to MCP server", "server", serverCfg.Name, "error", err)
			continue
		}
		logger.Info("connected to MCP server", "server", serverCfg.Name)
		connected++
	}

	if connected == 0 {
		logger.Warn("no MCP servers connected")
		return nil, nil
	}

	return NewProvider(client)
}
