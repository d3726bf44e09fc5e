// Package mcp exposes the PBHP gate to AI agents as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/policy"
	"github.com/ppiankov/pbhp/internal/preflight"
)

// Config holds MCP server configuration.
type Config struct {
	Engine *engine.Engine
	Policy *policy.Config
	Logger *slog.Logger
}

// Server wraps the MCP SDK server around an assessment engine.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *engine.Engine
	preflight *preflight.Checker
	log       *slog.Logger
}

// New creates an MCP server with its tools registered.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("mcp: engine is required")
	}
	pol := cfg.Policy
	if pol == nil {
		pol = policy.DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		engine:    cfg.Engine,
		preflight: preflight.New(pol.MinActionLength, pol.ExtraActionVerbs),
		log:       log,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "pbhp",
			Version: model.ProtocolVersion,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all PBHP tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pbhp_classify",
		Description: "Classify one harm into a PBHP risk class (green, yellow, orange, red, black) from impact, likelihood, irreversibility, power asymmetry and audience risk.",
	}, s.handleClassify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pbhp_preflight",
		Description: "Screen an action description before assessment. Blocks vague actions and power-plus-irreversibility; escalates urgency, high-risk domains and unsupported certainty.",
	}, s.handlePreflight)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pbhp_check_door",
		Description: "Check whether a Door/Wall/Gap analysis names a concrete escape vector.",
	}, s.handleCheckDoor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pbhp_validate",
		Description: "Replay an assessment request without finalizing it and list the unmet requirements for its risk class and intended outcome.",
	}, s.handleValidate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pbhp_assess",
		Description: "Run a full assessment request through preflight and the finalization gate. Returns the sealed record and the formatted response. A gate failure overrides the outcome to escalate.",
	}, s.handleAssess)
}
