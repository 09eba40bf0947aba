package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veracode-tools/veracode-mcp/internal/log"
	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// Server wraps the MCP SDK server around the findings engine.
type Server struct {
	mcpServer *mcp.Server
	client    *veracode.Client
	logger    log.Logger
	name      string
	version   string
}

// Config holds MCP server construction parameters.
type Config struct {
	Name    string
	Version string
	Client  *veracode.Client
	Logger  log.Logger
}

// errMissingAppRef is returned by handlers when neither app_guid nor
// app_name was supplied.
var errMissingAppRef = errors.New("either app_guid or app_name is required")

// NewServer creates the MCP server and registers all tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("veracode client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		client:    cfg.Client,
		logger:    logger,
		name:      cfg.Name,
		version:   cfg.Version,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Run serves the MCP protocol on the given transport. Blocks until the
// client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("MCP server starting", "name", s.name, "version", s.version)
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) registerTools() error {
	if err := s.registerApplicationTools(); err != nil {
		return fmt.Errorf("application tools: %w", err)
	}
	if err := s.registerFindingTools(); err != nil {
		return fmt.Errorf("finding tools: %w", err)
	}
	if err := s.registerPolicyTools(); err != nil {
		return fmt.Errorf("policy tools: %w", err)
	}
	return nil
}

// resolved_by values reported to callers, so agents can tell whether a
// name lookup was exact or settled for the closest match.
const (
	resolvedByGUID        = "guid"
	resolvedByExactName   = "exact_name"
	resolvedByClosestName = "closest_name"
)

// resolveApp turns an app_guid/app_name pair into a concrete
// application. The GUID wins when both are given; names go through the
// resolver's exact-match-first selection.
func (s *Server) resolveApp(ctx context.Context, guid, name string) (*veracode.Application, string, error) {
	switch {
	case guid != "":
		app, err := s.client.GetApplication(ctx, guid)
		if err != nil {
			return nil, "", err
		}
		return app, resolvedByGUID, nil
	case strings.TrimSpace(name) != "":
		app, exact, err := s.client.ResolveApplicationByName(ctx, name)
		if err != nil {
			return nil, "", err
		}
		if exact {
			return app, resolvedByExactName, nil
		}
		return app, resolvedByClosestName, nil
	default:
		return nil, "", errMissingAppRef
	}
}
