package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// registerApplicationTools registers the application discovery tools.
// Tools: search_applications, get_application, list_scans, list_sandboxes
func (s *Server) registerApplicationTools() error {
	searchSchema, err := jsonschema.For[SearchApplicationsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for search_applications: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_applications",
		Description: "Search Veracode application profiles by name. Matching is case-insensitive and partial; results include each application's GUID, which the other tools accept as app_guid.",
		InputSchema: searchSchema,
	}, s.SearchApplications)

	getSchema, err := jsonschema.For[GetApplicationInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_application: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_application",
		Description: "Fetch one application profile, including its scans and policy associations, by GUID or by name.",
		InputSchema: getSchema,
	}, s.GetApplication)

	scansSchema, err := jsonschema.For[ListScansInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_scans: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_scans",
		Description: "List the scans attached to an application, optionally filtered to one scan type (STATIC, DYNAMIC, MANUAL, SCA). Useful for checking what analysis coverage exists before querying findings.",
		InputSchema: scansSchema,
	}, s.ListScans)

	sandboxSchema, err := jsonschema.For[ListSandboxesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_sandboxes: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sandboxes",
		Description: "List an application's development sandboxes. Pass a sandbox GUID as the context parameter of the findings tools to query sandbox results instead of the policy branch.",
		InputSchema: sandboxSchema,
	}, s.ListSandboxes)

	return nil
}

// SearchApplicationsInput defines the input schema for search_applications.
type SearchApplicationsInput struct {
	Name string `json:"name" jsonschema:"Application name fragment to search for."`
	Page int    `json:"page,omitempty" jsonschema:"Zero-based result page."`
	Size int    `json:"size,omitempty" jsonschema:"Results per page, up to 500."`
}

// ApplicationSummary is the compact per-application search record.
type ApplicationSummary struct {
	GUID                  string   `json:"guid"`
	Name                  string   `json:"name"`
	PolicyName            string   `json:"policy_name,omitempty"`
	ScanTypes             []string `json:"scan_types,omitempty"`
	LastCompletedScanDate string   `json:"last_completed_scan_date,omitempty"`
}

// SearchApplicationsOutput is the search_applications result payload.
type SearchApplicationsOutput struct {
	Applications []ApplicationSummary `json:"applications"`
	Page         veracode.Page        `json:"page"`
}

// SearchApplications handles the search_applications MCP tool call.
func (s *Server) SearchApplications(ctx context.Context, _ *mcp.CallToolRequest, in SearchApplicationsInput) (*mcp.CallToolResult, any, error) {
	apps, page, err := s.client.ListApplications(ctx, veracode.ApplicationsQuery{
		Name: in.Name,
		Page: in.Page,
		Size: in.Size,
	})
	if err != nil {
		return s.errorResult("search_applications", err), nil, nil
	}

	out := SearchApplicationsOutput{
		Applications: make([]ApplicationSummary, 0, len(apps)),
		Page:         page,
	}
	for i := range apps {
		app := &apps[i]
		summary := ApplicationSummary{
			GUID:                  app.GUID,
			Name:                  app.Name(),
			ScanTypes:             scanTypes(app.Scans),
			LastCompletedScanDate: app.LastCompletedScanDate,
		}
		if policy := app.DefaultPolicy(); policy != nil {
			summary.PolicyName = policy.Name
		}
		out.Applications = append(out.Applications, summary)
	}

	result, err := jsonResult(out)
	return result, nil, err
}

// GetApplicationInput defines the input schema for get_application.
type GetApplicationInput struct {
	AppGUID string `json:"app_guid,omitempty" jsonschema:"Application GUID. Takes precedence over app_name when both are given."`
	AppName string `json:"app_name,omitempty" jsonschema:"Application profile name. Resolved case-insensitively; an exact match wins over partial matches."`
}

// GetApplicationOutput is the get_application result payload.
type GetApplicationOutput struct {
	Application *veracode.Application `json:"application"`
	ResolvedBy  string                `json:"resolved_by"`
	PlatformURL string                `json:"platform_url"`
}

// GetApplication handles the get_application MCP tool call.
func (s *Server) GetApplication(ctx context.Context, _ *mcp.CallToolRequest, in GetApplicationInput) (*mcp.CallToolResult, any, error) {
	app, resolvedBy, err := s.resolveApp(ctx, in.AppGUID, in.AppName)
	if err != nil {
		return s.errorResult("get_application", err), nil, nil
	}

	result, err := jsonResult(GetApplicationOutput{
		Application: app,
		ResolvedBy:  resolvedBy,
		PlatformURL: s.client.PlatformBaseURL(),
	})
	return result, nil, err
}

// ListScansInput defines the input schema for list_scans.
type ListScansInput struct {
	AppGUID  string `json:"app_guid,omitempty" jsonschema:"Application GUID. Takes precedence over app_name when both are given."`
	AppName  string `json:"app_name,omitempty" jsonschema:"Application profile name. Resolved case-insensitively; an exact match wins over partial matches."`
	ScanType string `json:"scan_type,omitempty" jsonschema:"Filter to one scan type: STATIC, DYNAMIC, MANUAL, or SCA."`
}

// ScanRecord is one scan with its URL absolutized against the platform
// host.
type ScanRecord struct {
	ScanType     string `json:"scan_type"`
	Status       string `json:"status"`
	ScanURL      string `json:"scan_url,omitempty"`
	ModifiedDate string `json:"modified_date,omitempty"`
}

// ListScansOutput is the list_scans result payload.
type ListScansOutput struct {
	ApplicationGUID string       `json:"application_guid"`
	ApplicationName string       `json:"application_name"`
	ResolvedBy      string       `json:"resolved_by"`
	Scans           []ScanRecord `json:"scans"`
}

// ListScans handles the list_scans MCP tool call.
func (s *Server) ListScans(ctx context.Context, _ *mcp.CallToolRequest, in ListScansInput) (*mcp.CallToolResult, any, error) {
	app, resolvedBy, err := s.resolveApp(ctx, in.AppGUID, in.AppName)
	if err != nil {
		return s.errorResult("list_scans", err), nil, nil
	}

	scans, err := s.client.GetScans(ctx, app.GUID, in.ScanType)
	if err != nil {
		return s.errorResult("list_scans", err), nil, nil
	}

	out := ListScansOutput{
		ApplicationGUID: app.GUID,
		ApplicationName: app.Name(),
		ResolvedBy:      resolvedBy,
		Scans:           make([]ScanRecord, 0, len(scans)),
	}
	for _, scan := range scans {
		out.Scans = append(out.Scans, ScanRecord{
			ScanType:     scan.ScanType,
			Status:       scan.Status,
			ScanURL:      s.client.AbsoluteURL(scan.ScanURL),
			ModifiedDate: scan.ModifiedDate,
		})
	}

	result, err := jsonResult(out)
	return result, nil, err
}

// ListSandboxesInput defines the input schema for list_sandboxes.
type ListSandboxesInput struct {
	AppGUID string `json:"app_guid,omitempty" jsonschema:"Application GUID. Takes precedence over app_name when both are given."`
	AppName string `json:"app_name,omitempty" jsonschema:"Application profile name. Resolved case-insensitively; an exact match wins over partial matches."`
}

// ListSandboxesOutput is the list_sandboxes result payload.
type ListSandboxesOutput struct {
	ApplicationGUID string             `json:"application_guid"`
	ApplicationName string             `json:"application_name"`
	ResolvedBy      string             `json:"resolved_by"`
	Sandboxes       []veracode.Sandbox `json:"sandboxes"`
}

// ListSandboxes handles the list_sandboxes MCP tool call.
func (s *Server) ListSandboxes(ctx context.Context, _ *mcp.CallToolRequest, in ListSandboxesInput) (*mcp.CallToolResult, any, error) {
	app, resolvedBy, err := s.resolveApp(ctx, in.AppGUID, in.AppName)
	if err != nil {
		return s.errorResult("list_sandboxes", err), nil, nil
	}

	sandboxes, err := s.client.ListSandboxes(ctx, app.GUID)
	if err != nil {
		return s.errorResult("list_sandboxes", err), nil, nil
	}

	result, err := jsonResult(ListSandboxesOutput{
		ApplicationGUID: app.GUID,
		ApplicationName: app.Name(),
		ResolvedBy:      resolvedBy,
		Sandboxes:       sandboxes,
	})
	return result, nil, err
}

// scanTypes collects the distinct scan types present, in first-seen
// order.
func scanTypes(scans []veracode.Scan) []string {
	seen := make(map[string]bool, len(scans))
	var types []string
	for _, scan := range scans {
		if !seen[scan.ScanType] {
			seen[scan.ScanType] = true
			types = append(types, scan.ScanType)
		}
	}
	return types
}
