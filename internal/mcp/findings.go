package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// registerFindingTools registers the finding retrieval tools.
// Tools: get_findings, get_findings_page, get_static_flaw_info
func (s *Server) registerFindingTools() error {
	findingsSchema, err := jsonschema.For[GetFindingsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_findings: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_findings",
		Description: "Retrieve an application's findings across all result pages, with optional filters. The response's truncated flag is true when the page ceiling stopped the aggregation early; scan_available is false when the application has no scan matching the query, which distinguishes 'never scanned' from 'scanned clean'.",
		InputSchema: findingsSchema,
	}, s.GetFindings)

	pageSchema, err := jsonschema.For[GetFindingsPageInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_findings_page: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_findings_page",
		Description: "Retrieve a single page of an application's findings with cursor metadata (page number, total pages, has_next_page). Use for incremental walks over large finding sets instead of get_findings.",
		InputSchema: pageSchema,
	}, s.GetFindingsPage)

	flawSchema, err := jsonschema.For[GetStaticFlawInfoInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_static_flaw_info: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_static_flaw_info",
		Description: "Fetch the data-path detail (source file, line, call chain) for one static finding, identified by its issue_id from get_findings.",
		InputSchema: flawSchema,
	}, s.GetStaticFlawInfo)

	return nil
}

// GetFindingsInput defines the input schema for get_findings.
type GetFindingsInput struct {
	AppGUID        string   `json:"app_guid,omitempty" jsonschema:"Application GUID. Takes precedence over app_name when both are given."`
	AppName        string   `json:"app_name,omitempty" jsonschema:"Application profile name. Resolved case-insensitively; an exact match wins over partial matches."`
	ScanType       string   `json:"scan_type,omitempty" jsonschema:"Filter to one scan type: STATIC, DYNAMIC, MANUAL, or SCA."`
	Severity       *int     `json:"severity,omitempty" jsonschema:"Exact severity, 0 (informational) to 5 (very high)."`
	SeverityGTE    *int     `json:"severity_gte,omitempty" jsonschema:"Minimum severity, 0 to 5."`
	CVSS           *float64 `json:"cvss,omitempty" jsonschema:"Exact CVSS score."`
	CVSSGTE        *float64 `json:"cvss_gte,omitempty" jsonschema:"Minimum CVSS score."`
	CWE            []int    `json:"cwe,omitempty" jsonschema:"Restrict to these CWE identifiers."`
	CVE            string   `json:"cve,omitempty" jsonschema:"Restrict to findings referencing this CVE identifier (SCA findings)."`
	ViolatesPolicy *bool    `json:"violates_policy,omitempty" jsonschema:"Only findings that violate (true) or comply with (false) the application's policy."`
	NewOnly        *bool    `json:"new_only,omitempty" jsonschema:"Only findings first seen in the latest scan."`
	Context        string   `json:"context,omitempty" jsonschema:"Sandbox GUID to query instead of the policy branch."`
	MaxPages       int      `json:"max_pages,omitempty" jsonschema:"Aggregation page ceiling (default 50)."`
	PageSize       int      `json:"page_size,omitempty" jsonschema:"Backend page size, up to 500 (default 500)."`
}

func (in GetFindingsInput) query() veracode.FindingsQuery {
	return veracode.FindingsQuery{
		ScanType:       in.ScanType,
		Severity:       in.Severity,
		SeverityGTE:    in.SeverityGTE,
		CVSS:           in.CVSS,
		CVSSGTE:        in.CVSSGTE,
		CWE:            in.CWE,
		CVE:            in.CVE,
		ViolatesPolicy: in.ViolatesPolicy,
		NewOnly:        in.NewOnly,
		Context:        in.Context,
	}
}

// GetFindingsOutput is the get_findings result payload.
type GetFindingsOutput struct {
	ApplicationGUID string             `json:"application_guid"`
	ApplicationName string             `json:"application_name"`
	ResolvedBy      string             `json:"resolved_by"`
	ScanAvailable   bool               `json:"scan_available"`
	Total           int                `json:"total"`
	PagesRetrieved  int                `json:"pages_retrieved"`
	Truncated       bool               `json:"truncated"`
	Findings        []veracode.Finding `json:"findings"`
}

// GetFindings handles the get_findings MCP tool call.
func (s *Server) GetFindings(ctx context.Context, _ *mcp.CallToolRequest, in GetFindingsInput) (*mcp.CallToolResult, any, error) {
	app, resolvedBy, err := s.resolveApp(ctx, in.AppGUID, in.AppName)
	if err != nil {
		return s.errorResult("get_findings", err), nil, nil
	}

	res, err := s.client.GetAllFindings(ctx, app.GUID, in.query(), in.MaxPages, in.PageSize)
	if err != nil {
		return s.errorResult("get_findings", err), nil, nil
	}

	result, err := jsonResult(GetFindingsOutput{
		ApplicationGUID: app.GUID,
		ApplicationName: app.Name(),
		ResolvedBy:      resolvedBy,
		ScanAvailable:   res.ScanAvailable,
		Total:           len(res.Findings),
		PagesRetrieved:  res.PagesRetrieved,
		Truncated:       res.Truncated,
		Findings:        res.Findings,
	})
	return result, nil, err
}

// GetFindingsPageInput defines the input schema for get_findings_page.
type GetFindingsPageInput struct {
	AppGUID        string   `json:"app_guid,omitempty" jsonschema:"Application GUID. Takes precedence over app_name when both are given."`
	AppName        string   `json:"app_name,omitempty" jsonschema:"Application profile name. Resolved case-insensitively; an exact match wins over partial matches."`
	Page           int      `json:"page,omitempty" jsonschema:"Zero-based page number."`
	Size           int      `json:"size,omitempty" jsonschema:"Page size, up to 500 (default 100)."`
	ScanType       string   `json:"scan_type,omitempty" jsonschema:"Filter to one scan type: STATIC, DYNAMIC, MANUAL, or SCA."`
	Severity       *int     `json:"severity,omitempty" jsonschema:"Exact severity, 0 (informational) to 5 (very high)."`
	SeverityGTE    *int     `json:"severity_gte,omitempty" jsonschema:"Minimum severity, 0 to 5."`
	CVSS           *float64 `json:"cvss,omitempty" jsonschema:"Exact CVSS score."`
	CVSSGTE        *float64 `json:"cvss_gte,omitempty" jsonschema:"Minimum CVSS score."`
	CWE            []int    `json:"cwe,omitempty" jsonschema:"Restrict to these CWE identifiers."`
	CVE            string   `json:"cve,omitempty" jsonschema:"Restrict to findings referencing this CVE identifier (SCA findings)."`
	ViolatesPolicy *bool    `json:"violates_policy,omitempty" jsonschema:"Only findings that violate (true) or comply with (false) the application's policy."`
	NewOnly        *bool    `json:"new_only,omitempty" jsonschema:"Only findings first seen in the latest scan."`
	Context        string   `json:"context,omitempty" jsonschema:"Sandbox GUID to query instead of the policy branch."`
}

func (in GetFindingsPageInput) query() veracode.FindingsQuery {
	return veracode.FindingsQuery{
		ScanType:       in.ScanType,
		Severity:       in.Severity,
		SeverityGTE:    in.SeverityGTE,
		CVSS:           in.CVSS,
		CVSSGTE:        in.CVSSGTE,
		CWE:            in.CWE,
		CVE:            in.CVE,
		ViolatesPolicy: in.ViolatesPolicy,
		NewOnly:        in.NewOnly,
		Context:        in.Context,
	}
}

// GetFindingsPageOutput is the get_findings_page result payload.
type GetFindingsPageOutput struct {
	ApplicationGUID string             `json:"application_guid"`
	ApplicationName string             `json:"application_name"`
	ResolvedBy      string             `json:"resolved_by"`
	ScanAvailable   bool               `json:"scan_available"`
	Page            veracode.Page      `json:"page"`
	HasNextPage     bool               `json:"has_next_page"`
	Findings        []veracode.Finding `json:"findings"`
}

// GetFindingsPage handles the get_findings_page MCP tool call.
func (s *Server) GetFindingsPage(ctx context.Context, _ *mcp.CallToolRequest, in GetFindingsPageInput) (*mcp.CallToolResult, any, error) {
	app, resolvedBy, err := s.resolveApp(ctx, in.AppGUID, in.AppName)
	if err != nil {
		return s.errorResult("get_findings_page", err), nil, nil
	}

	page, err := s.client.GetFindingsPage(ctx, app.GUID, in.query(), in.Page, in.Size)
	if err != nil {
		return s.errorResult("get_findings_page", err), nil, nil
	}

	result, err := jsonResult(GetFindingsPageOutput{
		ApplicationGUID: app.GUID,
		ApplicationName: app.Name(),
		ResolvedBy:      resolvedBy,
		ScanAvailable:   page.ScanAvailable,
		Page:            page.Page,
		HasNextPage:     page.Page.HasNext(),
		Findings:        page.Findings,
	})
	return result, nil, err
}

// GetStaticFlawInfoInput defines the input schema for get_static_flaw_info.
type GetStaticFlawInfoInput struct {
	AppGUID string `json:"app_guid,omitempty" jsonschema:"Application GUID. Takes precedence over app_name when both are given."`
	AppName string `json:"app_name,omitempty" jsonschema:"Application profile name. Resolved case-insensitively; an exact match wins over partial matches."`
	IssueID int64  `json:"issue_id,omitempty" jsonschema:"Numeric issue id of a STATIC finding, from get_findings."`
}

// GetStaticFlawInfoOutput is the get_static_flaw_info result payload.
type GetStaticFlawInfoOutput struct {
	ApplicationGUID string                   `json:"application_guid"`
	ApplicationName string                   `json:"application_name"`
	ResolvedBy      string                   `json:"resolved_by"`
	FlawInfo        *veracode.StaticFlawInfo `json:"flaw_info"`
}

// GetStaticFlawInfo handles the get_static_flaw_info MCP tool call.
func (s *Server) GetStaticFlawInfo(ctx context.Context, _ *mcp.CallToolRequest, in GetStaticFlawInfoInput) (*mcp.CallToolResult, any, error) {
	app, resolvedBy, err := s.resolveApp(ctx, in.AppGUID, in.AppName)
	if err != nil {
		return s.errorResult("get_static_flaw_info", err), nil, nil
	}

	info, err := s.client.GetStaticFlawInfo(ctx, app.GUID, in.IssueID)
	if err != nil {
		return s.errorResult("get_static_flaw_info", err), nil, nil
	}

	result, err := jsonResult(GetStaticFlawInfoOutput{
		ApplicationGUID: app.GUID,
		ApplicationName: app.Name(),
		ResolvedBy:      resolvedBy,
		FlawInfo:        info,
	})
	return result, nil, err
}
