package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// registerPolicyTools registers the policy evaluation tools.
// Tools: get_policy_compliance
func (s *Server) registerPolicyTools() error {
	schema, err := jsonschema.For[GetPolicyComplianceInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_policy_compliance: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_policy_compliance",
		Description: "Evaluate an application against its compliance policy: PASS/FAIL/CONDITIONAL_PASS status, violation counts, and a severity histogram of violations. status_source says whether the status came from the platform's own evaluation or was derived locally from violation counts.",
		InputSchema: schema,
	}, s.GetPolicyCompliance)

	return nil
}

// GetPolicyComplianceInput defines the input schema for
// get_policy_compliance.
type GetPolicyComplianceInput struct {
	AppGUID string `json:"app_guid,omitempty" jsonschema:"Application GUID. Takes precedence over app_name when both are given."`
	AppName string `json:"app_name,omitempty" jsonschema:"Application profile name. Resolved case-insensitively; an exact match wins over partial matches."`
}

// GetPolicyComplianceOutput is the get_policy_compliance result payload.
type GetPolicyComplianceOutput struct {
	ResolvedBy string                      `json:"resolved_by"`
	Compliance *veracode.ComplianceSummary `json:"compliance"`
}

// GetPolicyCompliance handles the get_policy_compliance MCP tool call.
func (s *Server) GetPolicyCompliance(ctx context.Context, _ *mcp.CallToolRequest, in GetPolicyComplianceInput) (*mcp.CallToolResult, any, error) {
	app, resolvedBy, err := s.resolveApp(ctx, in.AppGUID, in.AppName)
	if err != nil {
		return s.errorResult("get_policy_compliance", err), nil, nil
	}

	summary, err := s.client.GetPolicyCompliance(ctx, app.GUID)
	if err != nil {
		return s.errorResult("get_policy_compliance", err), nil, nil
	}

	result, err := jsonResult(GetPolicyComplianceOutput{
		ResolvedBy: resolvedBy,
		Compliance: summary,
	})
	return result, nil, err
}
