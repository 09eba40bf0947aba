// Package mcp implements the Model Context Protocol (MCP) server for
// veracode-mcp.
//
// The server exposes read-only Veracode application-security data
// (applications, scans, findings, policy compliance, sandboxes) as MCP
// tools, so agents in Claude Desktop, Cursor, and other MCP clients can
// query scan results without talking to the REST API directly.
//
// # Architecture
//
//	MCP client (agent)
//	     |
//	     | (MCP protocol over stdio)
//	     v
//	Server (official Go SDK)
//	     |
//	     +-- tool handlers (this package)
//	     |
//	     v
//	veracode.Client (signed, paginated REST engine)
//	     |
//	     v
//	Veracode API gateway
//
// The Server is an explicit object constructed once at startup with an
// injected *veracode.Client; there are no ambient registries. Handlers
// are thin: resolve the target application, call one engine operation,
// serialize the result.
//
// # Supported Tools
//
//   - search_applications: list applications matching a name fragment
//   - get_application: fetch one application by GUID or name
//   - list_scans: scans attached to an application, optionally by type
//   - get_findings: aggregate findings across pages, with filters
//   - get_findings_page: one findings page with cursor metadata
//   - get_policy_compliance: policy evaluation summary
//   - list_sandboxes: development sandboxes of an application
//   - get_static_flaw_info: data-path detail for one static finding
//
// Every application-scoped tool accepts either app_guid or app_name;
// names go through the resolver (case-insensitive, exact match
// preferred) and the response reports which path was taken in its
// resolved_by field, so agents can tell an exact hit from a closest
// match.
//
// # Tool Handler Pattern
//
// Handlers follow the net/http.Handler shape the SDK encourages:
//
//  1. Define an input struct with json tags and jsonschema descriptions
//  2. Infer the input schema with jsonschema.For
//  3. Register with mcp.AddTool
//  4. Build the CallToolResult inline, no conversion layers
//
// # Error Handling
//
// Two failure classes are kept apart:
//
//   - Engine failures (unknown application, HTTP 4xx/5xx, rate limits,
//     malformed responses) become tool results with IsError=true and a
//     "[kind] message" text, so the calling agent can read and react to
//     them. Rate-limit failures are surfaced, never retried here.
//   - System failures (result serialization bugs) become protocol
//     errors.
//
// Error text is sanitized before leaving the process: the failure kind,
// HTTP status, and backend message are exposed; request URLs, wrapped
// cause chains, and anything derived from credentials are not.
package mcp
