package mcp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/veracode-tools/veracode-mcp/internal/testutil"
)

func findingsPath(guid string) string {
	return "/appsec/v2/applications/" + guid + "/findings"
}

func TestGetFindingsAggregatesAllPages(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))
	for i := 1; i <= 7; i++ {
		g.AddFindings(appGUID, testutil.StaticFinding(i, 4, true))
	}

	var out GetFindingsOutput
	result := callTool(t, session, "get_findings", map[string]any{
		"app_guid":  appGUID,
		"page_size": 3,
	}, &out)

	if result.IsError {
		t.Fatalf("get_findings returned error result: %s", textContent(t, result))
	}
	if !out.ScanAvailable {
		t.Error("scan_available = false, want true")
	}
	if out.Total != 7 || len(out.Findings) != 7 {
		t.Fatalf("total = %d with %d findings, want 7", out.Total, len(out.Findings))
	}
	if out.PagesRetrieved != 3 {
		t.Errorf("pages_retrieved = %d, want 3", out.PagesRetrieved)
	}
	if out.Truncated {
		t.Error("truncated = true, want false: the backend ran out of pages naturally")
	}

	first := out.Findings[0]
	if first.IssueID != 1 {
		t.Errorf("findings[0].issue_id = %d, want 1", first.IssueID)
	}
	if first.Severity != 4 {
		t.Errorf("findings[0].severity = %d, want 4 (lifted from details)", first.Severity)
	}
	if first.Static == nil {
		t.Fatal("findings[0].static_details missing")
	}
	if first.Static.CWE == nil || first.Static.CWE.ID != 89 {
		t.Errorf("findings[0] CWE = %+v, want id 89", first.Static.CWE)
	}
	if first.Dynamic != nil || first.Manual != nil || first.Component != nil {
		t.Error("findings[0] carries a payload for a different scan type")
	}
}

func TestGetFindingsTruncatedByPageCeiling(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))
	for i := 1; i <= 10; i++ {
		g.AddFindings(appGUID, testutil.StaticFinding(i, 3, false))
	}

	var out GetFindingsOutput
	result := callTool(t, session, "get_findings", map[string]any{
		"app_guid":  appGUID,
		"page_size": 2,
		"max_pages": 2,
	}, &out)

	if result.IsError {
		t.Fatalf("get_findings returned error result: %s", textContent(t, result))
	}
	if out.Total != 4 {
		t.Errorf("total = %d, want 4 (two pages of two)", out.Total)
	}
	if out.PagesRetrieved != 2 {
		t.Errorf("pages_retrieved = %d, want 2", out.PagesRetrieved)
	}
	if !out.Truncated {
		t.Error("truncated = false, want true: pages remained past the ceiling")
	}
}

func TestGetFindingsShortCircuitsMissingScanType(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))
	g.AddFindings(appGUID, testutil.StaticFinding(1, 5, true))

	var out GetFindingsOutput
	result := callTool(t, session, "get_findings", map[string]any{
		"app_guid":  appGUID,
		"scan_type": "DYNAMIC",
	}, &out)

	if result.IsError {
		t.Fatalf("get_findings returned error result: %s", textContent(t, result))
	}
	if out.ScanAvailable {
		t.Error("scan_available = true, want false: no DYNAMIC scan exists")
	}
	if out.Total != 0 {
		t.Errorf("total = %d, want 0", out.Total)
	}
	if n := g.RequestCount(findingsPath(appGUID)); n != 0 {
		t.Errorf("findings endpoint hit %d times, want 0: existence check must short-circuit", n)
	}
}

func TestGetFindingsForwardsFilters(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))
	g.AddFindings(appGUID, testutil.StaticFinding(1, 5, true))

	result := callTool(t, session, "get_findings", map[string]any{
		"app_guid":        appGUID,
		"scan_type":       "static",
		"severity_gte":    4,
		"cwe":             []int{89, 79},
		"violates_policy": true,
	}, nil)

	if result.IsError {
		t.Fatalf("get_findings returned error result: %s", textContent(t, result))
	}

	var query url.Values
	for _, req := range g.Requests() {
		if req.Path == findingsPath(appGUID) {
			parsed, err := url.ParseQuery(req.Query)
			if err != nil {
				t.Fatalf("ParseQuery(%q) failed: %v", req.Query, err)
			}
			query = parsed
			break
		}
	}
	if query == nil {
		t.Fatal("no findings request reached the gateway")
	}

	if got := query.Get("scan_type"); got != "STATIC" {
		t.Errorf("scan_type = %q, want STATIC (canonicalized)", got)
	}
	if got := query.Get("severity_gte"); got != "4" {
		t.Errorf("severity_gte = %q, want 4", got)
	}
	if got := query["cwe"]; len(got) != 2 || got[0] != "89" || got[1] != "79" {
		t.Errorf("cwe = %v, want [89 79]", got)
	}
	if got := query.Get("violates_policy"); got != "true" {
		t.Errorf("violates_policy = %q, want true", got)
	}
}

func TestGetFindingsPageCursor(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))
	for i := 1; i <= 5; i++ {
		g.AddFindings(appGUID, testutil.StaticFinding(i, 3, false))
	}

	var middle GetFindingsPageOutput
	result := callTool(t, session, "get_findings_page", map[string]any{
		"app_guid": appGUID,
		"page":     1,
		"size":     2,
	}, &middle)
	if result.IsError {
		t.Fatalf("get_findings_page returned error result: %s", textContent(t, result))
	}

	if len(middle.Findings) != 2 {
		t.Errorf("got %d findings, want 2", len(middle.Findings))
	}
	if middle.Page.Number != 1 || middle.Page.TotalPages != 3 || middle.Page.TotalElements != 5 {
		t.Errorf("page = %+v, want number 1 of 3 with 5 elements", middle.Page)
	}
	if !middle.HasNextPage {
		t.Error("has_next_page = false, want true on the middle page")
	}

	var last GetFindingsPageOutput
	callTool(t, session, "get_findings_page", map[string]any{
		"app_guid": appGUID,
		"page":     2,
		"size":     2,
	}, &last)

	if len(last.Findings) != 1 {
		t.Errorf("got %d findings on the last page, want 1", len(last.Findings))
	}
	if last.HasNextPage {
		t.Error("has_next_page = true, want false on the last page")
	}
}

func TestGetStaticFlawInfo(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))
	g.SetStaticFlawInfo(appGUID, 42, map[string]any{
		"issue_id": 42,
		"module":   "app.war",
		"type":     "taint",
		"data_paths": []map[string]any{
			{"source_file": "UserDao.java", "function_name": "findUser", "line_number": 42, "statement": "stmt.executeQuery(sql)"},
			{"source_file": "LoginServlet.java", "function_name": "doPost", "line_number": 88},
		},
	})

	var out GetStaticFlawInfoOutput
	result := callTool(t, session, "get_static_flaw_info", map[string]any{
		"app_guid": appGUID,
		"issue_id": 42,
	}, &out)

	if result.IsError {
		t.Fatalf("get_static_flaw_info returned error result: %s", textContent(t, result))
	}
	if out.FlawInfo == nil || out.FlawInfo.IssueID != 42 {
		t.Fatalf("flaw_info = %+v, want issue 42", out.FlawInfo)
	}
	if len(out.FlawInfo.DataPaths) != 2 {
		t.Fatalf("got %d data paths, want 2", len(out.FlawInfo.DataPaths))
	}
	if out.FlawInfo.DataPaths[0].SourceFile != "UserDao.java" {
		t.Errorf("data_paths[0].source_file = %q, want UserDao.java", out.FlawInfo.DataPaths[0].SourceFile)
	}
}

func TestGetStaticFlawInfoNotFound(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))

	result := callTool(t, session, "get_static_flaw_info", map[string]any{
		"app_guid": appGUID,
		"issue_id": 999,
	}, nil)

	if !result.IsError {
		t.Fatal("get_static_flaw_info succeeded, want error result")
	}
	text := textContent(t, result)
	if !strings.Contains(text, "HTTP 404") {
		t.Errorf("error text = %q, want to carry the status", text)
	}
	if !strings.Contains(text, "static scan") || !strings.Contains(text, "credentials") {
		t.Errorf("error text = %q, want the actionable cause list", text)
	}
}

func TestGetStaticFlawInfoRequiresIssueID(t *testing.T) {
	session, g := connectTestServer(t)
	g.AddApplication(testutil.Application(appGUID, "Web Portal", "STATIC"))

	result := callTool(t, session, "get_static_flaw_info", map[string]any{
		"app_guid": appGUID,
	}, nil)

	if !result.IsError {
		t.Fatal("get_static_flaw_info succeeded, want error result")
	}
	if text := textContent(t, result); !strings.Contains(text, "[invalid-input]") {
		t.Errorf("error text = %q, want [invalid-input]", text)
	}
}
