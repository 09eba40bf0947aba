package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Gateway is an in-memory fake of the Veracode REST API for tests.
// It serves the applications, findings, sandboxes, and static flaw
// endpoints from registered fixtures, with the platform's envelope and
// pagination semantics, so a real veracode.Client can be pointed at it.
//
// Fixtures are raw wire-shaped JSON objects (map[string]any); the
// Application and StaticFinding helpers build common ones. Thread-safe
// for concurrent use.
type Gateway struct {
	mu           sync.Mutex
	applications []map[string]any
	findings     map[string][]map[string]any
	sandboxes    map[string][]map[string]any
	staticFlaws  map[string]map[string]any
	requests     []GatewayRequest

	server *httptest.Server
}

// GatewayRequest records a single request the gateway served.
type GatewayRequest struct {
	Method string
	Path   string
	Query  string
}

// NewGateway starts a fake gateway backed by httptest. It is shut down
// automatically when the test finishes.
func NewGateway(t *testing.T) *Gateway {
	t.Helper()
	g := &Gateway{
		findings:    make(map[string][]map[string]any),
		sandboxes:   make(map[string][]map[string]any),
		staticFlaws: make(map[string]map[string]any),
	}
	g.server = httptest.NewServer(g.handler())
	t.Cleanup(g.server.Close)
	return g
}

// URL returns the gateway's base URL for veracode.ClientConfig.BaseURL.
func (g *Gateway) URL() string {
	return g.server.URL
}

// AddApplication registers an application profile.
func (g *Gateway) AddApplication(app map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.applications = append(g.applications, app)
}

// SetPolicyStatus patches the declared compliance status of the
// application's first policy.
func (g *Gateway) SetPolicyStatus(guid, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	app := g.findApplication(guid)
	if app == nil {
		return
	}
	profile := app["profile"].(map[string]any)
	policies := profile["policies"].([]map[string]any)
	policies[0]["policy_compliance_status"] = status
}

// AddFindings registers findings returned for the application.
func (g *Gateway) AddFindings(guid string, findings ...map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.findings[guid] = append(g.findings[guid], findings...)
}

// AddSandbox registers a development sandbox for the application.
func (g *Gateway) AddSandbox(appGUID, sandboxGUID, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sandboxes[appGUID] = append(g.sandboxes[appGUID], map[string]any{
		"guid":             sandboxGUID,
		"name":             name,
		"application_guid": appGUID,
	})
}

// SetStaticFlawInfo registers the static flaw detail payload for one
// finding of the application.
func (g *Gateway) SetStaticFlawInfo(appGUID string, issueID int, info map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.staticFlaws[appGUID+"/"+strconv.Itoa(issueID)] = info
}

// Requests returns a copy of all recorded requests.
func (g *Gateway) Requests() []GatewayRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := make([]GatewayRequest, len(g.requests))
	copy(cp, g.requests)
	return cp
}

// RequestCount returns how many served requests had the given path.
func (g *Gateway) RequestCount(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, r := range g.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Reset clears recorded requests (keeps fixtures).
func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = nil
}

// Application builds a wire-shaped application profile fixture. Each
// scan type becomes a published scan; the profile carries one default
// policy with no declared compliance status.
func Application(guid, name string, scanTypes ...string) map[string]any {
	scans := make([]map[string]any, 0, len(scanTypes))
	for _, st := range scanTypes {
		scans = append(scans, map[string]any{
			"scan_type":       st,
			"status":          "PUBLISHED",
			"internal_status": "COMPLETE",
			"modified_date":   "2026-03-14T09:30:00.000Z",
			"scan_url":        "https://analysiscenter.veracode.com/scans/" + guid,
		})
	}
	return map[string]any{
		"guid": guid,
		"id":   1234,
		"profile": map[string]any{
			"name":          name,
			"business_unit": map[string]any{"name": "Engineering"},
			"policies": []map[string]any{
				{"guid": "policy-" + guid, "name": "Default Policy", "is_default": true},
			},
			"tags": "",
		},
		"scans":    scans,
		"created":  "2025-11-02T18:00:00.000Z",
		"modified": "2026-03-14T09:30:00.000Z",
	}
}

// StaticFinding builds a wire-shaped static finding fixture.
func StaticFinding(issueID, severity int, violatesPolicy bool) map[string]any {
	return map[string]any{
		"issue_id":        issueID,
		"scan_type":       "STATIC",
		"description":     "Improper Neutralization of Special Elements used in an SQL Command.",
		"count":           1,
		"context_type":    "APPLICATION",
		"violates_policy": violatesPolicy,
		"finding_status": map[string]any{
			"status":           "OPEN",
			"resolution":       "UNRESOLVED",
			"first_found_date": "2026-01-10T04:12:00.000Z",
		},
		"finding_details": map[string]any{
			"severity":         severity,
			"cwe":              map[string]any{"id": 89, "name": "SQL Injection"},
			"file_name":        "UserDao.java",
			"file_path":        "src/main/java/com/example/dao/UserDao.java",
			"file_line_number": 42,
			"module":           "app.war",
			"exploitability":   1,
		},
	}
}

func (g *Gateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /appsec/v1/applications", g.handleApplications)
	mux.HandleFunc("GET /appsec/v1/applications/{guid}", g.handleApplication)
	mux.HandleFunc("GET /appsec/v1/applications/{guid}/sandboxes", g.handleSandboxes)
	mux.HandleFunc("GET /appsec/v2/applications/{guid}/findings", g.handleFindings)
	mux.HandleFunc("GET /appsec/v2/applications/{guid}/findings/{issue}/static_flaw_info", g.handleStaticFlaw)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.requests = append(g.requests, GatewayRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
		})
		g.mu.Unlock()

		if !strings.HasPrefix(r.Header.Get("Authorization"), "VERACODE-HMAC-SHA-256 ") {
			writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (g *Gateway) handleApplications(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	matched := make([]map[string]any, 0, len(g.applications))
	name := strings.ToLower(r.URL.Query().Get("name"))
	for _, app := range g.applications {
		profile := app["profile"].(map[string]any)
		if name == "" || strings.Contains(strings.ToLower(profile["name"].(string)), name) {
			matched = append(matched, app)
		}
	}
	g.mu.Unlock()

	writePage(w, r, "applications", matched)
}

func (g *Gateway) handleApplication(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	app := g.findApplication(r.PathValue("guid"))
	g.mu.Unlock()

	if app == nil {
		writeError(w, http.StatusNotFound, "application not found")
		return
	}
	writeJSON(w, app)
}

func (g *Gateway) handleSandboxes(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	boxes := g.sandboxes[r.PathValue("guid")]
	g.mu.Unlock()

	writePage(w, r, "sandboxes", boxes)
}

func (g *Gateway) handleFindings(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	findings := g.findings[r.PathValue("guid")]
	g.mu.Unlock()

	writePage(w, r, "findings", findings)
}

func (g *Gateway) handleStaticFlaw(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	info := g.staticFlaws[r.PathValue("guid")+"/"+r.PathValue("issue")]
	g.mu.Unlock()

	if info == nil {
		writeError(w, http.StatusNotFound, "static flaw information not found")
		return
	}
	writeJSON(w, info)
}

// findApplication must be called with g.mu held.
func (g *Gateway) findApplication(guid string) map[string]any {
	for _, app := range g.applications {
		if app["guid"] == guid {
			return app
		}
	}
	return nil
}

// writePage slices items by the request's page and size parameters and
// wraps them in the platform's _embedded envelope.
func writePage(w http.ResponseWriter, r *http.Request, key string, items []map[string]any) {
	if items == nil {
		items = []map[string]any{}
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}

	totalPages := (len(items) + size - 1) / size
	start := page * size
	end := min(start+size, len(items))
	if start > len(items) {
		start, end = 0, 0
	}

	writeJSON(w, map[string]any{
		"_embedded": map[string]any{key: items[start:end]},
		"page": map[string]any{
			"number":         page,
			"size":           size,
			"total_elements": len(items),
			"total_pages":    totalPages,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
