package veracode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// MaxPageSize is the backend's hard page-size ceiling. Larger
	// requests are clamped, not rejected.
	MaxPageSize = 500

	// DefaultPageSize applies when a single-page caller does not ask
	// for a specific size.
	DefaultPageSize = 100

	// DefaultMaxPages bounds how many pages a full aggregation fetches
	// when the caller does not set a ceiling.
	DefaultMaxPages = 50

	pathFindingsFmt = "/appsec/v2/applications/%s/findings"
)

// FindingsQuery filters a findings retrieval. Pointer fields distinguish
// "unset" from zero, since severity 0 and CVSS 0 are meaningful values.
type FindingsQuery struct {
	ScanType       string   // STATIC, DYNAMIC, MANUAL, or SCA
	Severity       *int     // exact severity 0-5
	SeverityGTE    *int     // minimum severity
	CVSS           *float64 // exact CVSS score
	CVSSGTE        *float64 // minimum CVSS score
	CWE            []int    // weakness identifiers, repeatable
	CVE            string   // vulnerability identifier
	ViolatesPolicy *bool    // policy-violating findings only
	NewOnly        *bool    // findings first seen in the latest scan
	Context        string   // sandbox GUID; empty means the policy branch
}

func (q FindingsQuery) values(page, size int) url.Values {
	v := url.Values{}
	if q.ScanType != "" {
		v.Set("scan_type", strings.ToUpper(q.ScanType))
	}
	if q.Severity != nil {
		v.Set("severity", strconv.Itoa(*q.Severity))
	}
	if q.SeverityGTE != nil {
		v.Set("severity_gte", strconv.Itoa(*q.SeverityGTE))
	}
	if q.CVSS != nil {
		v.Set("cvss", formatScore(*q.CVSS))
	}
	if q.CVSSGTE != nil {
		v.Set("cvss_gte", formatScore(*q.CVSSGTE))
	}
	for _, cwe := range q.CWE {
		v.Add("cwe", strconv.Itoa(cwe))
	}
	if q.CVE != "" {
		v.Set("cve", q.CVE)
	}
	if q.ViolatesPolicy != nil {
		v.Set("violates_policy", strconv.FormatBool(*q.ViolatesPolicy))
	}
	if q.NewOnly != nil {
		v.Set("new", strconv.FormatBool(*q.NewOnly))
	}
	if q.Context != "" {
		v.Set("context", q.Context)
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))
	return v
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// clampPageSize enforces the backend's page-size ceiling.
func clampPageSize(size int) int {
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// FindingsPage is one page of normalized findings plus cursor metadata.
// ScanAvailable is false when the retrieval was short-circuited because
// the application has no scan matching the query, which distinguishes
// "nothing scanned" from a genuinely empty finding set.
type FindingsPage struct {
	Findings      []Finding `json:"findings"`
	Page          Page      `json:"page"`
	ScanAvailable bool      `json:"scan_available"`
}

// FindingsResult is a full aggregation across pages. Truncated is true
// only when the page ceiling stopped the aggregation while the backend
// still reported pages remaining.
type FindingsResult struct {
	Findings       []Finding `json:"findings"`
	PagesRetrieved int       `json:"pages_retrieved"`
	Truncated      bool      `json:"truncated"`
	ScanAvailable  bool      `json:"scan_available"`
}

// scanAvailable reports whether the application has any scan satisfying
// scanType (any scan at all when scanType is empty). This is the cheap
// existence check that lets findings retrieval skip a query that could
// only come back empty.
func (c *Client) scanAvailable(ctx context.Context, appGUID, scanType string) (bool, error) {
	app, err := c.GetApplication(ctx, appGUID)
	if err != nil {
		return false, err
	}
	if len(app.Scans) == 0 {
		return false, nil
	}
	if scanType == "" {
		return true, nil
	}
	for _, s := range app.Scans {
		if strings.EqualFold(s.ScanType, scanType) {
			return true, nil
		}
	}
	return false, nil
}

// fetchFindingsPage is the raw page-fetch primitive shared by both
// retrieval modes. It assumes the existence check already passed.
func (c *Client) fetchFindingsPage(ctx context.Context, appGUID string, q FindingsQuery, page, size int) ([]Finding, Page, error) {
	path := fmt.Sprintf(pathFindingsFmt, appGUID)
	var envelope findingsEnvelope
	if err := c.getJSON(ctx, "GetFindings", path, q.values(page, size), &envelope); err != nil {
		return nil, Page{}, fmt.Errorf("get findings for %s: %w", appGUID, err)
	}
	findings := make([]Finding, 0, len(envelope.Embedded.Findings))
	for _, raw := range envelope.Embedded.Findings {
		findings = append(findings, normalizeFinding(raw))
	}
	return findings, envelope.Page, nil
}

// GetFindingsPage fetches one page of findings. Page is zero-based; size
// defaults to DefaultPageSize and is clamped to MaxPageSize. A missing
// scan short-circuits to an empty page with zeroed cursor metadata.
func (c *Client) GetFindingsPage(ctx context.Context, appGUID string, q FindingsQuery, page, size int) (*FindingsPage, error) {
	if err := validateGUID(appGUID); err != nil {
		return nil, err
	}
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	size = clampPageSize(size)

	available, err := c.scanAvailable(ctx, appGUID, q.ScanType)
	if err != nil {
		return nil, err
	}
	if !available {
		return &FindingsPage{Findings: []Finding{}}, nil
	}

	findings, cursor, err := c.fetchFindingsPage(ctx, appGUID, q, page, size)
	if err != nil {
		return nil, err
	}
	return &FindingsPage{Findings: findings, Page: cursor, ScanAvailable: true}, nil
}

// GetAllFindings aggregates findings across pages, starting at page 0 and
// advancing while the backend reports pages remaining and the ceiling has
// not been reached. A page shorter than the requested size is treated as
// the true end of the result set even when the backend's total-page count
// claims otherwise; backends have been observed to report inconsistent
// totals. maxPages defaults to DefaultMaxPages, pageSize to MaxPageSize.
func (c *Client) GetAllFindings(ctx context.Context, appGUID string, q FindingsQuery, maxPages, pageSize int) (*FindingsResult, error) {
	if err := validateGUID(appGUID); err != nil {
		return nil, err
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if pageSize <= 0 {
		pageSize = MaxPageSize
	}
	pageSize = clampPageSize(pageSize)

	available, err := c.scanAvailable(ctx, appGUID, q.ScanType)
	if err != nil {
		return nil, err
	}
	if !available {
		return &FindingsResult{Findings: []Finding{}}, nil
	}
	return c.aggregateFindings(ctx, appGUID, q, maxPages, pageSize)
}

// aggregateFindings runs the page loop. Callers have already established
// that a matching scan exists.
func (c *Client) aggregateFindings(ctx context.Context, appGUID string, q FindingsQuery, maxPages, pageSize int) (*FindingsResult, error) {
	result := &FindingsResult{Findings: []Finding{}, ScanAvailable: true}
	page := 0
	totalPages := 1
	for page < totalPages && result.PagesRetrieved < maxPages {
		findings, cursor, err := c.fetchFindingsPage(ctx, appGUID, q, page, pageSize)
		if err != nil {
			return nil, err
		}
		result.Findings = append(result.Findings, findings...)
		result.PagesRetrieved++
		totalPages = cursor.TotalPages

		// A short page is the true end regardless of reported totals
		if len(findings) < pageSize {
			return result, nil
		}
		page++
	}
	result.Truncated = page < totalPages
	return result, nil
}
