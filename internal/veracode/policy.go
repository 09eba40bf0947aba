package veracode

import (
	"context"
	"strings"
)

// Compliance statuses reported in a ComplianceSummary.
const (
	CompliancePass            = "PASS"
	ComplianceFail            = "FAIL"
	ComplianceConditionalPass = "CONDITIONAL_PASS"
)

// Status sources: the backend's own policy evaluation versus the local
// violation-count heuristic.
const (
	StatusSourceDeclared = "declared"
	StatusSourceDerived  = "derived"
)

// ComplianceSummary is a point-in-time policy evaluation. It is derived
// from the live finding set on every call and never persisted.
//
// SeverityCounts buckets policy violations by severity 1-5. Severity 0
// (informational) findings count toward TotalFindings and ViolationCount
// but stay out of the histogram and the critical/high flags.
type ComplianceSummary struct {
	ApplicationGUID string `json:"application_guid"`
	ApplicationName string `json:"application_name"`
	PolicyName      string `json:"policy_name,omitempty"`

	// Status is one of PASS, FAIL, or CONDITIONAL_PASS. StatusSource
	// records whether it came from the backend's own evaluation or the
	// local heuristic.
	Status       string `json:"status"`
	StatusSource string `json:"status_source"`

	TotalFindings         int         `json:"total_findings"`
	ViolationCount        int         `json:"violation_count"`
	SeverityCounts        map[int]int `json:"severity_counts"`
	HasCriticalViolations bool        `json:"has_critical_violations"`
	HasHighViolations     bool        `json:"has_high_violations"`

	// Truncated mirrors the underlying aggregation: when true the
	// counts are a lower bound, not a total.
	Truncated bool `json:"truncated"`
}

// GetPolicyCompliance evaluates the application against its policy. The
// full finding set is retrieved once and violations are filtered locally,
// so total and violation counts come from the same snapshot.
//
// The backend's declared policy status wins over the derived one by
// default; PreferDerivedCompliance on the client inverts that. When the
// backend declares nothing usable, the heuristic applies: zero violations
// is a PASS, anything else a FAIL.
func (c *Client) GetPolicyCompliance(ctx context.Context, appGUID string) (*ComplianceSummary, error) {
	if err := validateGUID(appGUID); err != nil {
		return nil, err
	}
	app, err := c.GetApplication(ctx, appGUID)
	if err != nil {
		return nil, err
	}

	summary := &ComplianceSummary{
		ApplicationGUID: app.GUID,
		ApplicationName: app.Name(),
		SeverityCounts:  newSeverityHistogram(),
	}

	var declared string
	if p := app.DefaultPolicy(); p != nil {
		summary.PolicyName = p.Name
		declared = p.ComplianceStatus
	}

	if len(app.Scans) > 0 {
		result, err := c.aggregateFindings(ctx, appGUID, FindingsQuery{}, DefaultMaxPages, MaxPageSize)
		if err != nil {
			return nil, err
		}
		for _, f := range result.Findings {
			summary.TotalFindings++
			if !f.ViolatesPolicy {
				continue
			}
			summary.ViolationCount++
			if f.Severity >= SeverityVeryLow && f.Severity <= SeverityVeryHigh {
				summary.SeverityCounts[f.Severity]++
			}
		}
		summary.Truncated = result.Truncated
	}

	summary.HasCriticalViolations = summary.SeverityCounts[SeverityVeryHigh] > 0
	summary.HasHighViolations = summary.SeverityCounts[SeverityHigh] > 0

	derivedStatus := CompliancePass
	if summary.ViolationCount > 0 {
		derivedStatus = ComplianceFail
	}
	declaredStatus := mapDeclaredStatus(declared)
	switch {
	case declaredStatus == "" || c.preferDerivedCompliance:
		summary.Status = derivedStatus
		summary.StatusSource = StatusSourceDerived
	default:
		summary.Status = declaredStatus
		summary.StatusSource = StatusSourceDeclared
	}
	return summary, nil
}

func newSeverityHistogram() map[int]int {
	h := make(map[int]int, SeverityVeryHigh)
	for s := SeverityVeryLow; s <= SeverityVeryHigh; s++ {
		h[s] = 0
	}
	return h
}

// mapDeclaredStatus translates the backend's policy-status vocabulary
// into the summary's. Statuses with no clear verdict (not assessed, still
// determining, vendor review) map to empty so the heuristic takes over.
func mapDeclaredStatus(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "PASSED", CompliancePass:
		return CompliancePass
	case "DID_NOT_PASS", ComplianceFail:
		return ComplianceFail
	case ComplianceConditionalPass:
		return ComplianceConditionalPass
	}
	return ""
}
