package veracode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertOnlyVariant checks that exactly the named payload is populated.
// A finding must never mix fields from another scan type's payload.
func assertOnlyVariant(t *testing.T, f Finding, variant string) {
	t.Helper()
	assert.Equal(t, variant == "static", f.Static != nil, "static payload")
	assert.Equal(t, variant == "dynamic", f.Dynamic != nil, "dynamic payload")
	assert.Equal(t, variant == "manual", f.Manual != nil, "manual payload")
	assert.Equal(t, variant == "component", f.Component != nil, "component payload")
}

func TestNormalizeStaticFinding(t *testing.T) {
	raw := apiFinding{
		IssueID:        17,
		ScanType:       "STATIC",
		Description:    "SQL injection via string concatenation",
		Count:          3,
		ViolatesPolicy: true,
		Status:         FindingStatus{Status: "OPEN", New: true, FirstFoundDate: "2025-11-02T10:00:00.000Z"},
		Details: json.RawMessage(`{
			"severity": 5,
			"cwe": {"id": 89, "name": "Improper Neutralization of Special Elements used in an SQL Command"},
			"finding_category": {"id": 19, "name": "SQL Injection"},
			"file_name": "orders.go",
			"file_path": "internal/store/orders.go",
			"file_line_number": 214,
			"module": "api",
			"procedure": "lookupOrder",
			"attack_vector": "database query"
		}`),
	}

	f := normalizeFinding(raw)

	assertOnlyVariant(t, f, "static")
	assert.Equal(t, int64(17), f.IssueID)
	assert.Equal(t, ScanTypeStatic, f.ScanType)
	assert.Equal(t, 5, f.Severity, "severity is lifted onto the envelope")
	assert.True(t, f.ViolatesPolicy)
	assert.Equal(t, "OPEN", f.Status.Status)
	assert.True(t, f.Status.New)

	require.NotNil(t, f.Static.CWE)
	assert.Equal(t, int64(89), f.Static.CWE.ID)
	assert.Equal(t, "internal/store/orders.go", f.Static.FilePath)
	assert.Equal(t, 214, f.Static.FileLineNumber)
}

func TestNormalizeDynamicFinding(t *testing.T) {
	raw := apiFinding{
		IssueID:  18,
		ScanType: "DYNAMIC",
		Details: json.RawMessage(`{
			"severity": 3,
			"cwe": {"id": 79},
			"url": "https://shop.example.com/search?q=x",
			"hostname": "shop.example.com",
			"port": "443",
			"path": "/search",
			"vulnerable_parameter": "q",
			"plugin": "Cross-Site Scripting"
		}`),
	}

	f := normalizeFinding(raw)

	assertOnlyVariant(t, f, "dynamic")
	assert.Equal(t, 3, f.Severity)
	assert.Equal(t, "shop.example.com", f.Dynamic.Hostname)
	assert.Equal(t, "q", f.Dynamic.VulnerableParameter)
}

func TestNormalizeManualFinding(t *testing.T) {
	raw := apiFinding{
		IssueID:  19,
		ScanType: "MANUAL",
		Details: json.RawMessage(`{
			"severity": 4,
			"cwe": {"id": 639},
			"location": "/account/export",
			"input_vector": "account_id parameter",
			"exploit_desc": "Tester enumerated other tenants' exports by incrementing the identifier.",
			"remediation_desc": "Authorize the requested account against the session principal.",
			"capec_id": 66,
			"cvss": 8.1
		}`),
	}

	f := normalizeFinding(raw)

	assertOnlyVariant(t, f, "manual")
	assert.Equal(t, 4, f.Severity)
	assert.Equal(t, "/account/export", f.Manual.Location)
	assert.Equal(t, int64(66), f.Manual.CAPECID)
	assert.InDelta(t, 8.1, f.Manual.CVSS, 0.001)
}

func TestNormalizeComponentFinding(t *testing.T) {
	raw := apiFinding{
		IssueID:        20,
		ScanType:       "SCA",
		ViolatesPolicy: true,
		Details: json.RawMessage(`{
			"severity": 5,
			"component_id": "abcd-1234",
			"component_filename": "log4j-core-2.14.1.jar",
			"version": "2.14.1",
			"language": "JAVA",
			"component_path": [{"path": "app/lib/log4j-core-2.14.1.jar"}],
			"cve": {
				"name": "CVE-2021-44228",
				"cvss": 9.3,
				"severity": "Very High",
				"cvss3": {"score": 10.0, "severity": "CRITICAL", "vector": "AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H"},
				"exploitability": {
					"exploit_observed": true,
					"epss_score": 0.97565,
					"epss_percentile": 0.99996,
					"epss_model_version": "v2023.03.01",
					"epss_score_date": "2026-01-15T00:00:00.000Z"
				}
			},
			"licenses": [
				{"license_id": "apache-2.0", "license_name": "Apache License 2.0", "risk_rating": "2"},
				{"license_id": "unrecognized", "risk_rating": "5"}
			]
		}`),
	}

	f := normalizeFinding(raw)

	assertOnlyVariant(t, f, "component")
	assert.Equal(t, 5, f.Severity)
	assert.Equal(t, "log4j-core-2.14.1.jar", f.Component.ComponentFilename)

	require.NotNil(t, f.Component.CVE)
	assert.Equal(t, "CVE-2021-44228", f.Component.CVE.Name)
	require.NotNil(t, f.Component.CVE.CVSS3)
	assert.InDelta(t, 10.0, f.Component.CVE.CVSS3.Score, 0.001)

	exploit := f.Component.CVE.Exploitability
	require.NotNil(t, exploit)
	assert.True(t, exploit.ExploitObserved)
	assert.InDelta(t, 0.97565, exploit.EPSSScore, 0.00001)
	assert.InDelta(t, 0.99996, exploit.EPSSPercentile, 0.00001)
	assert.Equal(t, "v2023.03.01", exploit.EPSSModelVersion)

	require.Len(t, f.Component.Licenses, 2)
	assert.Equal(t, "apache-2.0", f.Component.Licenses[0].LicenseID)
	assert.Equal(t, "2", f.Component.Licenses[0].RiskRating)
}

func TestNormalizeComponentWithoutOptionalBlocks(t *testing.T) {
	raw := apiFinding{
		ScanType: "SCA",
		Details:  json.RawMessage(`{"severity": 2, "component_filename": "left-pad-1.0.0.tgz", "version": "1.0.0"}`),
	}

	f := normalizeFinding(raw)

	require.NotNil(t, f.Component)
	assert.Nil(t, f.Component.CVE, "exploitability block is optional")
	assert.Empty(t, f.Component.Licenses, "license list is optional")
}

func TestNormalizeUnknownScanType(t *testing.T) {
	raw := apiFinding{
		IssueID:        77,
		ScanType:       "CONTAINER",
		ViolatesPolicy: true,
		Status:         FindingStatus{Status: "OPEN"},
		Details:        json.RawMessage(`{"severity": 4, "image": "registry/app:1.2"}`),
	}

	f := normalizeFinding(raw)

	// A scan type this client does not know keeps the envelope only;
	// new backend types must degrade, not fail
	assertOnlyVariant(t, f, "none")
	assert.Equal(t, "CONTAINER", f.ScanType)
	assert.Equal(t, int64(77), f.IssueID)
	assert.Equal(t, 4, f.Severity)
	assert.True(t, f.ViolatesPolicy)
	assert.Equal(t, "OPEN", f.Status.Status)
}

func TestNormalizeScanTypeCanonicalized(t *testing.T) {
	raw := apiFinding{
		ScanType: "  sca ",
		Details:  json.RawMessage(`{"severity": 1, "component_filename": "x.jar"}`),
	}

	f := normalizeFinding(raw)

	assert.Equal(t, ScanTypeSCA, f.ScanType)
	assertOnlyVariant(t, f, "component")
}

func TestNormalizeMalformedDetails(t *testing.T) {
	raw := apiFinding{
		IssueID:  5,
		ScanType: "STATIC",
		Details:  json.RawMessage(`["not", "an", "object"]`),
	}

	f := normalizeFinding(raw)

	assertOnlyVariant(t, f, "none")
	assert.Equal(t, int64(5), f.IssueID)
	assert.Equal(t, 0, f.Severity)
}

func TestNormalizeMissingDetails(t *testing.T) {
	f := normalizeFinding(apiFinding{IssueID: 6, ScanType: "STATIC"})

	assertOnlyVariant(t, f, "none")
	assert.Equal(t, 0, f.Severity)
}
