package veracode

import "encoding/json"

// Scan type tags as reported by the backend. Findings carry exactly one of
// these in their scan_type field; unknown future tags are tolerated by the
// normalizer and surface with an empty details payload.
const (
	ScanTypeStatic  = "STATIC"
	ScanTypeDynamic = "DYNAMIC"
	ScanTypeManual  = "MANUAL"
	ScanTypeSCA     = "SCA"
)

// Severity scale: 5 very high … 1 very low, 0 informational.
const (
	SeverityInformational = 0
	SeverityVeryLow       = 1
	SeverityLow           = 2
	SeverityMedium        = 3
	SeverityHigh          = 4
	SeverityVeryHigh      = 5
)

// Page is the cursor metadata block attached to every paginated response.
// Page numbers are zero-based.
type Page struct {
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalElements int `json:"total_elements"`
	TotalPages    int `json:"total_pages"`
}

// HasNext reports whether pages remain after this one.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages-1
}

// Application is an application profile as returned by the backend.
// Read-only; fetched on demand and never cached across calls.
type Application struct {
	GUID                  string  `json:"guid"`
	ID                    int64   `json:"id"` // legacy numeric identifier
	Profile               Profile `json:"profile"`
	Scans                 []Scan  `json:"scans"`
	Created               string  `json:"created,omitempty"`
	Modified              string  `json:"modified,omitempty"`
	LastCompletedScanDate string  `json:"last_completed_scan_date,omitempty"`
}

// Name returns the display name. Display names are not guaranteed unique;
// the GUID is the stable identifier.
func (a *Application) Name() string {
	return a.Profile.Name
}

// DefaultPolicy returns the default policy association, falling back to the
// first one. Returns nil when the application has no policies.
func (a *Application) DefaultPolicy() *Policy {
	for i := range a.Profile.Policies {
		if a.Profile.Policies[i].IsDefault {
			return &a.Profile.Policies[i]
		}
	}
	if len(a.Profile.Policies) > 0 {
		return &a.Profile.Policies[0]
	}
	return nil
}

// Profile carries the human-facing application attributes.
type Profile struct {
	Name                string   `json:"name"`
	BusinessCriticality string   `json:"business_criticality,omitempty"`
	Description         string   `json:"description,omitempty"`
	Tags                string   `json:"tags,omitempty"`
	Policies            []Policy `json:"policies,omitempty"`
}

// Policy is a compliance policy associated with an application profile.
type Policy struct {
	GUID             string `json:"guid"`
	Name             string `json:"name"`
	IsDefault        bool   `json:"is_default,omitempty"`
	ComplianceStatus string `json:"policy_compliance_status,omitempty"`
}

// Scan is one analysis run attached to an application. The status set is
// large and backend-defined; it is carried as an opaque string.
type Scan struct {
	ScanType     string `json:"scan_type"`
	Status       string `json:"status"`
	ScanURL      string `json:"scan_url,omitempty"`
	ModifiedDate string `json:"modified_date,omitempty"`
}

// Sandbox is an isolated evaluation context of an application, distinct
// from its policy-evaluated main branch.
type Sandbox struct {
	GUID            string `json:"guid"`
	Name            string `json:"name"`
	ApplicationGUID string `json:"application_guid,omitempty"`
	OwnerUsername   string `json:"owner_username,omitempty"`
	Created         string `json:"created,omitempty"`
	Modified        string `json:"modified,omitempty"`
}

// FindingStatus is the status/resolution sub-record common to all finding
// shapes.
type FindingStatus struct {
	Status                 string `json:"status,omitempty"`
	Resolution             string `json:"resolution,omitempty"`
	ResolutionStatus       string `json:"resolution_status,omitempty"`
	MitigationReviewStatus string `json:"mitigation_review_status,omitempty"`
	New                    bool   `json:"new,omitempty"`
	FirstFoundDate         string `json:"first_found_date,omitempty"`
	LastSeenDate           string `json:"last_seen_date,omitempty"`
}

// Finding is the canonical finding record: a common envelope plus exactly
// one scan-type-specific payload. The payload pointer that is non-nil always
// matches ScanType; unknown scan types carry no payload at all.
type Finding struct {
	IssueID        int64         `json:"issue_id"`
	ScanType       string        `json:"scan_type"`
	Severity       int           `json:"severity"`
	ViolatesPolicy bool          `json:"violates_policy"`
	Description    string        `json:"description,omitempty"`
	Count          int           `json:"count,omitempty"`
	ContextType    string        `json:"context_type,omitempty"`
	ContextGUID    string        `json:"context_guid,omitempty"`
	Status         FindingStatus `json:"finding_status"`

	Static    *StaticDetails    `json:"static_details,omitempty"`
	Dynamic   *DynamicDetails   `json:"dynamic_details,omitempty"`
	Manual    *ManualDetails    `json:"manual_details,omitempty"`
	Component *ComponentDetails `json:"component_details,omitempty"`
}

// CWE identifies a weakness class attached to static, dynamic, and manual
// findings.
type CWE struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
	Href string `json:"href,omitempty"`
}

// FindingCategory groups findings by weakness family.
type FindingCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// StaticDetails is the payload of a static-analysis finding.
type StaticDetails struct {
	CWE              *CWE             `json:"cwe,omitempty"`
	FindingCategory  *FindingCategory `json:"finding_category,omitempty"`
	FileName         string           `json:"file_name,omitempty"`
	FilePath         string           `json:"file_path,omitempty"`
	FileLineNumber   int              `json:"file_line_number,omitempty"`
	Module           string           `json:"module,omitempty"`
	Procedure        string           `json:"procedure,omitempty"`
	RelativeLocation int              `json:"relative_location,omitempty"`
	Exploitability   int              `json:"exploitability,omitempty"`
	AttackVector     string           `json:"attack_vector,omitempty"`
}

// DynamicDetails is the payload of a dynamic-analysis finding.
type DynamicDetails struct {
	CWE                 *CWE             `json:"cwe,omitempty"`
	FindingCategory     *FindingCategory `json:"finding_category,omitempty"`
	URL                 string           `json:"url,omitempty"`
	Hostname            string           `json:"hostname,omitempty"`
	Port                string           `json:"port,omitempty"`
	Path                string           `json:"path,omitempty"`
	VulnerableParameter string           `json:"vulnerable_parameter,omitempty"`
	Plugin              string           `json:"plugin,omitempty"`
	AttackVector        string           `json:"attack_vector,omitempty"`
}

// ManualDetails is the payload of a manual penetration-test finding.
type ManualDetails struct {
	CWE                    *CWE    `json:"cwe,omitempty"`
	Location               string  `json:"location,omitempty"`
	Module                 string  `json:"module,omitempty"`
	InputVector            string  `json:"input_vector,omitempty"`
	ExploitDescription     string  `json:"exploit_desc,omitempty"`
	RemediationDescription string  `json:"remediation_desc,omitempty"`
	CAPECID                int64   `json:"capec_id,omitempty"`
	CVSS                   float64 `json:"cvss,omitempty"`
}

// ComponentDetails is the payload of a software-composition finding.
// Exploitability and license data are optional sub-structures; they are
// absent when the backend did not attach them.
type ComponentDetails struct {
	ComponentID       string          `json:"component_id,omitempty"`
	ComponentFilename string          `json:"component_filename,omitempty"`
	Version           string          `json:"version,omitempty"`
	Language          string          `json:"language,omitempty"`
	ProductID         string          `json:"product_id,omitempty"`
	ComponentPath     []ComponentPath `json:"component_path,omitempty"`
	CVE               *CVE            `json:"cve,omitempty"`
	Licenses          []License       `json:"licenses,omitempty"`
}

// ComponentPath is one filesystem location of a vulnerable component.
type ComponentPath struct {
	Path string `json:"path"`
}

// CVE carries the vulnerability identifier and scoring attached to a
// software-composition finding.
type CVE struct {
	Name           string          `json:"name"`
	CVSS           float64         `json:"cvss,omitempty"`
	Severity       string          `json:"severity,omitempty"`
	Vector         string          `json:"vector,omitempty"`
	Href           string          `json:"href,omitempty"`
	CVSS3          *CVSS3          `json:"cvss3,omitempty"`
	Exploitability *Exploitability `json:"exploitability,omitempty"`
}

// CVSS3 is the CVSS v3 scoring block.
type CVSS3 struct {
	Score    float64 `json:"score,omitempty"`
	Severity string  `json:"severity,omitempty"`
	Vector   string  `json:"vector,omitempty"`
}

// Exploitability is the EPSS-style predicted-exploitability block attached
// to some CVEs.
type Exploitability struct {
	ExploitObserved  bool    `json:"exploit_observed"`
	EPSSScore        float64 `json:"epss_score,omitempty"`
	EPSSPercentile   float64 `json:"epss_percentile,omitempty"`
	EPSSModelVersion string  `json:"epss_model_version,omitempty"`
	EPSSScoreDate    string  `json:"epss_score_date,omitempty"`
}

// License is one license attached to a component, with the backend's risk
// rating for it.
type License struct {
	LicenseID  string `json:"license_id"`
	Name       string `json:"license_name,omitempty"`
	RiskRating string `json:"risk_rating,omitempty"`
}

// apiFinding is the wire shape of one finding. The details payload is kept
// raw until the normalizer dispatches on scan_type.
type apiFinding struct {
	IssueID        int64           `json:"issue_id"`
	ScanType       string          `json:"scan_type"`
	Description    string          `json:"description"`
	Count          int             `json:"count"`
	ContextType    string          `json:"context_type"`
	ContextGUID    string          `json:"context_guid"`
	ViolatesPolicy bool            `json:"violates_policy"`
	Status         FindingStatus   `json:"finding_status"`
	Details        json.RawMessage `json:"finding_details"`
}

// Envelope shapes. Collection responses embed their payload under
// _embedded plus a page metadata block.

type applicationsEnvelope struct {
	Embedded struct {
		Applications []Application `json:"applications"`
	} `json:"_embedded"`
	Page Page `json:"page"`
}

type findingsEnvelope struct {
	Embedded struct {
		Findings []apiFinding `json:"findings"`
	} `json:"_embedded"`
	Page Page `json:"page"`
}

type sandboxesEnvelope struct {
	Embedded struct {
		Sandboxes []Sandbox `json:"sandboxes"`
	} `json:"_embedded"`
	Page Page `json:"page"`
}
