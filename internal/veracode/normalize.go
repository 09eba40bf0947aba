package veracode

import (
	"encoding/json"
	"strings"
)

// normalizeFinding projects a wire finding into the canonical record. The
// details payload is decoded into the variant matching the scan-type tag;
// tags this client does not recognize keep the envelope fields only, so a
// backend introducing a new scan type degrades instead of failing. A
// payload that does not decode is dropped the same way.
func normalizeFinding(raw apiFinding) Finding {
	f := Finding{
		IssueID:        raw.IssueID,
		ScanType:       canonicalScanType(raw.ScanType),
		Severity:       liftSeverity(raw.Details),
		Description:    raw.Description,
		Count:          raw.Count,
		ContextType:    raw.ContextType,
		ContextGUID:    raw.ContextGUID,
		ViolatesPolicy: raw.ViolatesPolicy,
		Status:         raw.Status,
	}
	if len(raw.Details) == 0 {
		return f
	}

	switch f.ScanType {
	case ScanTypeStatic:
		var d StaticDetails
		if json.Unmarshal(raw.Details, &d) == nil {
			f.Static = &d
		}
	case ScanTypeDynamic:
		var d DynamicDetails
		if json.Unmarshal(raw.Details, &d) == nil {
			f.Dynamic = &d
		}
	case ScanTypeManual:
		var d ManualDetails
		if json.Unmarshal(raw.Details, &d) == nil {
			f.Manual = &d
		}
	case ScanTypeSCA:
		var d ComponentDetails
		if json.Unmarshal(raw.Details, &d) == nil {
			f.Component = &d
		}
	}
	return f
}

func canonicalScanType(scanType string) string {
	return strings.ToUpper(strings.TrimSpace(scanType))
}

// liftSeverity pulls the severity out of the details payload. The wire
// format nests it per-type; the canonical record exposes it on the
// envelope so callers never reach into variant payloads for it.
func liftSeverity(details json.RawMessage) int {
	if len(details) == 0 {
		return 0
	}
	var head struct {
		Severity int `json:"severity"`
	}
	if err := json.Unmarshal(details, &head); err != nil {
		return 0
	}
	return head.Severity
}
