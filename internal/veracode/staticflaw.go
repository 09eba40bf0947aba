package veracode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const pathStaticFlawFmt = "/appsec/v2/applications/%s/findings/%d/static_flaw_info"

// StaticFlawInfo is the deep detail behind one static finding: the code
// path the analyzer traced from source to sink.
type StaticFlawInfo struct {
	IssueID   int64          `json:"issue_id"`
	Module    string         `json:"module,omitempty"`
	Type      string         `json:"type,omitempty"`
	DataPaths []FlawDataPath `json:"data_paths,omitempty"`
}

// FlawDataPath is one traced step of a static flaw.
type FlawDataPath struct {
	LocalPath    string `json:"local_path,omitempty"`
	SourceFile   string `json:"source_file,omitempty"`
	FunctionName string `json:"function_name,omitempty"`
	LineNumber   int    `json:"line_number,omitempty"`
	Statement    string `json:"statement,omitempty"`
}

// GetStaticFlawInfo fetches data-path detail for a static finding. The
// backend answers 404 for several unrelated reasons, so that status is
// rewritten into a message naming the likely causes instead of a bare
// not-found.
func (c *Client) GetStaticFlawInfo(ctx context.Context, appGUID string, issueID int64) (*StaticFlawInfo, error) {
	if err := validateGUID(appGUID); err != nil {
		return nil, err
	}
	if issueID <= 0 {
		return nil, fmt.Errorf("invalid issue id %d", issueID)
	}

	var info StaticFlawInfo
	path := fmt.Sprintf(pathStaticFlawFmt, appGUID, issueID)
	if err := c.getJSON(ctx, "GetStaticFlawInfo", path, nil, &info); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, &APIError{
				Kind:       KindClient,
				Op:         "GetStaticFlawInfo",
				StatusCode: http.StatusNotFound,
				Message: fmt.Sprintf("no static flaw detail for issue %d: "+
					"the finding may not come from a static scan, the account may not expose this endpoint, "+
					"or the credentials may lack results access", issueID),
				Err: err,
			}
		}
		return nil, fmt.Errorf("get static flaw info for issue %d: %w", issueID, err)
	}
	if info.IssueID == 0 {
		info.IssueID = issueID
	}
	return &info, nil
}
