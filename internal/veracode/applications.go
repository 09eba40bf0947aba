package veracode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	pathApplications = "/appsec/v1/applications"

	// resolverPageSize bounds the candidate set a name resolution
	// considers. Name searches are server-side substring filters, so a
	// single generous page is enough in practice.
	resolverPageSize = 100
)

// ApplicationsQuery filters an application listing. Name is a server-side
// substring filter; paging is zero-based.
type ApplicationsQuery struct {
	Name string
	Page int
	Size int
}

func (q ApplicationsQuery) values() url.Values {
	v := url.Values{}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(clampPageSize(q.Size)))
	}
	return v
}

// ListApplications returns one page of application profiles matching q.
func (c *Client) ListApplications(ctx context.Context, q ApplicationsQuery) ([]Application, Page, error) {
	var envelope applicationsEnvelope
	if err := c.getJSON(ctx, "ListApplications", pathApplications, q.values(), &envelope); err != nil {
		return nil, Page{}, fmt.Errorf("list applications: %w", err)
	}
	return envelope.Embedded.Applications, envelope.Page, nil
}

// GetApplication fetches a single application profile, including its scans
// and policy associations, by GUID.
func (c *Client) GetApplication(ctx context.Context, appGUID string) (*Application, error) {
	if err := validateGUID(appGUID); err != nil {
		return nil, err
	}
	var app Application
	path := pathApplications + "/" + appGUID
	if err := c.getJSON(ctx, "GetApplication", path, nil, &app); err != nil {
		return nil, fmt.Errorf("get application %s: %w", appGUID, err)
	}
	return &app, nil
}

// ResolveApplicationByName maps a free-text name to one application. When
// the backend's candidate set contains a case-insensitive exact match on
// display name it wins regardless of position; otherwise the first
// candidate is returned and exact is false, so callers know the selection
// was a guess. Callers that need certainty should pass a GUID instead.
//
// Returns ErrApplicationNotFound when the name matches nothing.
func (c *Client) ResolveApplicationByName(ctx context.Context, name string) (*Application, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("resolve application: name is empty")
	}

	apps, _, err := c.ListApplications(ctx, ApplicationsQuery{Name: name, Size: resolverPageSize})
	if err != nil {
		return nil, false, fmt.Errorf("resolve application %q: %w", name, err)
	}
	if len(apps) == 0 {
		return nil, false, fmt.Errorf("application %q: %w", name, ErrApplicationNotFound)
	}

	for i := range apps {
		if strings.EqualFold(apps[i].Profile.Name, name) {
			return &apps[i], true, nil
		}
	}

	// No exact match: take the backend's first candidate as-is
	return &apps[0], false, nil
}

// GetScans returns the application's scans, optionally filtered to one
// scan type. Scans ride along on the application resource, so this is a
// single fetch plus a local filter.
func (c *Client) GetScans(ctx context.Context, appGUID, scanType string) ([]Scan, error) {
	app, err := c.GetApplication(ctx, appGUID)
	if err != nil {
		return nil, err
	}
	if scanType == "" {
		return app.Scans, nil
	}
	scans := make([]Scan, 0, len(app.Scans))
	for _, s := range app.Scans {
		if strings.EqualFold(s.ScanType, scanType) {
			scans = append(scans, s)
		}
	}
	return scans, nil
}

// validateGUID rejects identifiers that are not well-formed UUIDs before
// they reach a request path.
func validateGUID(guid string) error {
	if err := uuid.Validate(guid); err != nil {
		return fmt.Errorf("invalid application identifier %q: %w", guid, err)
	}
	return nil
}
