package veracode

import (
	"context"
	"fmt"
)

const pathSandboxesFmt = "/appsec/v1/applications/%s/sandboxes"

// ListSandboxes returns the application's sandboxes. A sandbox GUID can
// then be passed as the context of a findings query to inspect a branch
// that is not policy-evaluated.
func (c *Client) ListSandboxes(ctx context.Context, appGUID string) ([]Sandbox, error) {
	if err := validateGUID(appGUID); err != nil {
		return nil, err
	}
	var envelope sandboxesEnvelope
	path := fmt.Sprintf(pathSandboxesFmt, appGUID)
	if err := c.getJSON(ctx, "ListSandboxes", path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list sandboxes for %s: %w", appGUID, err)
	}
	return envelope.Embedded.Sandboxes, nil
}
