package github

import (
	"context"
	"net/http"
	"net/url"
)

// ListRepos lists repositories of the authenticated user.
func (c *Client) ListRepos(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/user/repos", nil)
}

// ListOrgs lists all organizations.
func (c *Client) ListOrgs(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/organizations", nil)
}

// UpdateOrg patches the organization with the given fields.
func (c *Client) UpdateOrg(ctx context.Context, org string, fields map[string]any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, "/orgs/"+url.PathEscape(org), fields)
}

// ListIssues lists issues assigned to the authenticated user.
func (c *Client) ListIssues(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/issues", nil)
}

// ListUsers lists all users.
func (c *Client) ListUsers(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/users", nil)
}
