// ABOUTME: User lookups: best-effort current user, paged list, lookup by id
// ABOUTME: All calls are authenticated

package client

import (
	"context"
	"fmt"
	"net/url"
)

// CurrentUser resolves the signed-in user from the stored access token and
// fetches the matching record. Any failure along the way yields ok == false.
func (c *Client) CurrentUser(ctx context.Context) (*User, bool) {
	token, ok := c.accessToken()
	if !ok {
		return nil, false
	}

	id, ok := UserIDFromToken(token)
	if !ok {
		c.logger.Debug("Access token carries no usable identity")
		return nil, false
	}

	user, err := c.UserByID(ctx, id)
	if err != nil {
		c.logger.Debug("Current user lookup failed", "error", err)
		return nil, false
	}
	return user, true
}

// Users fetches one page of users. Pages start at 1; the page is passed
// through as given and the backend rejects invalid ones.
func (c *Client) Users(ctx context.Context, page int) (*UserPage, error) {
	var resp UserPage
	endpoint := fmt.Sprintf("/users/?page=%d", page)
	if err := c.Request(ctx, endpoint, RequestOptions{}, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserByID fetches a single user record
func (c *Client) UserByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("user id is required")
	}

	var user User
	endpoint := "/users/" + url.PathEscape(id) + "/"
	if err := c.Request(ctx, endpoint, RequestOptions{}, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
