package api

import (
	"context"
	"net/url"
)

// Profile fetches the authenticated user's account payload.
func (c *Client) Profile(ctx context.Context) (UserProfile, error) {
	var res UserProfile
	err := c.get(ctx, "/user/profile", &res)
	return res, err
}

// UpdateProfileRequest carries partial profile edits.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// UpdateProfile applies partial edits to the account.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserProfile, error) {
	var res UserProfile
	err := c.patch(ctx, "/user/profile", req, &res)
	return res, err
}

// ListAddresses returns the user's address book.
func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	var res []Address
	err := c.get(ctx, "/addresses", &res)
	return res, err
}

// CreateAddress adds an address-book entry.
func (c *Client) CreateAddress(ctx context.Context, req CreateAddressRequest) (Address, error) {
	var res Address
	err := c.post(ctx, "/addresses", req, &res)
	return res, err
}

// UpdateAddress edits an address-book entry.
func (c *Client) UpdateAddress(ctx context.Context, id string, req UpdateAddressRequest) (Address, error) {
	var res Address
	err := c.patch(ctx, "/addresses/"+url.PathEscape(id), req, &res)
	return res, err
}

// DeleteAddress removes an address-book entry.
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.delete(ctx, "/addresses/"+url.PathEscape(id), nil)
}

// SetDefaultAddress marks one entry as the default shipping address.
func (c *Client) SetDefaultAddress(ctx context.Context, id string) error {
	return c.post(ctx, "/addresses/"+url.PathEscape(id)+"/default", nil, nil)
}
